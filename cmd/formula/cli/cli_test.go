package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtools/formula"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), &stdout, &stderr, func(int) {}, args...)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEval(t *testing.T) {
	cases := []struct {
		args   []string
		output string
	}{
		{[]string{"eval", "2+3*4"}, "14\n"},
		{[]string{"eval", "--var", "x=3", "x*2"}, "6\n"},
		{[]string{"eval", "-v", "{a.b}=4", "--var", "c=", "{a.b}+c"}, "4\n"},
		{[]string{"eval", "--decimals", "2", "1/3"}, "0.33\n"},
		{[]string{"eval", "--sub-call", "--var", "pi=3", "pi"}, "3\n"},
	}

	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			out, _, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.output, out)
		})
	}
}

func TestEvalVarsFile(t *testing.T) {
	path := writeFile(t, "vars.yaml", "sample.mass: 12\nfactor: \"0.5\"\n")
	out, _, err := run(t, "eval", "--vars", path, "--var", "factor=2", "{sample.mass} * factor")
	require.NoError(t, err)
	assert.Equal(t, "24\n", out)
}

func TestEvalErrors(t *testing.T) {
	_, _, err := run(t, "eval", "2 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, formula.ErrUnexpectedCharacter)
	assert.True(t, strings.Contains(err.Error(), "2 3\n..^"), err.Error())

	_, _, err = run(t, "eval", "--var", "pi=1", "pi")
	assert.ErrorIs(t, err, formula.ErrVariableRedefined)
}

func TestRefs(t *testing.T) {
	out, _, err := run(t, "refs", "{a.b} * LOG10(c) + a")
	require.NoError(t, err)
	assert.Equal(t, "a\nab\nc\n", out)

	_, _, err = run(t, "refs", "(a")
	assert.ErrorIs(t, err, formula.ErrClosingParenthesis)
}

func TestResolve(t *testing.T) {
	path := writeFile(t, "sheet.yaml", `
mass: 12.5
volume: 10
density:
  formula: "mass / volume"
broken:
  formula: "density +"
`)

	out, stderr, err := run(t, "resolve", "--decimals", "3", path)
	require.Error(t, err)
	assert.Equal(t, "density = 1.250\nmass = 12.500\nvolume = 10.000\n", out)
	assert.True(t, strings.Contains(stderr, "resolve failed"), stderr)
	assert.True(t, strings.Contains(err.Error(), "1 of 4 quantities failed"), err.Error())

	var cerr *Error
	require.True(t, errors.As(err, &cerr))

	out, _, err = run(t, "resolve", path, "density")
	require.NoError(t, err)
	assert.Equal(t, "density = 1.25\n", out)
}
