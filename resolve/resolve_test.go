package resolve

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtools/formula"
	"github.com/labtools/formula/internal/log"
)

func TestResolve(t *testing.T) {
	s := New()
	s.Set("sample.mass", "12.5")
	s.Set("volume", 10)
	s.Set("blank", "")
	s.Set("garbled", "n/a")
	s.Define("density", "{sample.mass} / volume")
	s.Define("corrected", "density * factor + blank + garbled")
	s.Define("factor", "LOG10(1000) - 1")

	cases := []struct {
		name   string
		output float64
	}{
		{"sample.mass", 12.5},
		{"samplemass", 12.5},
		{"volume", 10},
		{"blank", 0},
		{"density", 1.25},
		{"factor", 2},
		{"corrected", 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := s.Resolve(tc.name)
			require.NoError(t, err)
			assert.InDelta(t, tc.output, v, 1e-12)
		})
	}
}

func TestResolveErrors(t *testing.T) {
	s := New()
	s.Define("a", "b + 1")
	s.Define("b", "c * 2")
	s.Define("c", "a")
	s.Define("missing", "nothing * 2")
	s.Define("broken", "(1 + 2")
	s.Define("uses_broken", "broken + 1")
	s.Set("pi", 3)
	s.Define("circle", "pi * 2")

	_, err := s.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownQuantity)

	_, err = s.Resolve("a")
	require.ErrorIs(t, err, ErrCycle)
	assert.True(t, strings.Contains(err.Error(), "a -> b -> c -> a"), err.Error())

	_, err = s.Resolve("missing")
	assert.ErrorIs(t, err, formula.ErrUnrecognizedVariable)

	_, err = s.Resolve("uses_broken")
	require.ErrorIs(t, err, formula.ErrClosingParenthesis)
	var ferr formula.Error
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 6, ferr.Offset())

	// Rebinding a constant is only allowed in sub-calls.
	_, err = s.Resolve("circle")
	assert.ErrorIs(t, err, formula.ErrVariableRedefined)
}

func TestResolveSubCallMayRebindConstants(t *testing.T) {
	s := New()
	s.Set("e", 2)
	s.Define("inner", "e * 10")
	s.Define("outer", "inner + 1")

	v, err := s.Resolve("outer")
	require.NoError(t, err)
	assert.Equal(t, 21.0, v)

	_, err = s.Resolve("inner")
	assert.ErrorIs(t, err, formula.ErrVariableRedefined)
}

func TestNilValueIsUnbound(t *testing.T) {
	s, err := Load(strings.NewReader("x:\ny:\n  formula: \"x + 1\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, s.Names())

	_, err = s.Resolve("x")
	assert.ErrorIs(t, err, ErrUnknownQuantity)

	_, err = s.Resolve("y")
	assert.ErrorIs(t, err, formula.ErrUnrecognizedVariable)

	s.Set("x", 4)
	s.Set("x", nil)
	_, err = s.Resolve("x")
	assert.ErrorIs(t, err, ErrUnknownQuantity)
}

func TestResolveAll(t *testing.T) {
	s := New()
	s.Set("x", 2)
	s.Define("y", "x ^ 3")
	s.Define("z", "y / 0")
	s.Define("bad", "x +")
	s.Define("worse", "unknown")

	values, err := s.ResolveAll()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, merr.Errors[0], formula.ErrUnexpectedEnd)
	assert.ErrorIs(t, merr.Errors[1], formula.ErrUnrecognizedVariable)

	assert.Equal(t, map[string]float64{"x": 2, "y": 8, "z": 0}, values)
}

func TestResolveLogs(t *testing.T) {
	var buf bytes.Buffer
	s := New(WithLogger(log.Make(&buf, log.WithLevel(slog.LevelDebug), log.WithFormat(log.FormatText))))
	s.Set("x", 2)
	s.Define("y", "x * 2")
	s.Define("z", "y + 1")

	_, err := s.Resolve("z")
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "quantity=y"), out)
	assert.True(t, strings.Contains(out, "sub_call=true"), out)
	assert.True(t, strings.Contains(out, "quantity=z"), out)
	assert.True(t, strings.Contains(out, "sub_call=false"), out)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.250", FormatResult(1.25, 3))
	assert.Equal(t, "2", FormatResult(1.5, 0))
	assert.Equal(t, "0.1", FormatResult(0.1, -1))
	assert.Equal(t, "3.14", New(WithDecimals(2)).Format(3.14159))
}

func TestLoad(t *testing.T) {
	src := `
sample.mass: 12.5
volume: "10"
blank: ""
density:
  formula: "{sample.mass} / volume"
tare:
  value: 1
`
	s, err := Load(strings.NewReader(src), WithDecimals(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"blank", "density", "samplemass", "tare", "volume"}, s.Names())

	v, err := s.Resolve("density")
	require.NoError(t, err)
	assert.Equal(t, "1.25", s.Format(v))

	v, err = s.Resolve("tare")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("x:\n  other: 1\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("x: [1, 2"))
	assert.Error(t, err)

	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Names())
}
