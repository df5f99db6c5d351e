package formula

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the evaluator wraps exactly one of these
// so callers can branch with `errors.Is`.
var (
	ErrVariableRedefined    = errors.New("variable redefined")
	ErrUnexpectedCharacter  = errors.New("unexpected character")
	ErrClosingParenthesis   = errors.New("missing closing parenthesis")
	ErrExtraPeriod          = errors.New("extra period in number")
	ErrUnexpectedEnd        = errors.New("unexpected end of expression")
	ErrNumberExpected       = errors.New("number expected")
	ErrUnrecognizedVariable = errors.New("unrecognized variable")
	ErrDomain               = errors.New("math domain error")
)

// Error represents an error at a specific location.
type Error interface {
	Error() string

	// Offset returns the character offset of the error within the normalized
	// expression, or -1 when the error is not tied to a position.
	Offset() int

	// Subject returns the offending character, variable or function name, if
	// any.
	Subject() string

	// Pretty prints out a message with a pointer to the source location of the
	// error.
	Pretty(source string) string

	// Unwrap returns the error kind, one of the Err* values.
	Unwrap() error
}

type exprErr struct {
	kind    error
	offset  int
	subject string
	message string
}

func (e *exprErr) Error() string {
	return e.message
}

func (e *exprErr) Offset() int {
	return e.offset
}

func (e *exprErr) Subject() string {
	return e.subject
}

func (e *exprErr) Unwrap() error {
	return e.kind
}

func (e *exprErr) Pretty(source string) string {
	if e.offset < 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\n")
	b.WriteString(source)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(".", e.offset))
	b.WriteString("^")
	return b.String()
}

// NewError creates a new error of the given kind at a specific location.
func NewError(kind error, offset int, subject string, format string, a ...interface{}) Error {
	return &exprErr{
		kind:    kind,
		offset:  offset,
		subject: subject,
		message: fmt.Sprintf(format, a...),
	}
}

func errVariableRedefined(name string) Error {
	return NewError(ErrVariableRedefined, -1, name, "cannot redefine the value of %q", name)
}

func errUnexpectedCharacter(char string, offset int) Error {
	return NewError(ErrUnexpectedCharacter, offset, char, "unexpected character %q at %d", char, offset)
}

func errClosingParenthesis(offset int) Error {
	return NewError(ErrClosingParenthesis, offset, "", "no closing parenthesis found at character %d", offset)
}

func errExtraPeriod(offset int) Error {
	return NewError(ErrExtraPeriod, offset, ".", "found an extra period in a number at character %d", offset)
}

func errUnexpectedEnd(offset int) Error {
	return NewError(ErrUnexpectedEnd, offset, "", "unexpected end found")
}

func errNumberExpected(offset int, char string) Error {
	return NewError(ErrNumberExpected, offset, char, "expected a number at character %d but found %q", offset, char)
}

func errUnrecognizedVariable(offset int, name string) Error {
	return NewError(ErrUnrecognizedVariable, offset, name, "unrecognized variable %q", name)
}

func errDomain(offset int, fn string, arg float64) Error {
	return NewError(ErrDomain, offset, fn, "%s: math domain error for argument %v", fn, arg)
}
