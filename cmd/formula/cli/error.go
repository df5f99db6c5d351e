package cli

import (
	"log/slog"
	"strings"

	"github.com/labtools/formula"
)

// Error is a command failure carrying structured attributes for logging.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates an Error with a message and the attributes to log with it.
func NewError(msg string, attrs ...slog.Attr) *Error {
	return &Error{msg: msg, attrs: attrs}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)
	if e.msg != "" {
		part = append(part, e.msg)
	}
	if e.err != nil {
		part = append(part, e.err.Error())
	}
	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// sourceError renders an evaluator error with a pointer into the source.
type sourceError struct {
	err    formula.Error
	source string
}

func (e sourceError) Error() string { return e.err.Pretty(e.source) }

func (e sourceError) Unwrap() error { return e.err }
