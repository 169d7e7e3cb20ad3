package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error produced while processing input wraps or derives from one of
// these, so callers can test for a category with errors.Is regardless of the
// attributes attached along the way.
var (
	ErrSyntax                    = NewError("syntax error")
	ErrUnterminatedBlock         = NewError("unexpected end of file")
	ErrUnclosedGroup             = NewError("unclosed group")
	ErrUnexpectedToken           = NewError("unexpected token")
	ErrVariableNotFound          = NewError("variable not found")
	ErrMacroNotFound             = NewError("macro not found")
	ErrArithmeticArgumentMissing = NewError("arithmetic macro requires at least one argument")
	ErrArgumentMissing           = NewError("missing required argument")
	ErrOperandType               = NewError("unsupported operand types")
	ErrDivisionByZero            = NewError("division by zero")
	ErrInvalidCount              = NewError("invalid repeat count")
	ErrInvalidLiteral            = NewError("invalid literal")
	ErrInvalidBinding            = NewError("invalid variable binding")
	ErrInvalidDelimiters         = NewError("invalid delimiter pattern")
	ErrIncludeDepth              = NewError("maximum include depth exceeded")
	ErrExprEvaluate              = NewError("expression evaluation failed")
	ErrFileAccess                = NewError("file access failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	kind  *Error      // Sentinel this error derives from
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
// Errors that already are (or wrap) an *Error are returned unchanged.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The message has the form "<msg> (<key>=<value> ...): <cause>", where each
// part is omitted when empty.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.msg)

	if len(e.attrs) > 0 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteByte('(')

		for i, a := range e.attrs {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(a.String())
		}

		sb.WriteByte(')')
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.kind != nil && t.kind == e.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
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

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		kind:  e.kind,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		kind:  e.kind,
		err:   e.err,
		attrs: newAttrs,
	}
}

// hasAttr reports whether an attribute with the given key is already set.
func (e *Error) hasAttr(key string) bool {
	for _, a := range e.attrs {
		if a.Key == key {
			return true
		}
	}

	return false
}

// annotate attaches the source location to err unless an inner frame
// (a nested include) already recorded one.
func annotate(err error, file string, line int) error {
	e := WrapError(err)
	if e.hasAttr("file") {
		return e
	}

	return e.With(slog.String("file", file), slog.Int("line", line))
}
