package walk

import (
	"log/slog"
	"strings"
)

// Sentinel errors.
var (
	ErrNotExist       = NewError("file or directory does not exist")
	ErrInvalidPattern = NewError("invalid ignore pattern")
	ErrReadDir        = NewError("cannot read directory")
)

// Error is a walk failure carrying the paths involved as slog attributes.
type Error struct {
	msg   string
	kind  *Error
	err   error
	attrs []slog.Attr
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.msg)

	if len(e.attrs) > 0 {
		sb.WriteString(" (")

		for i, a := range e.attrs {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(a.String())
		}

		sb.WriteByte(')')
	}

	if e.err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.kind == e.kind
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	attrs = append(attrs, slog.String("error", e.msg))

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, kind: e.kind, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	newAttrs = append(newAttrs, e.attrs...)
	newAttrs = append(newAttrs, attrs...)

	return &Error{msg: e.msg, kind: e.kind, err: e.err, attrs: newAttrs}
}
