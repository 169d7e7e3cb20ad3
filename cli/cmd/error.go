package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	kind  *Error
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	head := e.msg

	if len(e.attrs) > 0 {
		kv := make([]string, len(e.attrs))
		for i, a := range e.attrs {
			kv[i] = fmt.Sprintf("%s=%v", a.Key, a.Value)
		}

		head += " (" + strings.Join(kv, ", ") + ")"
	}

	if head != "" {
		part = append(part, head)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && e.kind == t.kind
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		var lv slog.LogValuer
		if errors.As(e.err, &lv) {
			attrs = append(attrs, slog.Any("cause", lv))
		} else {
			attrs = append(attrs, slog.String("cause", e.err.Error()))
		}
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		kind:  e.kind,
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
		err:   e.err,
		attrs: newAttrs,
		kind:  e.kind,
	}
}

var (
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrReadVars    = NewError("read variables file")
	ErrDelimiters  = NewError("read delimiters file")
	ErrSource      = NewError("enumerate sources")
	ErrNoContext   = NewError("command context unavailable")
)
