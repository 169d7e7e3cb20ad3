package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// ANSI colors used by the pretty handler.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or as indented JSON-like objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	json   bool
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string // group prefix for attribute keys
}

func newPrettyHandler(w io.Writer, json bool, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, json: json, mu: &sync.Mutex{}, w: w}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	if !r.Time.IsZero() {
		fields = append(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		fields = append(fields, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.json {
		buf.WriteString("{\n")
	}

	n := 0

	for _, a := range fields {
		if h.opts.ReplaceAttr != nil && a.Key != slog.LevelKey {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Equal(slog.Attr{}) {
			continue
		}

		h.writeAttr(buf, a, n)
		n++
	}

	if h.json {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, a slog.Attr, n int) {
	if h.json {
		if n > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  " + colorGray + a.Key + colorReset + ": ")
	} else {
		if n > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray + a.Key + colorReset + "=")
	}

	writeValue(buf, a.Value.Resolve())
}

func writeValue(buf *bytes.Buffer, v slog.Value) {
	color, text := colorCyan, ""

	switch v.Kind() {
	case slog.KindString:
		text = v.String()
	case slog.KindInt64:
		color, text = colorYellow, strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		color, text = colorYellow, strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		color, text = colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		color, text = colorRed, "false"
		if v.Bool() {
			color, text = colorGreen, "true"
		}
	case slog.KindDuration:
		color, text = colorMagenta, v.Duration().String()
	case slog.KindTime:
		color, text = colorBlue, v.Time().Format(time.RFC3339)
	case slog.KindGroup:
		writeGroup(buf, v.Group())

		return
	default:
		if l, ok := v.Any().(slog.Level); ok {
			color, text = levelColor(l), Level(l).String()
		} else if v.Any() == nil {
			color, text = colorGray, "null"
		} else {
			text = fmt.Sprint(v.Any())
		}
	}

	buf.WriteString(color + text + colorReset)
}

func writeGroup(buf *bytes.Buffer, attrs []slog.Attr) {
	buf.WriteByte('{')

	for i, a := range attrs {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(colorGray + a.Key + colorReset + "=")
		writeValue(buf, a.Value.Resolve())
	}

	buf.WriteByte('}')
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}
