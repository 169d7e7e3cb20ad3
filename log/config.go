package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout of a logger configured without
// [WithTimeLayout].
const DefaultTimeLayout = time.RFC3339

const (
	DefaultCaller = false
	DefaultPretty = true
)

// config is the immutable configuration of a [Logger].
type config struct {
	output     io.Writer
	timeLayout string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return apply(defaults(w), opts...)
}

func defaults(w io.Writer) config {
	if w == nil {
		w = io.Discard
	}

	return config{
		output:     w,
		timeLayout: DefaultTimeLayout,
		level:      DefaultLevel,
		format:     DefaultFormat,
		caller:     DefaultCaller,
		pretty:     DefaultPretty,
	}
}

// handler builds the slog.Handler described by c.
func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.pretty:
		return newPrettyHandler(c.output, c.format == FormatJSON, opts)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}

// replaceAttr renders timestamps with the configured layout, drops them
// when the layout is empty, and names the trace level.
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		if c.timeLayout == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(t.Format(c.timeLayout))

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

// namedLayouts maps layout names, lower-case with punctuation removed, to
// time layouts.
var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rfc822":      time.RFC822,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"none":        "",
}

// resolveLayout returns the layout named by s, or s itself if it names
// none. Blank input disables timestamps.
func resolveLayout(s string) string {
	key := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(s))

	if key == "" {
		return ""
	}

	if layout, ok := namedLayouts[key]; ok {
		return layout
	}

	return s
}
