package log

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Level is the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a logger configured without [WithLevel].
const DefaultLevel = LevelInfo

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lower-case name of the level. Levels between the
// named ones are rendered as an offset from the nearest lower name,
// such as "info+2".
func (l Level) String() string {
	base := levelNames[0]

	for _, n := range levelNames {
		if l >= n.level {
			base = n
		}
	}

	switch d := int(l - base.level); {
	case d > 0:
		return base.name + "+" + strconv.Itoa(d)
	case d < 0:
		return base.name + strconv.Itoa(d)
	}

	return base.name
}

// UnmarshalText parses a level name, see [ParseLevel].
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}

// Levels returns an iterator over the names of the defined levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel parses a level name, case-insensitively. Names accepted by
// [slog.Level.UnmarshalText] are valid as well, including offsets like
// "warn-2". Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(sl)
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a logger configured without [WithFormat].
const DefaultFormat = FormatText

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// UnmarshalText parses a format name, see [ParseFormat].
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))

	return nil
}

// Formats returns an iterator over the names of the defined formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat parses "text" or "json", case-insensitively. Unrecognized
// input yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}
