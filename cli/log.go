package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/simpleproc/log"
)

// logLevel configures the package-level logger as a side effect of parsing,
// so that the level applies to messages emitted while kong is still parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

// logFormat configures the package-level logger as a side effect of
// parsing.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevelDefault}"  enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"${logFormatDefault}" enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                                      help:"Set timestamp format."`
	Caller     bool      `default:"false"                                        help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                         help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelDefault":  log.DefaultLevel.String(),
		"logLevelEnum":     strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatDefault": log.DefaultFormat.String(),
		"logFormatEnum":    strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logging flag to the package-level logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies the logging flags found in args before kong parses them,
// so that the logger is configured regardless of flag position. Level and
// format are also applied during parsing by their UnmarshalText methods,
// but the boolean flags are not.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		name, value, assigned := strings.Cut(args[i], "=")

		key, negated := strings.CutPrefix(name, "--no-log-")
		if !negated {
			var ok bool
			if key, ok = strings.CutPrefix(name, "--log-"); !ok {
				continue
			}
		}

		// next consumes the following argument as the value of a non-boolean
		// flag given without '='.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		// toggle reports the value of a boolean flag, or false if the
		// assigned value is not a boolean.
		toggle := func() (bool, bool) {
			on := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					return false, false
				}

				on = v
			}

			return on != negated, true
		}

		switch key {
		case "level":
			if !negated {
				_ = f.Level.UnmarshalText([]byte(next()))
			}

		case "format":
			if !negated {
				_ = f.Format.UnmarshalText([]byte(next()))
			}

		case "pretty":
			if on, ok := toggle(); ok {
				f.Pretty = on
				log.Config(log.WithPretty(on))
			}

		case "caller":
			if on, ok := toggle(); ok {
				f.Caller = on
				log.Config(log.WithCaller(on))
			}
		}
	}
}
