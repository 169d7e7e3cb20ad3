// Package log provides a concurrency-safe leveled logger built on
// [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("processing", slog.String("source", path))
//
// # Configuration
//
// Loggers are configured with functional options when created, and
// [Logger.Wrap] derives a new logger with some options changed:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// By default records are written as colorized text; [WithPretty] with false
// selects the plain [slog] text and JSON handlers.
//
// # Levels
//
// In addition to the [slog] levels, [LevelTrace] sits below [LevelDebug]
// and is used for per-include tracing.
//
// # Package Logger
//
// The functions [Trace], [Debug], [Info], [Warn], and [Error] write to a
// package-level logger that [Config] reconfigures, typically once from
// command-line flags.
package log
