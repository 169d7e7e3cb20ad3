package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/simpleproc/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithPretty(false), log.WithTimeLayout("none"))
	logger.Info("processing", slog.String("source", "in/index.html"))
	// Output:
	// level=INFO msg=processing source=in/index.html
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelWarn))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", slog.String("key", "value"))
	// Output:
	// level=WARN msg=shown key=value
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout, log.WithPretty(false), log.WithTimeLayout("none"))
	logger = logger.With(slog.String("file", "a.txt"))

	logger.Info("include", slog.Int("depth", 1))
	// Output:
	// level=INFO msg=include file=a.txt depth=1
}

func Example_withContext() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"),
		log.WithFormat(log.FormatJSON))

	logger.InfoContext(context.Background(), "done", slog.Int("files", 2))
	// Output:
	// {"level":"INFO","msg":"done","files":2}
}
