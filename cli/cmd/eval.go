package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/log"
)

// Eval evaluates block bodies given as arguments and prints the output of
// each on its own line.
type Eval struct {
	Scope scopeFlags `embed:""`

	Exprs []string `arg:"" help:"Block bodies to evaluate, such as 'add 1 2'" name:"expr"`
}

// Run executes the eval command. The expressions share one set of
// variables and are evaluated in order.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts, err := e.Scope.options()
	if err != nil {
		return err
	}

	stdout, stderr := e.writers(ctx)

	proc := lang.NewProcessor(append(opts,
		lang.WithLogger(log.Default()),
		lang.WithDebugOutput(stderr),
	)...)

	for i, src := range e.Exprs {
		vals, err := proc.Eval(ctx, src)
		if err != nil {
			return lang.WrapError(err).With(
				slog.String("command", "eval"),
				slog.Int("expr", i+1),
			)
		}

		var b strings.Builder

		for _, v := range vals {
			b.WriteString(v.String())
		}

		fmt.Fprintln(stdout, b.String())
	}

	return nil
}

// writers returns the output streams of the kong application.
func (*Eval) writers(ctx context.Context) (stdout, stderr io.Writer) {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Stdout, ktx.Stderr
	}

	return os.Stdout, os.Stderr
}
