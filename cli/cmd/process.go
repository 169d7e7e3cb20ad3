package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/log"
	"github.com/ardnew/simpleproc/walk"
)

// Process expands the blocks of each source file into the output directory.
type Process struct {
	Scope scopeFlags `embed:""`

	Output     string `help:"Output directory"                              placeholder:"DIR"  required:"" short:"o" type:"path"`
	Delimiters string `help:"YAML delimiter table merged over the defaults" placeholder:"FILE" type:"existingfile"`
	Check      bool   `help:"Evaluate every block but write no output"`

	Paths []string `arg:"" help:"Source files or directories" name:"path" type:"path"`
}

// Run executes the process command.
func (p *Process) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	proc, err := p.processor()
	if err != nil {
		return err
	}

	var count int

	for _, root := range p.Paths {
		for pair, err := range walk.Sources(root, p.Output) {
			if err != nil {
				return ErrSource.With(slog.String("path", root)).Wrap(err)
			}

			if err := proc.Process(ctx, pair.Source, pair.Destination); err != nil {
				return err
			}

			count++
		}
	}

	log.InfoContext(ctx, "processed",
		slog.Int("files", count),
		slog.Bool("check", p.Check),
	)

	return nil
}

// processor builds the processor configured by the flags.
func (p *Process) processor() (*lang.Processor, error) {
	opts, err := p.Scope.options()
	if err != nil {
		return nil, err
	}

	table, err := p.table()
	if err != nil {
		return nil, err
	}

	return lang.NewProcessor(append(opts,
		lang.WithResolver(table),
		lang.WithEmitLines(!p.Check),
		lang.WithLogger(log.Default()),
		lang.WithDebugOutput(os.Stderr),
	)...), nil
}

// table returns the default delimiter table merged with the --delimiters
// file, if any.
func (p *Process) table() (*lang.Table, error) {
	table := lang.DefaultTable()
	if p.Delimiters == "" {
		return table, nil
	}

	f, err := os.Open(p.Delimiters)
	if err != nil {
		return nil, ErrDelimiters.With(slog.String("file", p.Delimiters)).Wrap(err)
	}
	defer f.Close()

	overrides, err := lang.LoadTable(f)
	if err != nil {
		return nil, ErrDelimiters.With(slog.String("file", p.Delimiters)).Wrap(err)
	}

	return table.Merge(overrides), nil
}
