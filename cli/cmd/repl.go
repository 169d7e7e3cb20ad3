package cmd

import (
	"context"

	"github.com/ardnew/simpleproc/cli/cmd/repl"
	"github.com/ardnew/simpleproc/log"
)

// Repl starts an interactive block evaluator.
type Repl struct {
	Scope scopeFlags `embed:""`

	NoHistory bool `help:"Do not read or write the history file"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	opts, err := r.Scope.options()
	if err != nil {
		return err
	}

	var cacheDir string
	if !r.NoHistory {
		cacheDir = modelVar(ctx, CacheIdentifier)
	}

	return repl.Run(ctx, cacheDir, log.Default(), opts...)
}
