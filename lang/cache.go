package lang

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// programs holds compiled expr programs keyed by the xxh3 hash of their
// source. Programs are compiled without a typed environment, so one
// program serves every set of variables.
var programs sync.Map

// program is a cache entry, compiled at most once.
type program struct {
	once sync.Once
	src  string
	prog *vm.Program
	err  error
}

// compileExpr returns the compiled program for src and whether it was
// already cached.
func compileExpr(src string) (prog *vm.Program, hit bool, err error) {
	entry := &program{src: src}

	v, hit := programs.LoadOrStore(xxh3.HashString(src), entry)

	cached, ok := v.(*program)
	if !ok || cached.src != src {
		// Hash collision: compile without caching.
		prog, err = expr.Compile(src)

		return prog, false, err
	}

	cached.once.Do(func() {
		cached.prog, cached.err = expr.Compile(cached.src)
	})

	return cached.prog, hit, cached.err
}

// ClearCache removes all cached expr programs.
func ClearCache() {
	programs.Clear()
}
