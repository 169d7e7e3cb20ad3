package lang

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/simpleproc/log"
)

// DefaultMaxIncludeDepth bounds the nesting of include_eval.
const DefaultMaxIncludeDepth = 128

// Processor expands the directive blocks of source files.
type Processor struct {
	resolver  Resolver
	vars      *Scope
	debug     io.Writer
	logger    log.Logger
	emitLines bool
	search    []string
	maxDepth  int
	cache     markerCache
}

// Option configures a [Processor].
type Option func(*Processor)

// WithResolver sets the resolver that selects block delimiters per file.
func WithResolver(r Resolver) Option {
	return func(p *Processor) {
		if r != nil {
			p.resolver = r
		}
	}
}

// WithVariables adds initial variable bindings. Values are stored as text.
func WithVariables(bindings ...Binding) Option {
	return func(p *Processor) {
		for _, b := range bindings {
			p.vars.Set(b.Name, Text(b.Value))
		}
	}
}

// WithDebugOutput sets the stream that receives dbg output.
// A nil writer disables it.
func WithDebugOutput(w io.Writer) Option {
	return func(p *Processor) { p.debug = w }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithEmitLines sets the EmitLines flag of the root context. Disabling it
// evaluates every block without producing any output.
func WithEmitLines(emit bool) Option {
	return func(p *Processor) { p.emitLines = emit }
}

// WithSearchPath sets the directories searched for include paths that do
// not exist relative to the including file.
func WithSearchPath(dirs ...string) Option {
	return func(p *Processor) { p.search = append(p.search, dirs...) }
}

// WithMaxIncludeDepth bounds the nesting of included documents.
func WithMaxIncludeDepth(depth int) Option {
	return func(p *Processor) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// NewProcessor returns a Processor configured by opts.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		resolver:  DefaultTable(),
		vars:      NewScope(),
		debug:     os.Stderr,
		logger:    log.Default(),
		emitLines: true,
		maxDepth:  DefaultMaxIncludeDepth,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Vars returns the variables shared by every document the Processor
// evaluates.
func (p *Processor) Vars() *Scope { return p.vars }

// Root returns a new top-level context.
func (p *Processor) Root(ctx context.Context) *Context {
	return &Context{
		EmitLines:   p.emitLines,
		EmitOutline: true,
		vars:        p.vars,
		proc:        p,
		ctx:         ctx,
	}
}

// Process expands source and writes the result to destination.
//
// Nothing is written when the result is empty. Otherwise the parent
// directories of destination are created and the file is replaced
// atomically; a destination whose content is already identical is left
// untouched.
func (p *Processor) Process(ctx context.Context, source, destination string) error {
	p.logger.InfoContext(ctx, "processing",
		slog.String("source", source),
		slog.String("destination", destination),
	)

	chunks, err := p.Root(ctx).IncludeEval(source)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		p.logger.DebugContext(ctx, "empty output",
			slog.String("source", source),
		)

		return nil
	}

	written, err := writeChunks(destination, chunks)
	if err != nil {
		return err
	}

	if !written {
		p.logger.DebugContext(ctx, "unchanged",
			slog.String("destination", destination),
		)
	}

	return nil
}

// Render expands text as a document named name and returns the result.
// The extension of name selects the delimiters. Relative includes resolve
// against the working directory.
func (p *Processor) Render(ctx context.Context, name, text string) (string, error) {
	mk, err := p.markersFor(name)
	if err != nil {
		return "", err
	}

	chunks, err := p.Root(ctx).expand(splitLines(text), mk, name)
	if err != nil {
		return "", err
	}

	return strings.Join(chunks, ""), nil
}

// Eval evaluates src as the body of a single block. The input ends the
// block, so no delimiters are involved.
func (p *Processor) Eval(ctx context.Context, src string) ([]Value, error) {
	e := &evaluator{
		ctx:    p.Root(ctx),
		tokens: newTokenStream(NewTokenizer(src, 0, nil)),
	}

	vals, err := Collect(e.body())
	if err != nil {
		return nil, err
	}

	tok, ok, err := e.tokens.next()
	if err != nil {
		return nil, err
	}

	if ok {
		return nil, ErrUnexpectedToken.With(
			slog.String("token", tok.String()),
			slog.Int("offset", tok.Offset),
		)
	}

	return vals, nil
}

func (p *Processor) markersFor(path string) (markers, error) {
	d := p.resolver.Delimiters(p.resolver.MediaType(path))

	return p.cache.compile(d)
}
