package lang

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Scope is an ordered set of variable bindings shared by every [Context]
// of a run. Writes are visible to all contexts holding the same Scope.
type Scope struct {
	mu     sync.RWMutex
	names  []string
	values map[string]Value
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]Value)}
}

// Set binds name to v, keeping the position of an existing binding.
func (s *Scope) Set(name string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}

	s.values[name] = v
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]

	return v, ok
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.names)
}

// All iterates the bindings in insertion order.
func (s *Scope) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		s.mu.RLock()
		names := append([]string(nil), s.names...)
		s.mu.RUnlock()

		for _, name := range names {
			v, ok := s.Get(name)
			if ok && !yield(name, v) {
				return
			}
		}
	}
}

// Binding is an initial variable assignment supplied by the caller.
type Binding struct {
	Name  string
	Value string
}

// ParseBinding parses "name=value". The value may be empty and may itself
// contain '='.
func ParseBinding(s string) (Binding, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Binding{}, ErrInvalidBinding.With(slog.String("binding", s))
	}

	return Binding{Name: name, Value: value}, nil
}

// Context is the evaluation state of one document: the shared variables,
// the output suppression flags, and the directory relative include paths
// are resolved against.
type Context struct {
	// EmitLines enables output for the document. When false, blocks are
	// still evaluated for their side effects.
	EmitLines bool
	// EmitOutline enables the verbatim text around blocks on the current
	// line. It is reset to true after every line.
	EmitOutline bool
	// BaseDir is the directory of the document being processed.
	BaseDir string

	vars  *Scope
	proc  *Processor
	ctx   context.Context
	depth int
}

// Vars returns the variables visible to c.
func (c *Context) Vars() *Scope { return c.vars }

// Child returns a context for a document in dir. It shares the variables
// and inherits EmitLines.
func (c *Context) Child(dir string) *Context {
	return &Context{
		EmitLines:   c.EmitLines,
		EmitOutline: true,
		BaseDir:     dir,
		vars:        c.vars,
		proc:        c.proc,
		ctx:         c.ctx,
		depth:       c.depth + 1,
	}
}

// IncludeEval processes the named file as a nested document and returns
// its output chunks in order.
func (c *Context) IncludeEval(name string) ([]string, error) {
	if c.depth >= c.proc.maxDepth {
		return nil, ErrIncludeDepth.With(
			slog.String("path", name),
			slog.Int("depth", c.depth),
		)
	}

	path, err := c.locate(name)
	if err != nil {
		return nil, err
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	mk, err := c.proc.markersFor(path)
	if err != nil {
		return nil, err
	}

	child := c.Child(filepath.Dir(path))

	c.proc.logger.TraceContext(c.ctx, "include",
		slog.String("path", path),
		slog.Int("depth", child.depth),
	)

	return child.expand(lines, mk, path)
}

// expand processes the lines of the document at path in order.
func (c *Context) expand(lines []string, mk markers, path string) ([]string, error) {
	var out []string

	for i, line := range lines {
		chunks, err := c.processLine(line, mk)
		if err != nil {
			return nil, annotate(err, path, i+1)
		}

		out = append(out, chunks...)
	}

	return out, nil
}

// processLine expands every block on line and returns the output chunks.
func (c *Context) processLine(line string, mk markers) ([]string, error) {
	defer func() { c.EmitOutline = true }()

	var parts []string

	last := 0

	for blocks := 0; last < len(line); blocks++ {
		loc := mk.start.FindStringIndex(line[last:])
		if loc == nil {
			break
		}

		start, body := last+loc[0], last+loc[1]
		if last < start {
			parts = append(parts, line[last:start])
		}

		tok := NewTokenizer(line, body, mk.end)
		e := &evaluator{ctx: c, tokens: newTokenStream(tok)}

		chunks, err := e.block()
		if err != nil {
			if ee := WrapError(err); !ee.hasAttr("file") {
				err = ee.With(slog.Int("column", start+1))
			}

			return nil, err
		}

		// A suppressed leading block drops everything queued for the line.
		if blocks == 0 && !c.EmitOutline {
			parts = parts[:0]
		}

		parts = append(parts, chunks...)

		if tok.Offset() <= last {
			break
		}

		last = tok.Offset()
	}

	if !c.EmitLines {
		return nil, nil
	}

	if last < len(line) {
		if c.EmitOutline {
			parts = append(parts, line[last:])
		} else if eol := lineTerminator(line); eol != "" {
			parts = append(parts, eol)
		}
	}

	return parts, nil
}

// locate resolves an include path: absolute paths as given, relative paths
// against BaseDir and then against each search directory.
func (c *Context) locate(name string) (string, error) {
	name = filepath.Clean(name)
	if filepath.IsAbs(name) {
		return name, nil
	}

	path := filepath.Join(c.BaseDir, name)
	if _, err := os.Stat(path); err == nil || len(c.proc.search) == 0 {
		return path, nil
	}

	for _, dir := range c.proc.search {
		alt := filepath.Join(dir, name)
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}

	return path, nil
}

// debug reports a dbg message on the diagnostic stream.
func (c *Context) debug(msg string) {
	c.proc.logger.DebugContext(c.ctx, "dbg", slog.String("message", msg))

	if c.proc.debug != nil {
		fmt.Fprintln(c.proc.debug, "debug:", msg)
	}
}

func lineTerminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}
