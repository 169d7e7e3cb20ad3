package lang

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

// Delimiters holds the regular-expression sources matching the start and
// end of a directive block.
type Delimiters struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DefaultDelimiters are used for media types without a table entry.
var DefaultDelimiters = Delimiters{Start: `\{@`, End: `@\}`}

// Resolver maps file names to media types and media types to delimiters.
type Resolver interface {
	MediaType(name string) string
	Delimiters(mediaType string) Delimiters
}

// Table is the [Resolver] backed by static lookup tables.
//
// Extensions maps a lower-case file extension (with leading dot) to a media
// type and takes precedence over the platform MIME registry. Types maps a
// media type to its delimiters; unknown media types resolve to Default.
type Table struct {
	Default    Delimiters            `yaml:"default,omitempty"`
	Types      map[string]Delimiters `yaml:"types,omitempty"`
	Extensions map[string]string     `yaml:"extensions,omitempty"`
}

// DefaultTable returns a new copy of the built-in resolver table.
func DefaultTable() *Table {
	markup := Delimiters{Start: `<!--@`, End: `@-->`}

	return &Table{
		Default: DefaultDelimiters,
		Types: map[string]Delimiters{
			"text/x-python":   {Start: `"""@@`, End: `@@"""`},
			"text/javascript": {Start: `/\*@`, End: `@\*/`},
			"text/html":       markup,
			"text/xml":        markup,
		},
		Extensions: map[string]string{
			".py":   "text/x-python",
			".js":   "text/javascript",
			".mjs":  "text/javascript",
			".html": "text/html",
			".htm":  "text/html",
			".xml":  "text/xml",
		},
	}
}

// LoadTable decodes a YAML resolver table from r.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table

	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return &t, nil
		}

		return nil, ErrInvalidDelimiters.Wrap(err)
	}

	return &t, nil
}

// Merge overlays the non-empty entries of o onto t.
func (t *Table) Merge(o *Table) *Table {
	if o == nil {
		return t
	}

	if o.Default.Start != "" && o.Default.End != "" {
		t.Default = o.Default
	}

	if t.Types == nil {
		t.Types = make(map[string]Delimiters, len(o.Types))
	}

	maps.Copy(t.Types, o.Types)

	if t.Extensions == nil {
		t.Extensions = make(map[string]string, len(o.Extensions))
	}

	for ext, typ := range o.Extensions {
		t.Extensions[normalizeExt(ext)] = typ
	}

	return t
}

// MediaType returns the media type of the named file, or "" if unknown.
func (t *Table) MediaType(name string) string {
	ext := normalizeExt(filepath.Ext(name))
	if ext == "" {
		return ""
	}

	if typ, ok := t.Extensions[ext]; ok {
		return typ
	}

	typ, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}

	return typ
}

// Delimiters returns the delimiters for mediaType.
func (t *Table) Delimiters(mediaType string) Delimiters {
	if d, ok := t.Types[mediaType]; ok {
		return d
	}

	if t.Default.Start == "" || t.Default.End == "" {
		return DefaultDelimiters
	}

	return t.Default
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// markers are the compiled forms of a [Delimiters] pair.
type markers struct {
	start *regexp.Regexp // unanchored: searched for within a line
	end   *regexp.Regexp // anchored: matched at the tokenizer position
}

// markerCache memoizes compiled delimiter patterns.
type markerCache struct {
	mu sync.Mutex
	m  map[Delimiters]markers
}

func (c *markerCache) compile(d Delimiters) (markers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mk, ok := c.m[d]; ok {
		return mk, nil
	}

	start, err := regexp.Compile(d.Start)
	if err != nil {
		return markers{}, ErrInvalidDelimiters.Wrap(err).
			With(slog.String("start", d.Start))
	}

	end, err := regexp.Compile(`^(?:` + d.End + `)`)
	if err != nil {
		return markers{}, ErrInvalidDelimiters.Wrap(err).
			With(slog.String("end", d.End))
	}

	if c.m == nil {
		c.m = make(map[Delimiters]markers)
	}

	mk := markers{start: start, end: end}
	c.m[d] = mk

	return mk, nil
}
