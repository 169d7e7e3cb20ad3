package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/simpleproc/lang"
)

// scopeFlags are the flags shared by every command that evaluates blocks:
// the initial variables and the include search path.
type scopeFlags struct {
	Variable   []string `help:"Bind a variable before evaluation (repeatable)" placeholder:"KEY=VALUE" sep:"none" short:"v"`
	Vars       string   `help:"YAML mapping of variable bindings"               placeholder:"FILE"      type:"existingfile"`
	IncludeDir []string `help:"Directory searched for includes (repeatable)"   name:"include-dir"      placeholder:"DIR" sep:"none" short:"I" type:"path"`
}

// options returns the processor options selected by the flags.
func (f *scopeFlags) options() ([]lang.Option, error) {
	bindings, err := f.bindings()
	if err != nil {
		return nil, err
	}

	return []lang.Option{
		lang.WithVariables(bindings...),
		lang.WithSearchPath(f.searchPath()...),
	}, nil
}

// bindings returns the bindings of the --vars file followed by those of
// each --variable flag, so that flags take precedence.
func (f *scopeFlags) bindings() ([]lang.Binding, error) {
	var out []lang.Binding

	if f.Vars != "" {
		vars, err := readVars(f.Vars)
		if err != nil {
			return nil, err
		}

		out = append(out, vars...)
	}

	for _, s := range f.Variable {
		b, err := lang.ParseBinding(s)
		if err != nil {
			return nil, err
		}

		out = append(out, b)
	}

	return out, nil
}

// readVars decodes a YAML mapping of scalar values, preserving key order.
func readVars(path string) ([]lang.Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadVars.With(slog.String("file", path)).Wrap(err)
	}

	var ms yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &ms, yaml.UseOrderedMap()); err != nil {
		return nil, ErrReadVars.With(slog.String("file", path)).Wrap(err)
	}

	out := make([]lang.Binding, 0, len(ms))

	for _, item := range ms {
		name := fmt.Sprint(item.Key)

		var value string

		switch v := item.Value.(type) {
		case nil:
		case string:
			value = v
		case bool, int, int64, uint64, float64:
			value = fmt.Sprint(v)
		default:
			return nil, ErrReadVars.
				With(slog.String("file", path), slog.String("name", name)).
				Wrap(fmt.Errorf("unsupported value of type %T", v))
		}

		out = append(out, lang.Binding{Name: name, Value: value})
	}

	return out, nil
}

// searchPath returns the --include-dir directories followed by those of
// [SearchPathEnv]. Entries that are not existing directories are dropped.
func (f *scopeFlags) searchPath() []string {
	joined := mung.Make(
		mung.WithSubjectItems(os.Getenv(SearchPathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(f.IncludeDir...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(joined), func(dir string) bool {
		return !isDir(dir)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
