package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/walk"
)

func TestProcess_Run(t *testing.T) {
	quiet(t)

	root := writeTree(t, map[string]string{
		"site/index.html":    "<h1><!--@ $title @--></h1>\n<p><!--@ include_eval \"part.txt\" @--></p>\n",
		"site/part.txt":      "by {@ $author @}",
		"site/.procignore":   "*.bak\n",
		"site/old.bak":       "{@ $undefined @}\n",
		"site/sub/notes.txt": "--{@ include \"header.txt\" @}--\n",
		"lib/header.txt":     "shared",
		"vars.yaml":          "title: Home\nauthor: nobody\n",
	})

	out := filepath.Join(t.TempDir(), "out")

	p := Process{
		Scope: scopeFlags{
			Vars:       filepath.Join(root, "vars.yaml"),
			Variable:   []string{"author=ardnew"},
			IncludeDir: []string{filepath.Join(root, "lib")},
		},
		Output: out,
		Paths:  []string{filepath.Join(root, "site")},
	}

	require.NoError(t, p.Run(t.Context()))

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
		require.NoError(t, err)

		return string(data)
	}

	assert.Equal(t, "<h1>Home</h1>\n<p>by ardnew</p>\n", read("index.html"))
	assert.Equal(t, "by ardnew", read("part.txt"))
	assert.Equal(t, "--shared--\n", read("sub/notes.txt"))
	assert.NoFileExists(t, filepath.Join(out, "old.bak"))
	assert.NoFileExists(t, filepath.Join(out, ".procignore"))
}

func TestProcess_Check(t *testing.T) {
	quiet(t)

	root := writeTree(t, map[string]string{"a.txt": "{@ concat \"x\" @}\n"})
	out := filepath.Join(t.TempDir(), "out")

	p := Process{Output: out, Check: true, Paths: []string{filepath.Join(root, "a.txt")}}
	require.NoError(t, p.Run(t.Context()))
	assert.NoDirExists(t, out)

	root = writeTree(t, map[string]string{"b.txt": "{@ $missing @}\n"})
	p.Paths = []string{filepath.Join(root, "b.txt")}

	err := p.Run(t.Context())
	require.ErrorIs(t, err, lang.ErrVariableNotFound)
}

func TestProcess_Errors(t *testing.T) {
	quiet(t)

	root := writeTree(t, map[string]string{
		"delims.yaml": "types: [not, a, mapping]\n",
		"a.txt":       "text\n",
	})

	p := Process{Output: t.TempDir(), Paths: []string{filepath.Join(root, "absent")}}
	err := p.Run(t.Context())
	require.ErrorIs(t, err, ErrSource)
	require.ErrorIs(t, err, walk.ErrNotExist)

	p = Process{
		Output:     t.TempDir(),
		Delimiters: filepath.Join(root, "delims.yaml"),
		Paths:      []string{filepath.Join(root, "a.txt")},
	}
	require.ErrorIs(t, p.Run(t.Context()), ErrDelimiters)

	p = Process{
		Scope:  scopeFlags{Variable: []string{"novalue"}},
		Output: t.TempDir(),
		Paths:  []string{filepath.Join(root, "a.txt")},
	}
	require.ErrorIs(t, p.Run(t.Context()), lang.ErrInvalidBinding)
}

func TestProcess_Flags(t *testing.T) {
	var cli struct {
		Process Process `cmd:"" default:"withargs"`
	}

	dir := t.TempDir()

	parse(t, &cli, nil,
		"-v", "a=1", "--variable", "b=x,y",
		"-I", dir, "-o", "out", "--check",
		"one.txt", "two",
	)

	assert.Equal(t, []string{"a=1", "b=x,y"}, cli.Process.Scope.Variable)
	assert.Equal(t, []string{dir}, cli.Process.Scope.IncludeDir)
	assert.True(t, cli.Process.Check)
	assert.True(t, filepath.IsAbs(cli.Process.Output))
	require.Len(t, cli.Process.Paths, 2)
	assert.Equal(t, "one.txt", filepath.Base(cli.Process.Paths[0]))
	assert.Equal(t, "two", filepath.Base(cli.Process.Paths[1]))
}
