package lang

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates the named files under a new temporary directory.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

// processOne processes root/name into a fresh output directory and returns
// the destination path.
func processOne(t *testing.T, p *Processor, root, name string) (string, error) {
	t.Helper()

	dst := filepath.Join(t.TempDir(), "out", filepath.FromSlash(name))

	return dst, p.Process(t.Context(), filepath.Join(root, filepath.FromSlash(name)), dst)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestProcess_Output(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "no blocks is identity",
			files: map[string]string{"main.txt": "line one\r\n  indented { @ braces @}\n\nno newline"},
			want:  "line one\r\n  indented { @ braces @}\n\nno newline",
		},
		{
			name:  "variable substitution",
			files: map[string]string{"main.txt": "Hello, {@ $name @}!\n"},
			want:  "Hello, World!\n",
		},
		{
			name:  "several blocks on a line",
			files: map[string]string{"main.txt": "{@ 1 @}-{@ 2 @}-{@ concat \"x\" \"y\" @}\n"},
			want:  "1-2-xy\n",
		},
		{
			name:  "values are concatenated",
			files: map[string]string{"main.txt": "<{@ separated \", \" \"a\" \"b\" @}>\n"},
			want:  "<a, b>\n",
		},
		{
			name:  "leading no_outline suppresses the line",
			files: map[string]string{"main.txt": "{@ no_outline @}hidden\nshown\n"},
			want:  "\nshown\n",
		},
		{
			name:  "leading no_outline drops the prefix",
			files: map[string]string{"main.txt": "pre {@ no_outline @} post\n"},
			want:  "\n",
		},
		{
			name:  "block output survives no_outline",
			files: map[string]string{"main.txt": "{@ (no_outline) concat \"x\" @} tail\n"},
			want:  "x\n",
		},
		{
			name:  "later no_outline keeps the prefix",
			files: map[string]string{"main.txt": "pre {@ 1 @}{@ no_outline @} post\n"},
			want:  "pre 1\n",
		},
		{
			name:  "no_outline without line terminator",
			files: map[string]string{"main.txt": "a\n{@ no_outline @}b"},
			want:  "a\n",
		},
		{
			name:  "no_outline as an argument",
			files: map[string]string{"main.txt": "{@ concat (no_outline) \"v\" @} tail\nnext\n"},
			want:  "v\nnext\n",
		},
		{
			name: "include is verbatim",
			files: map[string]string{
				"main.txt": "{@ (no_outline) include \"raw.txt\" @}\n",
				"raw.txt":  "{@ $undefined @}\nsecond\n",
			},
			want: "{@ $undefined @}\nsecond\n\n",
		},
		{
			name: "include_eval inherits variables",
			files: map[string]string{
				"main.txt":    "[{@ include_eval \"sub/inc.txt\" @}]\n",
				"sub/inc.txt": "name={@ $name @}",
			},
			want: "[name=World]\n",
		},
		{
			name: "include_eval resolves relative to the included file",
			files: map[string]string{
				"main.txt":     "{@ include_eval \"sub/inc.txt\" @}",
				"sub/inc.txt":  "{@ include_eval \"leaf.txt\" @}",
				"sub/leaf.txt": "leaf\n",
			},
			want: "leaf\n",
		},
		{
			name: "no_outline ignores its arguments",
			files: map[string]string{
				"main.txt": "{@ no_outline include_eval \"inc.txt\" @}\n",
				"inc.txt":  "kept\n",
			},
			want: "\n",
		},
		{
			name: "expr sees initial bindings",
			files: map[string]string{
				"main.txt": "{@ (include_eval \"inc.txt\") expr \"name\" @}\n",
				"inc.txt":  "",
			},
			want: "World\n",
		},
		{
			name:  "python delimiters",
			files: map[string]string{"main.py": "x = \"\"\"@@ $name @@\"\"\"  # {@ $name @}\n"},
			want:  "x = World  # {@ $name @}\n",
		},
		{
			name:  "html delimiters",
			files: map[string]string{"main.html": "<p><!--@ concat \"<\" $name \">\" @--></p>\n"},
			want:  "<p><World></p>\n",
		},
		{
			name:  "start marker inside a literal",
			files: map[string]string{"main.txt": "{@ concat \"{@\" @} tail\n"},
			want:  "{@ tail\n",
		},
		{
			name:  "search resumes after the block end",
			files: map[string]string{"main.txt": "a {@ concat \"{@ 1 @}\" @} b {@ 2 @}\n"},
			want:  "a {@ 1 @} b 2\n",
		},
		{
			name:  "javascript delimiters",
			files: map[string]string{"main.js": "const n = /*@ add 1 2 @*/;\n"},
			want:  "const n = 3;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var debug bytes.Buffer

			root := writeTree(t, tt.files)
			main := "main.txt"

			for name := range tt.files {
				if strings.HasPrefix(name, "main.") {
					main = name
				}
			}

			dst, err := processOne(t, newTestProcessor(&debug,
				WithVariables(Binding{Name: "name", Value: "World"})), root, main)
			require.NoError(t, err)
			assert.Equal(t, tt.want, readFile(t, dst))
		})
	}
}

func TestProcess_EmptyOutputWritesNothing(t *testing.T) {
	var debug bytes.Buffer

	root := writeTree(t, map[string]string{"main.txt": "{@ dbg \"ran\" @}"})

	dst, err := processOne(t, newTestProcessor(&debug), root, "main.txt")
	require.NoError(t, err)

	assert.NoFileExists(t, dst)
	assert.Equal(t, "debug: ran\n", debug.String())
}

func TestProcess_EmitLinesDisabled(t *testing.T) {
	var debug bytes.Buffer

	root := writeTree(t, map[string]string{
		"main.txt": "text {@ dbg \"top\" @}\n{@ include_eval \"inc.txt\" @}\n",
		"inc.txt":  "{@ dbg \"nested\" @}\n",
	})

	dst, err := processOne(t, newTestProcessor(&debug, WithEmitLines(false)), root, "main.txt")
	require.NoError(t, err)

	assert.NoFileExists(t, dst)
	assert.Equal(t, "debug: top\ndebug: nested\n", debug.String())
}

func TestProcess_UndefinedVariableAborts(t *testing.T) {
	var debug bytes.Buffer

	root := writeTree(t, map[string]string{
		"good.txt": "fine\n",
		"bad.txt":  "first\nsecond {@ $missing @}\n",
	})

	p := newTestProcessor(&debug)
	out := t.TempDir()

	good := filepath.Join(out, "good.txt")
	require.NoError(t, p.Process(t.Context(), filepath.Join(root, "good.txt"), good))

	bad := filepath.Join(out, "bad.txt")
	err := p.Process(t.Context(), filepath.Join(root, "bad.txt"), bad)

	require.ErrorIs(t, err, ErrVariableNotFound)
	assert.Contains(t, err.Error(), "line=2")
	assert.Contains(t, err.Error(), "bad.txt")
	assert.NoFileExists(t, bad)
	assert.FileExists(t, good)
}

func TestProcess_NestedErrorReportsInnermostFile(t *testing.T) {
	var debug bytes.Buffer

	root := writeTree(t, map[string]string{
		"main.txt": "\n\n{@ include_eval \"inc.txt\" @}\n",
		"inc.txt":  "{@ nope @}\n",
	})

	_, err := processOne(t, newTestProcessor(&debug), root, "main.txt")
	require.ErrorIs(t, err, ErrMacroNotFound)
	assert.Contains(t, err.Error(), "inc.txt")
	assert.Contains(t, err.Error(), "line=1")
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"block spans lines", map[string]string{"main.txt": "{@ concat\n\"x\" @}\n"}, ErrUnterminatedBlock},
		{"missing include", map[string]string{"main.txt": "{@ include_eval \"nope.txt\" @}\n"}, ErrFileAccess},
		{"stray close", map[string]string{"main.txt": "{@ 1 ) @}\n"}, ErrUnexpectedToken},
		{"self include", map[string]string{"main.txt": "{@ include_eval \"main.txt\" @}\n"}, ErrIncludeDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var debug bytes.Buffer

			root := writeTree(t, tt.files)
			_, err := processOne(t, newTestProcessor(&debug, WithMaxIncludeDepth(8)), root, "main.txt")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProcess_MissingSource(t *testing.T) {
	var debug bytes.Buffer

	err := newTestProcessor(&debug).Process(t.Context(),
		filepath.Join(t.TempDir(), "absent.txt"),
		filepath.Join(t.TempDir(), "out.txt"))
	require.ErrorIs(t, err, ErrFileAccess)
}

func TestProcess_SearchPath(t *testing.T) {
	var debug bytes.Buffer

	lib := writeTree(t, map[string]string{"common/header.txt": "# header\n"})
	root := writeTree(t, map[string]string{
		"main.txt":                "{@ include \"common/header.txt\" @}",
		"local/main.txt":          "{@ include \"common/header.txt\" @}",
		"local/common/header.txt": "# local\n",
	})

	p := newTestProcessor(&debug, WithSearchPath(lib))

	dst, err := processOne(t, p, root, "main.txt")
	require.NoError(t, err)
	assert.Equal(t, "# header\n", readFile(t, dst))

	dst, err = processOne(t, p, root, "local/main.txt")
	require.NoError(t, err)
	assert.Equal(t, "# local\n", readFile(t, dst))
}

func TestProcess_DelimiterOverrides(t *testing.T) {
	var debug bytes.Buffer

	table, err := LoadTable(strings.NewReader(`
types:
  text/x-custom:
    start: '\[\['
    end: '\]\]'
extensions:
  tmpl: text/x-custom
`))
	require.NoError(t, err)

	root := writeTree(t, map[string]string{"main.tmpl": "a [[ add 2 2 ]] {@ 1 @}\n"})

	dst, err := processOne(t, newTestProcessor(&debug,
		WithResolver(DefaultTable().Merge(table))), root, "main.tmpl")
	require.NoError(t, err)
	assert.Equal(t, "a 4 {@ 1 @}\n", readFile(t, dst))
}

func TestWriteChunks_SkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "out.txt")

	written, err := writeChunks(path, []string{"a", "b\n"})
	require.NoError(t, err)
	assert.True(t, written)

	written, err = writeChunks(path, []string{"ab\n"})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = writeChunks(path, []string{"changed\n"})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "changed\n", readFile(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a\n", "b"}, splitLines("a\nb"))
	assert.Equal(t, []string{"a\r\n", "\n"}, splitLines("a\r\n\n"))
}

func TestProcessor_Render(t *testing.T) {
	var debug bytes.Buffer

	p := newTestProcessor(&debug, WithVariables(Binding{Name: "name", Value: "World"}))

	got, err := p.Render(t.Context(), "scratch.html", "<b><!--@ $name @--></b>\n{@ $name @}\n")
	require.NoError(t, err)
	assert.Equal(t, "<b>World</b>\n{@ $name @}\n", got)

	_, err = p.Render(t.Context(), "scratch.txt", "ok\n{@ $missing @}\n")
	require.ErrorIs(t, err, ErrVariableNotFound)
	assert.Contains(t, err.Error(), "line=2")
}
