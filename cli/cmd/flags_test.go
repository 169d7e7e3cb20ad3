package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/simpleproc/lang"
)

func TestReadVars(t *testing.T) {
	root := writeTree(t, map[string]string{
		"ok.yaml":     "zeta: last\nalpha: 1\nflag: true\nnothing:\nratio: 0.5\n",
		"nested.yaml": "outer:\n  inner: 1\n",
		"bad.yaml":    "a: [1\n",
		"empty.yaml":  "",
	})

	vars, err := readVars(filepath.Join(root, "ok.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []lang.Binding{
		{Name: "zeta", Value: "last"},
		{Name: "alpha", Value: "1"},
		{Name: "flag", Value: "true"},
		{Name: "nothing", Value: ""},
		{Name: "ratio", Value: "0.5"},
	}, vars)

	vars, err = readVars(filepath.Join(root, "empty.yaml"))
	require.NoError(t, err)
	assert.Empty(t, vars)

	_, err = readVars(filepath.Join(root, "nested.yaml"))
	require.ErrorIs(t, err, ErrReadVars)

	_, err = readVars(filepath.Join(root, "bad.yaml"))
	require.ErrorIs(t, err, ErrReadVars)

	_, err = readVars(filepath.Join(root, "absent.yaml"))
	require.ErrorIs(t, err, ErrReadVars)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestScopeFlags_Bindings(t *testing.T) {
	root := writeTree(t, map[string]string{"vars.yaml": "a: file\nb: file\n"})

	f := scopeFlags{
		Vars:     filepath.Join(root, "vars.yaml"),
		Variable: []string{"b=flag", "c=x=y"},
	}

	got, err := f.bindings()
	require.NoError(t, err)
	assert.Equal(t, []lang.Binding{
		{Name: "a", Value: "file"},
		{Name: "b", Value: "file"},
		{Name: "b", Value: "flag"},
		{Name: "c", Value: "x=y"},
	}, got)
}

func TestScopeFlags_SearchPath(t *testing.T) {
	first, second, env := t.TempDir(), t.TempDir(), t.TempDir()
	missing := filepath.Join(first, "missing")

	t.Setenv(SearchPathEnv, env+string(os.PathListSeparator)+missing)

	f := scopeFlags{IncludeDir: []string{first, second}}
	assert.Equal(t, []string{first, second, env}, f.searchPath())

	t.Setenv(SearchPathEnv, "")

	f = scopeFlags{}
	assert.Empty(t, f.searchPath())
}
