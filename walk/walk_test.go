package walk

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func mkTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func collect(t *testing.T, root, out string) ([]Pair, error) {
	t.Helper()

	var pairs []Pair

	for p, err := range Sources(root, out) {
		if err != nil {
			return pairs, err
		}

		pairs = append(pairs, p)
	}

	return pairs, nil
}

func TestSources_Directory(t *testing.T) {
	root := mkTree(t, map[string]string{
		IgnoreFile:            "# build output\n*.bak\n\nbuild/\n",
		"a.txt":               "",
		"b.bak":               "",
		"build/out.txt":       "",
		"other/secret.txt":    "",
		"sub/" + IgnoreFile:   "secret.txt\n",
		"sub/c.txt":           "",
		"sub/secret.txt":      "",
		"sub/deep/d.bak":      "",
		"sub/deep/e.txt":      "",
		"sub/deep/secret.txt": "",
	})

	pairs, err := collect(t, root, "out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, p := range pairs {
		rel, err := filepath.Rel(root, p.Source)
		if err != nil {
			t.Fatal(err)
		}

		if want := filepath.Join("out", rel); p.Destination != want {
			t.Errorf("expected destination %q, got %q", want, p.Destination)
		}

		got = append(got, filepath.ToSlash(rel))
	}

	want := []string{"a.txt", "other/secret.txt", "sub/c.txt", "sub/deep/e.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSources_File(t *testing.T) {
	root := mkTree(t, map[string]string{"dir/page.html": ""})
	src := filepath.Join(root, "dir", "page.html")

	pairs, err := collect(t, src, "out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Pair{{Source: src, Destination: filepath.Join("out", "page.html")}}
	if !slices.Equal(pairs, want) {
		t.Errorf("expected %v, got %v", want, pairs)
	}
}

func TestSources_Missing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")

	_, err := collect(t, root, "out")
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("expected %v, got %v", ErrNotExist, err)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected cause %v, got %v", fs.ErrNotExist, err)
	}

	if errors.Is(err, ErrInvalidPattern) {
		t.Errorf("unexpected match with %v", ErrInvalidPattern)
	}

	if got := attr(t, err, "path"); got != root {
		t.Errorf("expected path %q, got %q", root, got)
	}
}

func TestSources_InvalidPattern(t *testing.T) {
	root := mkTree(t, map[string]string{
		"sub/" + IgnoreFile: "/[\n",
		"sub/a.txt":         "a",
	})

	_, err := collect(t, root, "out")
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("expected %v, got %v", ErrInvalidPattern, err)
	}

	if !errors.Is(err, filepath.ErrBadPattern) {
		t.Errorf("expected cause %v, got %v", filepath.ErrBadPattern, err)
	}

	want := filepath.Join(root, "sub")
	if got := attr(t, err, "dir"); got != want {
		t.Errorf("expected dir %q, got %q", want, got)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected message to name %q, got %q", want, err.Error())
	}
}

// attr returns the string value of the named attribute of a walk error.
func attr(t *testing.T, err error, key string) string {
	t.Helper()

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}

	for _, a := range e.LogValue().Group() {
		if a.Key == key && a.Value.Kind() == slog.KindString {
			return a.Value.String()
		}
	}

	return ""
}

func TestSources_StopsEarly(t *testing.T) {
	root := mkTree(t, map[string]string{"a": "", "b": "", "c/d": ""})

	n := 0
	for _, err := range Sources(root, "out") {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		n++

		break
	}

	if n != 1 {
		t.Errorf("expected 1 pair, got %d", n)
	}
}

func TestNormalizePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"*.bak", "**/*.bak", true},
		{"  build/  ", "**/build", true},
		{"docs/*.md", "docs/*.md", true},
		{"/top.txt", "top.txt", true},
		{"!keep.bak", "!**/keep.bak", true},
		{"# comment", "", false},
		{"   ", "", false},
		{"/", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizePattern(tt.in)
		if ok != tt.ok || got != filepath.FromSlash(tt.want) {
			t.Errorf("%q: expected %q, %v; got %q, %v", tt.in, tt.want, tt.ok, got, ok)
		}
	}
}
