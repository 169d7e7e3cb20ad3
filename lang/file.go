package lang

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// readLines reads the whole file at path and splits it after each '\n'.
// Line terminators are kept; the file is closed before returning.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrFileAccess.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	r := readahead.NewReader(f)
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrFileAccess.Wrap(err).With(slog.String("path", path))
	}

	return splitLines(string(data)), nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// writeChunks replaces the file at path with the concatenated chunks.
// The content goes to a temporary file in the same directory that is then
// renamed over path. It reports false without writing when path already
// holds the same content.
func writeChunks(path string, chunks []string) (bool, error) {
	content := strings.Join(chunks, "")

	if prev, err := os.ReadFile(path); err == nil &&
		len(prev) == len(content) && xxh3.Hash(prev) == xxh3.HashString(content) {
		return false, nil
	}

	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, ErrFileAccess.Wrap(err).With(slog.String("path", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return false, ErrFileAccess.Wrap(err).With(slog.String("path", path))
	}

	fail := func(err error) (bool, error) {
		tmp.Close()
		os.Remove(tmp.Name())

		return false, ErrFileAccess.Wrap(err).With(slog.String("path", path))
	}

	if _, err := io.WriteString(tmp, content); err != nil {
		return fail(err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}

	if err := tmp.Close(); err != nil {
		return fail(err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return false, ErrFileAccess.Wrap(err).With(slog.String("path", path))
	}

	return true, nil
}
