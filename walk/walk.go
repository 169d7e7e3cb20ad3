// Package walk enumerates the source files of a run and the destination
// each one is written to.
//
// A file argument maps to a file of the same name in the output directory.
// A directory argument is walked recursively and its layout is mirrored
// under the output directory. Any directory may contain an ignore file
// ([IgnoreFile]) listing gitignore-style patterns, one per line, with '#'
// starting a comment. Patterns are matched against paths relative to the
// walked root and apply to the directory holding the ignore file and all
// of its subdirectories. A pattern without a '/' matches at any depth.
package walk

import (
	"bufio"
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// IgnoreFile is the name of the per-directory ignore pattern file.
const IgnoreFile = ".procignore"

// Pair is a source file and the path its output is written to.
type Pair struct {
	Source      string
	Destination string
}

// Sources returns the pairs for root in lexical order. Iteration stops at
// the first error.
func Sources(root, out string) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		root = filepath.Clean(root)

		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = ErrNotExist.With(slog.String("path", root)).Wrap(err)
			}

			yield(Pair{}, err)

			return
		}

		if !info.IsDir() {
			yield(Pair{Source: root, Destination: filepath.Join(out, filepath.Base(root))}, nil)

			return
		}

		w := walker{out: out, yield: yield}
		w.dir(root, ".", nil)
	}
}

type walker struct {
	out   string
	yield func(Pair, error) bool
}

// dir emits the files of dir, then descends into its subdirectories.
// It returns false once iteration has stopped.
func (w *walker) dir(dir, rel string, patterns []string) bool {
	more, err := readPatterns(filepath.Join(dir, IgnoreFile))
	if err != nil {
		w.yield(Pair{}, ErrReadDir.With(slog.String("dir", dir)).Wrap(err))

		return false
	}

	if len(more) > 0 {
		patterns = append(patterns[:len(patterns):len(patterns)], more...)
	}

	var pm *patternmatcher.PatternMatcher

	if len(patterns) > 0 {
		if pm, err = patternmatcher.New(patterns); err != nil {
			w.yield(Pair{}, ErrInvalidPattern.With(slog.String("dir", dir)).Wrap(err))

			return false
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.yield(Pair{}, ErrReadDir.With(slog.String("dir", dir)).Wrap(err))

		return false
	}

	var subdirs []fs.DirEntry

	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e)

			continue
		}

		if e.Name() == IgnoreFile {
			continue
		}

		relpath := filepath.Join(rel, e.Name())

		if pm != nil {
			ignored, err := pm.MatchesOrParentMatches(relpath)
			if err != nil {
				w.yield(Pair{}, ErrInvalidPattern.With(slog.String("dir", dir), slog.String("path", relpath)).Wrap(err))

				return false
			}

			if ignored {
				continue
			}
		}

		pair := Pair{
			Source:      filepath.Join(dir, e.Name()),
			Destination: filepath.Join(w.out, relpath),
		}

		if !w.yield(pair, nil) {
			return false
		}
	}

	for _, e := range subdirs {
		if !w.dir(filepath.Join(dir, e.Name()), filepath.Join(rel, e.Name()), patterns) {
			return false
		}
	}

	return true
}

// readPatterns loads the patterns of an ignore file. A missing file has
// no patterns.
func readPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	var patterns []string

	s := bufio.NewScanner(f)
	for s.Scan() {
		if p, ok := normalizePattern(s.Text()); ok {
			patterns = append(patterns, p)
		}
	}

	return patterns, s.Err()
}

// normalizePattern converts an ignore file line to a patternmatcher
// pattern.
func normalizePattern(line string) (string, bool) {
	if strings.HasPrefix(line, "#") {
		return "", false
	}

	p := strings.TrimSpace(line)
	if p == "" {
		return "", false
	}

	negate := strings.HasPrefix(p, "!")
	p = strings.TrimPrefix(p, "!")
	p = strings.TrimSuffix(p, "/")

	switch {
	case strings.HasPrefix(p, "/"):
		p = strings.TrimLeft(p, "/")
	case !strings.Contains(p, "/"):
		p = "**/" + p
	}

	if p == "" || p == "**/" {
		return "", false
	}

	if negate {
		p = "!" + p
	}

	return filepath.FromSlash(p), true
}
