package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ardnew/simpleproc/lang"
	"github.com/ardnew/simpleproc/log"
)

const defaultEditor = "vi"

// defaultScratchExt selects the delimiters of the scratch document when
// the edit command names no extension.
const defaultScratchExt = ".txt"

// editCommand implements [tea.ExecCommand] for the edit-render-retry loop.
// It writes the scratch document to a temporary file, opens the user's
// editor, and renders the result. On a render error the user is prompted
// to re-edit; declining leaves the REPL.
type editCommand struct {
	proc    *lang.Processor
	ctxFunc func() context.Context
	logger  log.Logger
	ext     string
	content string // document text, updated on success
	output  string // rendered document, set on success
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied document cancels the edit without
// error. If the user declines to re-edit, it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "simpleproc-repl-*"+c.ext)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	content := c.content

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(data) == 0 {
			return nil
		}

		content = string(data)

		// Render under the scratch name so relative includes resolve
		// against the working directory.
		out, renderErr := c.proc.Render(ctx, "scratch"+c.ext, content)
		c.logger.TraceContext(ctx, "editor render attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", renderErr == nil),
		)

		if renderErr == nil {
			c.content, c.output = content, out

			return nil
		}

		fmt.Fprintf(c.stderr, "\nRender error: %s\n", renderErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// scratchExt normalizes the extension argument of the edit command.
func scratchExt(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return defaultScratchExt
	}

	return "." + strings.TrimPrefix(filepath.Base(arg), ".")
}

// runEditor launches the user's editor on path and returns the edited
// content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
