package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stencil/log"
)

const defaultEditor = "vi"

// editVarsCommand implements [tea.ExecCommand]. It writes the session
// variables to a temporary YAML file, opens the user's editor, and decodes
// the result, offering to re-edit when the YAML is invalid.
type editVarsCommand struct {
	vars    map[string]any
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	// edited is nil when the user cleared the file.
	edited map[string]any
}

func (c *editVarsCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editVarsCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editVarsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-decode-retry loop. It returns [ErrEditDeclined]
// when the user chooses not to fix invalid YAML.
func (c *editVarsCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.Marshal(c.vars)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), "stencil-vars-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	f.Close()

	in := bufio.NewScanner(c.stdin)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		var vars map[string]any

		decodeErr := yaml.Unmarshal(data, &vars)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil))

		if decodeErr == nil {
			if vars == nil {
				vars = make(map[string]any)
			}

			c.edited = vars

			return nil
		}

		fmt.Fprintf(c.stderr, "\nYAML error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !in.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(in.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor runs $EDITOR, or vi, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
