package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/reviewarena/arena/internal/models"
)

// CLI invokes a model through its command-line tool. The prompt travels on
// stdin, or as a trailing positional argument when promptAsArg is set.
type CLI struct {
	model       models.Model
	opts        Options
	promptAsArg bool
}

// NewCLI creates a CLI provider for the model.
func NewCLI(m models.Model, opts Options, promptAsArg bool) *CLI {
	return &CLI{model: m, opts: opts, promptAsArg: promptAsArg}
}

func (c *CLI) Name() string { return c.model.ID }

// Invoke runs the model command and returns its trimmed stdout.
func (c *CLI) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	workdir, err := workdirFor(c.opts)
	if err != nil {
		return "", fmt.Errorf("invocation workdir: %w", err)
	}

	command := c.model.Command
	if c.promptAsArg {
		command = command + " " + shellQuote(prompt)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workdir
	if !c.promptAsArg {
		cmd.Stdin = strings.NewReader(prompt)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w%s", c.model.ID, err, stderrTail(stderr.String(), 3))
	}
	return Normalize(stdout.String()), nil
}

// shellQuote single-quotes s for inclusion in a sh -c command line.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// stderrTail formats the last n lines of stderr for an error message.
func stderrTail(stderr string, n int) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return "\n  " + strings.Join(lines, "\n  ")
}
