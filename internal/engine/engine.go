package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// Outcome is the result of one engine invocation. The engine writes its
// transcript to the output path itself; callers verify the checkpoint
// predicate on that path rather than trusting OK alone.
type Outcome struct {
	OK         bool
	Err        error
	StderrTail string
}

// Runner invokes the external review-orchestration engine as a subprocess.
type Runner struct {
	command   string
	timeout   time.Duration
	configDir string
}

// NewRunner creates an engine runner. Generated config files land in
// configDir with ULID-unique names so concurrent tasks never collide.
func NewRunner(cfg config.Engine, configDir string) *Runner {
	return &Runner{
		command:   cfg.Command,
		timeout:   cfg.Timeout,
		configDir: configDir,
	}
}

// ConfigOptions shape a generated engine configuration.
type ConfigOptions struct {
	Rounds           int
	CheckConvergence bool
	SkipContext      bool
}

// reviewerSpec and engineConfig mirror the engine's YAML schema.
type reviewerSpec struct {
	Model  string `yaml:"model"`
	Prompt string `yaml:"prompt"`
}

type engineConfig struct {
	Providers map[string]map[string]bool `yaml:"providers"`
	Defaults  struct {
		MaxRounds        int    `yaml:"max_rounds"`
		OutputFormat     string `yaml:"output_format"`
		CheckConvergence bool   `yaml:"check_convergence"`
	} `yaml:"defaults"`
	Reviewers  map[string]reviewerSpec `yaml:"reviewers"`
	Analyzer   reviewerSpec            `yaml:"analyzer"`
	Summarizer reviewerSpec            `yaml:"summarizer"`
}

const (
	analyzerPrompt   = "You are a senior engineer providing concise PR context analysis. Summarize what this PR does, what files are affected, and any areas of concern."
	summarizerPrompt = "You are a neutral technical reviewer. Synthesize the debate into a final conclusion. Highlight consensus points and unresolved disagreements. Be concise."
)

// GenerateConfig writes a complete engine config for the given reviewer set
// and returns its path. The first model doubles as analyzer and summarizer.
func (r *Runner) GenerateConfig(reviewers []models.Model, reviewPrompt string, opts ConfigOptions) (string, error) {
	if len(reviewers) == 0 {
		return "", fmt.Errorf("no reviewers for engine config")
	}

	var ec engineConfig
	ec.Providers = map[string]map[string]bool{}
	ec.Reviewers = map[string]reviewerSpec{}
	for _, m := range reviewers {
		ec.Providers[m.Provider] = map[string]bool{"enabled": true}
		ec.Reviewers[m.Provider] = reviewerSpec{Model: m.Provider, Prompt: reviewPrompt}
	}
	ec.Defaults.MaxRounds = opts.Rounds
	ec.Defaults.OutputFormat = "json"
	ec.Defaults.CheckConvergence = opts.CheckConvergence

	first := reviewers[0].Provider
	ec.Analyzer = reviewerSpec{Model: first, Prompt: analyzerPrompt}
	ec.Summarizer = reviewerSpec{Model: first, Prompt: summarizerPrompt}

	data, err := yaml.Marshal(&ec)
	if err != nil {
		return "", fmt.Errorf("marshal engine config: %w", err)
	}

	if err := os.MkdirAll(r.configDir, 0o755); err != nil {
		return "", fmt.Errorf("create engine config dir: %w", err)
	}
	path := filepath.Join(r.configDir, "engine_"+strings.ToLower(store.NewULID())+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write engine config: %w", err)
	}
	return path, nil
}

// Review runs the engine against a PR. It blocks up to the configured
// timeout; a non-zero exit or timeout yields a failure outcome rather than
// an error escaping to the scheduler. No automatic retry: a failed task
// leaves no checkpoint and reruns naturally on the next invocation.
func (r *Runner) Review(ctx context.Context, prURL, configPath, outputPath string, rounds int, skipContext bool) Outcome {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return Outcome{Err: fmt.Errorf("create output dir: %w", err)}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := []string{
		"review", prURL,
		"-c", configPath,
		"-o", outputPath,
		"-f", "json",
		"-a", // use all configured reviewers, skip interactive selection
		"-r", strconv.Itoa(rounds),
	}
	if skipContext {
		args = append(args, "--skip-context")
	}

	cmd := exec.CommandContext(ctx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Outcome{
			Err:        fmt.Errorf("%s review: %w", r.command, err),
			StderrTail: tail(stderr.String(), 5),
		}
	}
	return Outcome{OK: true}
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
