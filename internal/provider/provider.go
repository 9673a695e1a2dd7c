package provider

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/reviewarena/arena/internal/models"
)

// Provider is the uniform model-invocation capability: prompt in, final
// answer text out. Implementations normalize their transport's response
// encoding (stdin-piped CLI, positional-arg CLI, JSON event stream, HTTP
// API) into a plain string.
type Provider interface {
	Invoke(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Options bound a single invocation.
type Options struct {
	Timeout time.Duration
	// Workdir isolates the invocation's filesystem view. Empty means a
	// fresh temp dir, so models never see side effects of prior tasks.
	Workdir string
}

// Credentials maps environment variable names to secret values, resolved
// once at startup and threaded through construction. Providers never read
// the environment at call depth.
type Credentials map[string]string

// ResolveCredentials reads each model's configured key env var once.
func ResolveCredentials(roster []models.Model) Credentials {
	creds := Credentials{}
	for _, m := range roster {
		if m.APIKeyEnv != "" {
			creds[m.APIKeyEnv] = os.Getenv(m.APIKeyEnv)
		}
	}
	return creds
}

// New creates a provider for the given model.
func New(m models.Model, creds Credentials, opts Options) (Provider, error) {
	switch m.Kind {
	case models.KindCLI:
		return NewCLI(m, opts, false), nil
	case models.KindArg:
		return NewCLI(m, opts, true), nil
	case models.KindStream:
		return NewStream(m, opts), nil
	case models.KindAPI:
		return NewAnthropic(m, creds[m.APIKeyEnv], opts)
	default:
		return nil, fmt.Errorf("unknown model kind: %s", m.Kind)
	}
}

var (
	thinkRe = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)
	fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\n(.*)\n```$")
)

// Normalize strips provider-emitted reasoning markup and surrounding
// markdown fencing from a final answer.
func Normalize(text string) string {
	text = thinkRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return text
}

// workdirFor returns opts.Workdir or a fresh temp dir.
func workdirFor(opts Options) (string, error) {
	if opts.Workdir != "" {
		return opts.Workdir, nil
	}
	return os.MkdirTemp("", "arena-invoke-")
}
