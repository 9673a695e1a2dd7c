package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/models"
)

func TestCLI_InvokeStdin(t *testing.T) {
	p := NewCLI(models.Model{ID: "echo-model", Command: "cat"}, Options{Workdir: t.TempDir()}, false)
	out, err := p.Invoke(context.Background(), "review this diff")
	require.NoError(t, err)
	assert.Equal(t, "review this diff", out)
}

func TestCLI_InvokePromptAsArg(t *testing.T) {
	p := NewCLI(models.Model{ID: "arg-model", Command: "printf %s"}, Options{Workdir: t.TempDir()}, true)
	out, err := p.Invoke(context.Background(), "it's a prompt")
	require.NoError(t, err)
	assert.Equal(t, "it's a prompt", out)
}

func TestCLI_InvokeFailureIncludesStderr(t *testing.T) {
	p := NewCLI(models.Model{ID: "bad-model", Command: "sh -c 'echo boom >&2; exit 1'"}, Options{Workdir: t.TempDir()}, false)
	_, err := p.Invoke(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-model")
	assert.Contains(t, err.Error(), "boom")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, shellQuote("plain"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}
