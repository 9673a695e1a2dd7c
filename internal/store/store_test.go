package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/models"
)

func TestExists_CheckpointPredicate(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.json")
	assert.False(t, Exists(missing), "absent file is not a checkpoint")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.False(t, Exists(empty), "empty file is not a checkpoint")

	full := filepath.Join(dir, "full.json")
	require.NoError(t, os.WriteFile(full, []byte("{}"), 0o644))
	assert.True(t, Exists(full))
}

func TestSaveLoadJSON_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeply", "artifact.json")

	in := map[string]int{"yes": 3, "total": 5}
	require.NoError(t, SaveJSON(path, in))
	assert.True(t, Exists(path))

	var out map[string]int
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestLoadJSON_NotFound(t *testing.T) {
	var out map[string]any
	err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Path derivation must be a pure function of the key tuple: checkpoints
// written by one process must be found by the next.
func TestPaths_Stability(t *testing.T) {
	p := Paths{Root: "results"}

	assert.Equal(t, filepath.Join("results", "raw", "pr-33820", "claude.json"),
		p.Review(models.ModeRaw, "pr-33820", "claude"))
	assert.Equal(t, filepath.Join("results", "r1_nocontext", "pr-33820", "codex.json"),
		p.Review(models.ModeR1NoContext, "pr-33820", "codex"))

	// Debate artifacts are per-PR; the model ID is irrelevant.
	assert.Equal(t, filepath.Join("results", "debate", "pr-1", "debate.json"),
		p.Review(models.ModeDebate, "pr-1", "claude"))
	assert.Equal(t,
		p.Review(models.ModeDebate, "pr-1", "claude"),
		p.Review(models.ModeDebate, "pr-1", ""))

	assert.Equal(t, filepath.Join("results", "judge", "raw", "pr-1", "claude_bug_b1_by_codex.json"),
		p.HardJudgment(models.ModeRaw, "pr-1", "b1", "claude", "codex"))
	assert.Equal(t, filepath.Join("results", "judge", "soft", "pr-2", "claude.json"),
		p.SoftJudgment("pr-2", "claude"))
	assert.Equal(t, filepath.Join("results", "judge", "soft", "pr-2", "mapping.json"),
		p.Mapping("pr-2"))
	assert.Equal(t, filepath.Join("results", "judge", "verdicts.json"), p.Verdicts())
}
