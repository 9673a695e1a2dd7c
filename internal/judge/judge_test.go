package judge

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/store"
)

func quietUI() *output.UI {
	return &output.UI{Out: io.Discard, ErrOut: io.Discard}
}

func testRunner(t *testing.T, invoke InvokeFunc) *Runner {
	t.Helper()
	return &Runner{
		Cfg: &config.Config{
			Models: []models.Model{
				{ID: "claude", Provider: "claude", Kind: models.KindStream},
				{ID: "codex", Provider: "codex", Kind: models.KindCLI},
			},
			Execution: config.Execution{Concurrency: 2},
			Judge: config.Judge{
				JudgeModel: "claude",
				Dimensions: []config.Dimension{
					{ID: "accuracy", Name: "Technical accuracy"},
					{ID: "depth", Name: "Depth of analysis"},
				},
			},
		},
		Manifest: &models.Manifest{PRs: []models.PR{
			{ID: "pr-1", Title: "Fix race", Category: models.CategoryHard,
				KnownBugs: []models.KnownBug{{ID: "b1", Description: "map write without lock"}}},
		}},
		Paths:  store.Paths{Root: t.TempDir()},
		UI:     quietUI(),
		Invoke: invoke,
	}
}

func writeArtifact(t *testing.T, path, reviewer, content string) {
	t.Helper()
	require.NoError(t, store.SaveJSON(path, &models.ReviewArtifact{
		Messages: []models.Message{{ReviewerID: reviewer, Content: content, Round: 1}},
	}))
}

func TestRunHard_SoleJudgeVerdicts(t *testing.T) {
	var r *Runner
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		// The judge says YES only when the review mentions the lock.
		if strings.Contains(prompt, "lock") && strings.Contains(prompt, "dropped") {
			return `{"verdict": "YES", "confidence": "high", "reasoning": "explicitly flagged"}`, nil
		}
		return `{"verdict": "NO", "confidence": "medium"}`, nil
	}
	r = testRunner(t, invoke)

	writeArtifact(t, r.Paths.Review(models.ModeRaw, "pr-1", "claude"), "claude", "the lock is dropped before the write")
	writeArtifact(t, r.Paths.Review(models.ModeRaw, "pr-1", "codex"), "codex", "style nits only")

	require.NoError(t, r.RunHard(context.Background()))

	var verdicts map[string]models.Verdict
	require.NoError(t, store.LoadJSON(r.Paths.Verdicts(), &verdicts))
	require.Len(t, verdicts, 2)

	assert.True(t, verdicts["raw/pr-1/b1/claude"].Found)
	assert.Equal(t, "high", verdicts["raw/pr-1/b1/claude"].Confidence)
	assert.False(t, verdicts["raw/pr-1/b1/codex"].Found)
}

func TestRunHard_CheckpointSkipsJudged(t *testing.T) {
	calls := 0
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		calls++
		return `{"verdict": "YES"}`, nil
	}
	r := testRunner(t, invoke)
	writeArtifact(t, r.Paths.Review(models.ModeRaw, "pr-1", "claude"), "claude", "found the missing lock here")

	require.NoError(t, r.RunHard(context.Background()))
	first := calls

	require.NoError(t, r.RunHard(context.Background()))
	assert.Equal(t, first, calls, "checkpointed judgments must not be re-invoked")

	// Reconciliation still rebuilds verdicts from checkpoints.
	var verdicts map[string]models.Verdict
	require.NoError(t, store.LoadJSON(r.Paths.Verdicts(), &verdicts))
	assert.Len(t, verdicts, 1)
}

func TestRunHard_MajorityPanel(t *testing.T) {
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		// claude votes yes, codex votes no: a 1/2 split is not a majority.
		if m.ID == "claude" {
			return `{"verdict": "YES"}`, nil
		}
		return `{"verdict": "NO"}`, nil
	}
	r := testRunner(t, invoke)
	r.Cfg.Judge.Voters = []string{"claude", "codex"}
	writeArtifact(t, r.Paths.Review(models.ModeRaw, "pr-1", "claude"), "claude", "a plausible review body")

	require.NoError(t, r.RunHard(context.Background()))

	var verdicts map[string]models.Verdict
	require.NoError(t, store.LoadJSON(r.Paths.Verdicts(), &verdicts))
	v := verdicts["raw/pr-1/b1/claude"]
	assert.False(t, v.Found, "tie resolves to not found")
	assert.Equal(t, 1, v.YesVotes)
	assert.Equal(t, 2, v.TotalVotes)
}

func TestRunHard_UnparseableIsAbsentNotNo(t *testing.T) {
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		return "I cannot answer in the requested format.", nil
	}
	r := testRunner(t, invoke)
	writeArtifact(t, r.Paths.Review(models.ModeRaw, "pr-1", "claude"), "claude", "review text body")

	require.NoError(t, r.RunHard(context.Background()))

	// The judgment file exists (checkpoint) but carries no verdict.
	var j models.Judgment
	path := r.Paths.HardJudgment(models.ModeRaw, "pr-1", "b1", "claude", "claude")
	require.NoError(t, store.LoadJSON(path, &j))
	assert.False(t, j.Parsed())

	// Aggregation treats it as absent data, not a NO vote.
	var verdicts map[string]models.Verdict
	require.NoError(t, store.LoadJSON(r.Paths.Verdicts(), &verdicts))
	assert.Empty(t, verdicts)
}

func TestRunHard_UnknownVoter(t *testing.T) {
	r := testRunner(t, nil)
	r.Cfg.Judge.Voters = []string{"claude", "nonexistent"}
	assert.Error(t, r.RunHard(context.Background()))
}

func TestRunSoft_ScoresAnonymizedReviews(t *testing.T) {
	var prompts []string
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		prompts = append(prompts, prompt)
		return `{"scores": {"Reviewer A": {"accuracy": 8.5, "depth": 7}, "Reviewer B": {"accuracy": 6, "depth": 5.5}}}`, nil
	}
	r := testRunner(t, invoke)
	r.Cfg.Execution.Concurrency = 1 // keep prompt capture race-free

	require.NoError(t, store.SaveJSON(r.Paths.Review(models.ModeDebate, "pr-1", ""), &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "Claude here: the lock is dropped early.", Round: 1},
			{ReviewerID: "codex", Content: "I disagree with claude on severity.", Round: 1},
		},
	}))

	require.NoError(t, r.RunSoft(context.Background()))

	// One card per judge model.
	for _, judgeID := range []string{"claude", "codex"} {
		var card models.ScoreCard
		require.NoError(t, store.LoadJSON(r.Paths.SoftJudgment("pr-1", judgeID), &card))
		assert.Equal(t, judgeID, card.JudgeModel)
		assert.InDelta(t, 8.5, card.Scores["Reviewer A"]["accuracy"], 0.001)
	}

	// The mapping is persisted and consistent across judges.
	var mapping struct {
		Forward map[string]string `json:"mapping"`
	}
	require.NoError(t, store.LoadJSON(r.Paths.Mapping("pr-1"), &mapping))
	assert.Len(t, mapping.Forward, 2)

	// Judges never see real model names.
	for i, p := range prompts {
		assert.NotContains(t, strings.ToLower(p), "codex", fmt.Sprintf("prompt %d leaks a model name", i))
	}
}

func TestRunSoft_NoDebateNothingToJudge(t *testing.T) {
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		t.Fatal("no invocation expected without debate artifacts")
		return "", nil
	}
	r := testRunner(t, invoke)
	assert.NoError(t, r.RunSoft(context.Background()))
}

func TestRunSoft_MappingReusedAcrossRuns(t *testing.T) {
	invoke := func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
		return `{"scores": {}}`, nil
	}
	r := testRunner(t, invoke)
	require.NoError(t, store.SaveJSON(r.Paths.Review(models.ModeDebate, "pr-1", ""), &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "first take", Round: 1},
			{ReviewerID: "codex", Content: "second take", Round: 1},
		},
	}))

	require.NoError(t, r.RunSoft(context.Background()))
	var first map[string]any
	require.NoError(t, store.LoadJSON(r.Paths.Mapping("pr-1"), &first))

	r.Force = true
	require.NoError(t, r.RunSoft(context.Background()))

	r.Force = false
	require.NoError(t, r.RunSoft(context.Background()))
	var second map[string]any
	require.NoError(t, store.LoadJSON(r.Paths.Mapping("pr-1"), &second))
	// Without force the persisted mapping is authoritative; with force it
	// may be regenerated, but the file must always exist and stay valid.
	assert.Contains(t, second, "mapping")
	assert.Contains(t, first, "mapping")
}

func TestVoters_DefaultsToSoleJudge(t *testing.T) {
	r := testRunner(t, nil)
	panel, err := r.voters()
	require.NoError(t, err)
	require.Len(t, panel, 1)
	assert.Equal(t, "claude", panel[0].ID)
}
