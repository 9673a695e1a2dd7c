package review

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude.json")
	in := &models.ReviewArtifact{
		FinalConclusion: "no blocking issues",
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "looks fine", Round: 1},
		},
	}
	require.NoError(t, store.SaveJSON(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "no blocking issues", out.FinalConclusion)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "claude", out.Messages[0].ReviewerID)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExtractContent_AllSections(t *testing.T) {
	a := &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "the lock is dropped early"},
			{ReviewerID: "codex", Content: "agree with the locking concern"},
		},
		FinalConclusion: "consensus: locking bug",
		ParsedIssues: []models.ParsedIssue{
			{Severity: "high", Title: "race", Description: "map write without lock"},
			{Title: "untitled", Description: "minor nit"},
		},
	}

	out := ExtractContent(a)
	assert.Contains(t, out, "## claude Review")
	assert.Contains(t, out, "## codex Review")
	assert.Contains(t, out, "## Final Conclusion\n\nconsensus: locking bug")
	assert.Contains(t, out, "## Identified Issues")
	assert.Contains(t, out, "[high] race: map write without lock")
	assert.Contains(t, out, "[unknown] untitled", "missing severity defaults to unknown")
}

func TestExtractContent_EmptyArtifact(t *testing.T) {
	assert.Equal(t, "", ExtractContent(&models.ReviewArtifact{}))
}

func TestReviewsByModel_MergesMessagesAndSummaries(t *testing.T) {
	a := &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "round one", Round: 1},
			{ReviewerID: "claude", Content: "round two", Round: 2},
		},
		Summaries: []models.Summary{
			{ReviewerID: "claude", Summary: "overall fine"},
			{ReviewerID: "codex", Summary: "only a summary"},
		},
	}

	reviews := ReviewsByModel(a)
	require.Len(t, reviews, 2)
	assert.Contains(t, reviews["claude"], "round one")
	assert.Contains(t, reviews["claude"], "round two")
	assert.Contains(t, reviews["claude"], "## Summary\n\noverall fine")
	assert.Equal(t, "only a summary", reviews["codex"])
}

func TestFirstRoundReviews_TaggedRounds(t *testing.T) {
	a := &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "initial take", Round: 1},
			{ReviewerID: "claude", Content: "rebuttal naming codex", Round: 2},
			{ReviewerID: "codex", Content: "codex initial", Round: 1},
		},
	}

	reviews := FirstRoundReviews(a)
	assert.Equal(t, "initial take", reviews["claude"])
	assert.Equal(t, "codex initial", reviews["codex"])
}

func TestFirstRoundReviews_UntaggedFallback(t *testing.T) {
	// No round tags: only each reviewer's first message counts as round one.
	a := &models.ReviewArtifact{
		Messages: []models.Message{
			{ReviewerID: "claude", Content: "first"},
			{ReviewerID: "claude", Content: "second mentions codex"},
		},
	}

	reviews := FirstRoundReviews(a)
	assert.Equal(t, "first", reviews["claude"])
}
