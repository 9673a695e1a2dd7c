package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewarena/arena/internal/anonymize"
	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/store"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	return &Generator{
		Cfg: &config.Config{
			Models: []models.Model{
				{ID: "claude", Provider: "claude"},
				{ID: "codex", Provider: "codex"},
			},
			Judge: config.Judge{Dimensions: []config.Dimension{
				{ID: "accuracy", Name: "Technical accuracy"},
				{ID: "depth", Name: "Depth of analysis"},
			}},
		},
		Manifest: &models.Manifest{PRs: []models.PR{
			{ID: "pr-1", Category: models.CategoryHard, Difficulty: "easy",
				KnownBugs: []models.KnownBug{{ID: "b1"}}},
			{ID: "pr-2", Category: models.CategoryHard, Difficulty: "hard",
				KnownBugs: []models.KnownBug{{ID: "b1"}}},
			{ID: "pr-3", Category: models.CategorySoft},
		}},
		Paths: store.Paths{Root: t.TempDir()},
		UI:    &output.UI{Out: io.Discard, ErrOut: io.Discard},
	}
}

func saveVerdicts(t *testing.T, g *Generator, verdicts map[string]models.Verdict) {
	t.Helper()
	require.NoError(t, store.SaveJSON(g.Paths.Verdicts(), verdicts))
}

func TestHardReport_Rollup(t *testing.T) {
	g := testGenerator(t)
	saveVerdicts(t, g, map[string]models.Verdict{
		"raw/pr-1/b1/claude":   {Mode: models.ModeRaw, Found: true},
		"raw/pr-2/b1/claude":   {Mode: models.ModeRaw, Found: false},
		"raw/pr-1/b1/codex":    {Mode: models.ModeRaw, Found: false},
		"debate/pr-1/b1/debate": {Mode: models.ModeDebate, Found: true},
	})

	reportsDir := g.Paths.Reports()
	require.NoError(t, os.MkdirAll(reportsDir, 0o755))

	summary, err := g.hardReport(reportsDir)
	require.NoError(t, err)

	claude := summary["raw/claude"]
	require.NotNil(t, claude)
	assert.Equal(t, 1, claude.Overall.Found)
	assert.Equal(t, 2, claude.Overall.Total)
	assert.InDelta(t, 0.5, claude.Overall.Rate, 0.001)
	assert.Equal(t, 1, claude.ByDifficulty["easy"].Found)
	assert.Equal(t, 0, claude.ByDifficulty["hard"].Found)

	debate := summary["debate/debate"]
	require.NotNil(t, debate)
	assert.InDelta(t, 1.0, debate.Overall.Rate, 0.001)

	// Detail CSV carries one row per recorded verdict.
	f, err := os.Open(filepath.Join(reportsDir, "hard_scores.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5, "header plus four verdicts")
}

func TestHardReport_NoVerdicts(t *testing.T) {
	g := testGenerator(t)
	summary, err := g.hardReport(g.Paths.Reports())
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func saveSoftFixtures(t *testing.T, g *Generator) {
	t.Helper()
	mapping := anonymize.Mapping{
		Forward: map[string]string{"claude": "Reviewer A", "codex": "Reviewer B"},
		Reverse: map[string]string{"Reviewer A": "claude", "Reviewer B": "codex"},
	}
	require.NoError(t, store.SaveJSON(g.Paths.Mapping("pr-3"), &mapping))

	// claude judges: scores itself 9.0, codex 7.0 across both dimensions.
	require.NoError(t, store.SaveJSON(g.Paths.SoftJudgment("pr-3", "claude"), &models.ScoreCard{
		PRID: "pr-3", JudgeModel: "claude",
		Scores: map[string]map[string]float64{
			"Reviewer A": {"accuracy": 9.0, "depth": 9.0},
			"Reviewer B": {"accuracy": 7.0, "depth": 7.0},
		},
	}))
	// codex judges: harsh on itself, 6.0 self against 8.0 for claude.
	require.NoError(t, store.SaveJSON(g.Paths.SoftJudgment("pr-3", "codex"), &models.ScoreCard{
		PRID: "pr-3", JudgeModel: "codex",
		Scores: map[string]map[string]float64{
			"Reviewer A": {"accuracy": 8.0, "depth": 8.0},
			"Reviewer B": {"accuracy": 6.0, "depth": 6.0},
		},
	}))
}

func TestSoftReport_DeanonymizedRollup(t *testing.T) {
	g := testGenerator(t)
	saveSoftFixtures(t, g)
	reportsDir := g.Paths.Reports()
	require.NoError(t, os.MkdirAll(reportsDir, 0o755))

	summary, err := g.softReport(reportsDir)
	require.NoError(t, err)

	claude := summary["claude"]
	require.NotNil(t, claude, "labels must resolve back to model IDs")
	// claude received 9.0 (self-judged) and 8.0 (codex-judged) per dimension.
	assert.InDelta(t, 8.5, claude.Dimensions["accuracy"].Avg, 0.001)
	assert.InDelta(t, 8.0, claude.Dimensions["accuracy"].Min, 0.001)
	assert.InDelta(t, 9.0, claude.Dimensions["accuracy"].Max, 0.001)
	assert.Equal(t, 2, claude.Dimensions["accuracy"].Count)
	assert.InDelta(t, 8.5, claude.Overall, 0.001)

	codex := summary["codex"]
	require.NotNil(t, codex)
	assert.InDelta(t, 6.5, codex.Overall, 0.001)
}

func TestBiasReport_SelfPreference(t *testing.T) {
	g := testGenerator(t)
	saveSoftFixtures(t, g)
	reportsDir := g.Paths.Reports()
	require.NoError(t, os.MkdirAll(reportsDir, 0o755))

	summary, err := g.biasReport(reportsDir)
	require.NoError(t, err)

	claude := summary["claude"]
	require.NotNil(t, claude)
	assert.InDelta(t, 9.0, claude.SelfAvg, 0.001)
	assert.InDelta(t, 7.0, claude.OtherAvg, 0.001)
	assert.InDelta(t, 2.0, claude.Bias, 0.001, "self minus other")
	assert.Equal(t, 1, claude.SelfCount)
	assert.Equal(t, 1, claude.OtherCount)

	codex := summary["codex"]
	require.NotNil(t, codex)
	assert.InDelta(t, 6.0, codex.SelfAvg, 0.001)
	assert.InDelta(t, 8.0, codex.OtherAvg, 0.001)
	assert.InDelta(t, -2.0, codex.Bias, 0.001, "negative bias keeps its full magnitude")
}

func TestRun_EndToEnd(t *testing.T) {
	g := testGenerator(t)
	saveVerdicts(t, g, map[string]models.Verdict{
		"raw/pr-1/b1/claude": {Mode: models.ModeRaw, Found: true},
	})
	saveSoftFixtures(t, g)

	require.NoError(t, g.Run())

	for _, name := range []string{"hard_summary.json", "soft_summary.json", "judge_bias.json", "summary.txt"} {
		assert.True(t, store.Exists(filepath.Join(g.Paths.Reports(), name)), name)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.67, round2(2.0/3.0))
	assert.Equal(t, 0.5, round2(0.5))
	assert.Equal(t, 0.0, round2(0))

	// Negative bias values (judge scores itself below the field) must
	// round away from zero symmetrically with positive ones.
	assert.Equal(t, -2.0, round2(-2.0))
	assert.Equal(t, -0.5, round2(-0.5))
	assert.Equal(t, -0.67, round2(-2.0/3.0))
	assert.Equal(t, -1.25, round2(-1.25))
}

func TestMeanMinMax(t *testing.T) {
	samples := []float64{2, 8, 5}
	assert.InDelta(t, 5.0, mean(samples), 0.001)
	assert.Equal(t, 2.0, minOf(samples))
	assert.Equal(t, 8.0, maxOf(samples))
	assert.Equal(t, 0.0, mean(nil))
}
