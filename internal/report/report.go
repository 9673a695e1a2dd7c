// Package report aggregates persisted verdicts and score cards into
// detection-rate, quality, and judge-bias statistics. Reports are pure
// read-side projections recomputed from scratch on every invocation.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/store"
)

// PerModelModes are the modes where each model is judged individually.
var PerModelModes = []models.ReviewMode{models.ModeRaw, models.ModeR1, models.ModeR1NoContext}

// DebateModes are the modes judged as one collaborative unit.
var DebateModes = []models.ReviewMode{models.ModeDebate, models.ModeDebateNoContext}

// Generator produces all report files from persisted results.
type Generator struct {
	Cfg      *config.Config
	Manifest *models.Manifest
	Paths    store.Paths
	UI       *output.UI
}

// Run regenerates every report under results/reports.
func (g *Generator) Run() error {
	reportsDir := g.Paths.Reports()
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	g.UI.Info("[Report] generating...")

	hard, err := g.hardReport(reportsDir)
	if err != nil {
		return err
	}
	soft, err := g.softReport(reportsDir)
	if err != nil {
		return err
	}
	bias, err := g.biasReport(reportsDir)
	if err != nil {
		return err
	}
	if err := g.textSummary(reportsDir, hard, soft, bias); err != nil {
		return err
	}

	g.UI.Success("[Report] done: %s", reportsDir)
	return nil
}

// loadVerdicts reads the aggregate verdicts file; absent means no hard
// judging has run yet.
func (g *Generator) loadVerdicts() (map[string]models.Verdict, bool) {
	verdicts := map[string]models.Verdict{}
	if err := store.LoadJSON(g.Paths.Verdicts(), &verdicts); err != nil {
		return nil, false
	}
	return verdicts, true
}

func reportPath(dir, name string) string {
	return filepath.Join(dir, name)
}
