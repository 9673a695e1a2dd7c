package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// Counts tracks found/total for one slice of the detection stats.
type Counts struct {
	Found int     `json:"found"`
	Total int     `json:"total"`
	Rate  float64 `json:"rate"`
}

func (c *Counts) add(found bool) {
	c.Total++
	if found {
		c.Found++
	}
}

func (c *Counts) finalize() {
	if c.Total > 0 {
		c.Rate = round2(float64(c.Found) / float64(c.Total))
	}
}

// HardSummary is the per-(mode, subject) detection rollup. Keys are
// "mode/model" for per-model modes and "mode/debate" for debate modes.
type HardSummary map[string]*HardEntry

// HardEntry is one mode/subject's detection counts by difficulty.
type HardEntry struct {
	Mode         models.ReviewMode  `json:"mode"`
	Model        string             `json:"model"`
	ByDifficulty map[string]*Counts `json:"by_difficulty"`
	Overall      Counts             `json:"overall"`
}

func newHardEntry(mode models.ReviewMode, model string) *HardEntry {
	return &HardEntry{Mode: mode, Model: model, ByDifficulty: map[string]*Counts{}}
}

func (e *HardEntry) add(difficulty string, found bool) {
	c, ok := e.ByDifficulty[difficulty]
	if !ok {
		c = &Counts{}
		e.ByDifficulty[difficulty] = c
	}
	c.add(found)
	e.Overall.add(found)
}

type hardRow struct {
	mode       models.ReviewMode
	model      string
	prID       string
	bugID      string
	difficulty string
	found      bool
}

// hardReport builds detection-rate details (CSV) and rollup (JSON).
func (g *Generator) hardReport(reportsDir string) (HardSummary, error) {
	verdicts, ok := g.loadVerdicts()
	if !ok {
		g.UI.Info("[Report] skipped hard score report (no judge results)")
		return nil, nil
	}

	var rows []hardRow
	summary := HardSummary{}

	record := func(mode models.ReviewMode, subject string, pr models.PR, bug models.KnownBug) {
		key := fmt.Sprintf("%s/%s/%s/%s", mode, pr.ID, bug.ID, subject)
		v, ok := verdicts[key]
		if !ok {
			return
		}
		difficulty := pr.Difficulty
		if difficulty == "" {
			difficulty = "unknown"
		}
		rows = append(rows, hardRow{mode, subject, pr.ID, bug.ID, difficulty, v.Found})

		entryKey := string(mode) + "/" + subject
		entry, ok := summary[entryKey]
		if !ok {
			entry = newHardEntry(mode, subject)
			summary[entryKey] = entry
		}
		entry.add(difficulty, v.Found)
	}

	for _, pr := range g.Manifest.HardPRs() {
		for _, bug := range pr.KnownBugs {
			for _, mode := range PerModelModes {
				for _, m := range g.Cfg.Models {
					record(mode, m.ID, pr, bug)
				}
			}
			for _, mode := range DebateModes {
				record(mode, "debate", pr, bug)
			}
		}
	}

	for _, entry := range summary {
		for _, c := range entry.ByDifficulty {
			c.finalize()
		}
		entry.Overall.finalize()
	}

	if len(rows) > 0 {
		csvPath := reportPath(reportsDir, "hard_scores.csv")
		if err := writeHardCSV(csvPath, rows); err != nil {
			return nil, err
		}
		g.UI.Info("  Hard score details: %s", csvPath)
	}

	jsonPath := reportPath(reportsDir, "hard_summary.json")
	if err := store.SaveJSON(jsonPath, summary); err != nil {
		return nil, err
	}
	g.UI.Info("  Hard score summary: %s", jsonPath)
	return summary, nil
}

func writeHardCSV(path string, rows []hardRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"mode", "model", "pr_id", "bug_id", "difficulty", "found"})
	for _, r := range rows {
		_ = w.Write([]string{string(r.mode), r.model, r.prID, r.bugID, r.difficulty, strconv.FormatBool(r.found)})
	}
	w.Flush()
	return w.Error()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
