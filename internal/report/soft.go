package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/reviewarena/arena/internal/anonymize"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// DimStats are the aggregate quality scores for one model on one dimension.
type DimStats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// SoftEntry is one model's quality rollup across dimensions.
type SoftEntry struct {
	Dimensions map[string]*DimStats `json:"dimensions"`
	Overall    float64              `json:"overall"`
}

// SoftSummary maps de-anonymized model ID to its quality rollup.
type SoftSummary map[string]*SoftEntry

type softRow struct {
	model     string
	prID      string
	judge     string
	dimension string
	score     float64
}

// softReport builds quality-score details (CSV) and rollup (JSON), computed
// only over de-anonymized, successfully parsed score cards.
func (g *Generator) softReport(reportsDir string) (SoftSummary, error) {
	var rows []softRow
	scores := map[string]map[string][]float64{} // model -> dim -> samples

	for _, pr := range g.Manifest.PRs {
		var mapping anonymize.Mapping
		if err := store.LoadJSON(g.Paths.Mapping(pr.ID), &mapping); err != nil {
			continue
		}

		for _, judgeModel := range g.Cfg.Models {
			var card models.ScoreCard
			if err := store.LoadJSON(g.Paths.SoftJudgment(pr.ID, judgeModel.ID), &card); err != nil {
				continue
			}

			for label, dimScores := range card.Scores {
				realModel, ok := mapping.Reverse[label]
				if !ok {
					realModel = label
				}
				for _, dim := range g.Cfg.Judge.Dimensions {
					score, ok := dimScores[dim.ID]
					if !ok {
						continue
					}
					rows = append(rows, softRow{realModel, pr.ID, judgeModel.ID, dim.ID, score})
					if scores[realModel] == nil {
						scores[realModel] = map[string][]float64{}
					}
					scores[realModel][dim.ID] = append(scores[realModel][dim.ID], score)
				}
			}
		}
	}

	if len(rows) > 0 {
		csvPath := reportPath(reportsDir, "soft_scores.csv")
		if err := writeSoftCSV(csvPath, rows); err != nil {
			return nil, err
		}
		g.UI.Info("  Soft score details: %s", csvPath)
	}

	summary := SoftSummary{}
	for modelID, byDim := range scores {
		entry := &SoftEntry{Dimensions: map[string]*DimStats{}}
		var all []float64
		for dimID, samples := range byDim {
			entry.Dimensions[dimID] = &DimStats{
				Avg:   round2(mean(samples)),
				Min:   minOf(samples),
				Max:   maxOf(samples),
				Count: len(samples),
			}
			all = append(all, samples...)
		}
		entry.Overall = round2(mean(all))
		summary[modelID] = entry
	}

	jsonPath := reportPath(reportsDir, "soft_summary.json")
	if err := store.SaveJSON(jsonPath, summary); err != nil {
		return nil, err
	}
	g.UI.Info("  Soft score summary: %s", jsonPath)
	return summary, nil
}

func writeSoftCSV(path string, rows []softRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	_ = w.Write([]string{"model", "pr_id", "judge", "dimension", "score"})
	for _, r := range rows {
		_ = w.Write([]string{r.model, r.prID, r.judge, r.dimension,
			strconv.FormatFloat(r.score, 'f', -1, 64)})
	}
	w.Flush()
	return w.Error()
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func minOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	m := samples[0]
	for _, s := range samples[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

func maxOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	m := samples[0]
	for _, s := range samples[1:] {
		if s > m {
			m = s
		}
	}
	return m
}
