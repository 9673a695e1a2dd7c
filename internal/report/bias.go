package report

import (
	"github.com/reviewarena/arena/internal/anonymize"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

// BiasEntry measures whether a judge scores its own submissions differently
// from others': bias = self average minus other average.
type BiasEntry struct {
	SelfAvg    float64 `json:"self_avg"`
	OtherAvg   float64 `json:"other_avg"`
	Bias       float64 `json:"bias"`
	SelfCount  int     `json:"self_count"`
	OtherCount int     `json:"other_count"`
}

// BiasSummary maps judge model ID to its bias measurement.
type BiasSummary map[string]*BiasEntry

// biasReport computes per-judge self-preference. A score card entry counts
// as "self" when the de-anonymized model matches the judge's own ID or
// provider handle.
func (g *Generator) biasReport(reportsDir string) (BiasSummary, error) {
	selfScores := map[string][]float64{}
	otherScores := map[string][]float64{}

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
				var all []float64
				for _, v := range dimScores {
					all = append(all, v)
				}
				if len(all) == 0 {
					continue
				}
				avg := mean(all)

				if realModel == judgeModel.ID || realModel == judgeModel.Provider {
					selfScores[judgeModel.ID] = append(selfScores[judgeModel.ID], avg)
				} else {
					otherScores[judgeModel.ID] = append(otherScores[judgeModel.ID], avg)
				}
			}
		}
	}

	summary := BiasSummary{}
	for _, m := range g.Cfg.Models {
		self := selfScores[m.ID]
		other := otherScores[m.ID]
		if len(self) == 0 && len(other) == 0 {
			continue
		}
		selfAvg := mean(self)
		otherAvg := mean(other)
		summary[m.ID] = &BiasEntry{
			SelfAvg:    round2(selfAvg),
			OtherAvg:   round2(otherAvg),
			Bias:       round2(selfAvg - otherAvg),
			SelfCount:  len(self),
			OtherCount: len(other),
		}
	}

	jsonPath := reportPath(reportsDir, "judge_bias.json")
	if err := store.SaveJSON(jsonPath, summary); err != nil {
		return nil, err
	}
	g.UI.Info("  Judge bias: %s", jsonPath)
	return summary, nil
}
