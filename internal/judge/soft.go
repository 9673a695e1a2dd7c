package judge

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reviewarena/arena/internal/anonymize"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/pipeline"
	"github.com/reviewarena/arena/internal/prompts"
	"github.com/reviewarena/arena/internal/review"
	"github.com/reviewarena/arena/internal/store"
)

// prJudgingData is the prepared, anonymized view of one PR's debate.
type prJudgingData struct {
	pr      models.PR
	reviews map[string]string
	mapping anonymize.Mapping
}

type softTask struct {
	data    *prJudgingData
	judge   models.Model
	outPath string
}

// RunSoft scores debate review quality. Each model judges every PR's
// anonymized first-round reviews on the configured rubric dimensions.
func (r *Runner) RunSoft(ctx context.Context) error {
	names := r.strippableNames()

	// Prepare mappings up front: every judge of a PR must see the same
	// labels, and the mapping must be persisted before any judge runs.
	prepared := map[string]*prJudgingData{}
	for _, pr := range r.Manifest.PRs {
		data, err := r.preparePR(pr, names)
		if err != nil {
			r.UI.Warning("[Judge-Soft] %s: %v", pr.ID, err)
			continue
		}
		if data != nil {
			prepared[pr.ID] = data
		}
	}

	var tasks []softTask
	skipped := 0
	for _, pr := range r.Manifest.PRs {
		data, ok := prepared[pr.ID]
		if !ok {
			continue
		}
		for _, judgeModel := range r.Cfg.Models {
			outPath := r.Paths.SoftJudgment(pr.ID, judgeModel.ID)
			if !r.Force && store.Exists(outPath) {
				skipped++
				continue
			}
			tasks = append(tasks, softTask{data: data, judge: judgeModel, outPath: outPath})
		}
	}

	total := len(tasks)
	if total == 0 {
		r.UI.Info("[Judge-Soft] nothing to do (%d skipped)", skipped)
		return nil
	}

	r.UI.PhaseStart("Judge-Soft", total+skipped, r.Cfg.Execution.Concurrency)
	if skipped > 0 {
		r.UI.Info("[Judge-Soft] %d result(s) exist, skipped", skipped)
	}
	phaseStart := time.Now()

	var mu sync.Mutex
	completed := 0

	pipeline.Parallel(r.Cfg.Execution.Concurrency, total, func(i int) {
		t := tasks[i]
		card := r.scoreOne(ctx, t)

		mu.Lock()
		completed++
		idx := completed
		mu.Unlock()

		if card == nil || len(card.Scores) == 0 {
			return
		}
		r.UI.Info("[Judge-Soft] [%d/%d] %s -> judge %s", idx, total, t.data.pr.ID, t.judge.ID)
		for _, label := range t.data.mapping.Labels() {
			dims, ok := card.Scores[label]
			if !ok {
				continue
			}
			var parts []string
			for _, d := range r.Cfg.Judge.Dimensions {
				if val, ok := dims[d.ID]; ok {
					parts = append(parts, d.Name+"="+trimFloat(val))
				}
			}
			r.UI.Info("  %s: %s", label, strings.Join(parts, ", "))
		}
	}, func(i int, err error) {
		t := tasks[i]
		r.UI.Error("[Judge-Soft] %s -> judge %s: %v", t.data.pr.ID, t.judge.ID, err)
	})

	r.UI.PhaseEnd("Judge-Soft", total, time.Since(phaseStart))
	return nil
}

// strippableNames collects every known model and provider name for
// anonymization scrubbing.
func (r *Runner) strippableNames() []string {
	var names []string
	for _, m := range r.Cfg.Models {
		names = append(names, m.ID, m.Provider)
	}
	return names
}

// preparePR loads a PR's debate artifact, scrubs model names from its
// first-round reviews, and establishes the persisted label mapping. An
// existing mapping is reused so judges never disagree on labels; it is
// regenerated only under force.
func (r *Runner) preparePR(pr models.PR, names []string) (*prJudgingData, error) {
	debatePath := r.Paths.Review(models.ModeDebate, pr.ID, "")
	artifact, err := review.Load(debatePath)
	if err != nil {
		return nil, nil // no debate yet, nothing to judge
	}

	raw := review.FirstRoundReviews(artifact)
	cleaned := make(map[string]string, len(raw))
	ids := make([]string, 0, len(raw))
	for id, text := range raw {
		cleaned[id] = anonymize.StripModelNames(text, names)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	mappingPath := r.Paths.Mapping(pr.ID)
	var mapping anonymize.Mapping
	if !r.Force && store.Exists(mappingPath) {
		if err := store.LoadJSON(mappingPath, &mapping); err != nil {
			return nil, err
		}
	} else {
		mapping = anonymize.NewMapping(ids)
		if err := store.SaveJSON(mappingPath, &mapping); err != nil {
			return nil, err
		}
	}

	return &prJudgingData{pr: pr, reviews: cleaned, mapping: mapping}, nil
}

// scoreOne asks one judge to score one PR's anonymized reviews and persists
// the card. Parse failures persist an empty card: checkpointed, but absent
// to aggregation.
func (r *Runner) scoreOne(ctx context.Context, t softTask) *models.ScoreCard {
	anonText := t.data.mapping.Apply(t.data.reviews)
	template := prompts.ScoreTemplate(t.data.mapping.Labels(), r.Cfg.Judge.DimensionIDs())
	prompt := prompts.SoftJudge(t.data.pr.Title, t.data.pr.URL, anonText, template)

	card := models.ScoreCard{PRID: t.data.pr.ID, JudgeModel: t.judge.ID}

	response, err := r.Invoke(ctx, t.judge, prompt, judgeTimeout)
	if err != nil {
		r.UI.Error("[Judge-Soft] %s -> judge %s: %v", t.data.pr.ID, t.judge.ID, err)
	} else if err := ExtractJSON(response, &card); err != nil {
		r.UI.Warning("[Judge-Soft] %s -> judge %s: %v", t.data.pr.ID, t.judge.ID, err)
		card = models.ScoreCard{PRID: t.data.pr.ID, JudgeModel: t.judge.ID}
	}

	if err := store.SaveJSON(t.outPath, &card); err != nil {
		r.UI.Error("[Judge-Soft] save %s: %v", t.outPath, err)
		return nil
	}
	return &card
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
