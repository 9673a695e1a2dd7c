package judge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/pipeline"
	"github.com/reviewarena/arena/internal/prompts"
	"github.com/reviewarena/arena/internal/review"
	"github.com/reviewarena/arena/internal/store"
)

// debateSubject is the subject identity used for collaborative artifacts.
const debateSubject = "debate"

type hardTask struct {
	mode       models.ReviewMode
	pr         models.PR
	bug        models.KnownBug
	subjectID  string
	reviewPath string
	voter      models.Model
	outPath    string
}

// RunHard judges every hard PR's known bugs across all review modes. Debate
// artifacts are judged as one collaborative unit per bug; per-model modes
// are judged per reviewed model. Each panel voter judges independently;
// verdicts then resolve solely or by strict majority.
func (r *Runner) RunHard(ctx context.Context) error {
	panel, err := r.voters()
	if err != nil {
		return err
	}

	hardPRs := r.Manifest.HardPRs()
	var tasks []hardTask
	skipped := 0

	for _, mode := range models.AllModes {
		for _, pr := range hardPRs {
			for _, subjectID := range r.subjects(mode, pr) {
				reviewPath := r.reviewPathFor(mode, pr.ID, subjectID)
				for _, bug := range pr.KnownBugs {
					for _, voter := range panel {
						outPath := r.Paths.HardJudgment(mode, pr.ID, bug.ID, subjectID, voter.ID)
						if !r.Force && store.Exists(outPath) {
							skipped++
							continue
						}
						tasks = append(tasks, hardTask{
							mode: mode, pr: pr, bug: bug,
							subjectID: subjectID, reviewPath: reviewPath,
							voter: voter, outPath: outPath,
						})
					}
				}
			}
		}
	}

	total := len(tasks)
	if total == 0 {
		r.UI.Info("[Judge-Hard] nothing to do (%d skipped)", skipped)
		return r.reconcile(panel)
	}

	r.UI.PhaseStart("Judge-Hard", total+skipped, r.Cfg.Execution.Concurrency)
	if skipped > 0 {
		r.UI.Info("[Judge-Hard] %d result(s) exist, skipped", skipped)
	}
	phaseStart := time.Now()

	var mu sync.Mutex
	completed := 0

	pipeline.Parallel(r.Cfg.Execution.Concurrency, total, func(i int) {
		t := tasks[i]
		j := r.judgeOne(ctx, t)

		mu.Lock()
		completed++
		idx := completed
		mu.Unlock()

		if j == nil {
			return
		}
		verdict := j.Verdict
		if verdict == "" {
			verdict = "UNPARSED"
		}
		r.UI.Info("[Judge-Hard] [%d/%d] %s/%s/%s by %s ... %s",
			idx, total, t.mode, t.pr.ID, t.subjectID, t.voter.ID, verdict)
	}, func(i int, err error) {
		t := tasks[i]
		r.UI.Error("[Judge-Hard] %s/%s: %s: %v", t.mode, t.pr.ID, t.subjectID, err)
	})

	r.UI.PhaseEnd("Judge-Hard", total, time.Since(phaseStart))
	return r.reconcile(panel)
}

// subjects lists who gets judged for a mode: each model with an artifact, or
// the single collaborative debate unit.
func (r *Runner) subjects(mode models.ReviewMode, pr models.PR) []string {
	if mode.IsDebate() {
		if store.Exists(r.Paths.Review(mode, pr.ID, "")) {
			return []string{debateSubject}
		}
		return nil
	}
	var out []string
	for _, m := range r.Cfg.Models {
		if store.Exists(r.Paths.Review(mode, pr.ID, m.ID)) {
			out = append(out, m.ID)
		}
	}
	return out
}

func (r *Runner) reviewPathFor(mode models.ReviewMode, prID, subjectID string) string {
	if subjectID == debateSubject {
		return r.Paths.Review(mode, prID, "")
	}
	return r.Paths.Review(mode, prID, subjectID)
}

// judgeOne runs a single judgment and persists it. Unparseable responses
// are saved with an empty verdict so the checkpoint exists but aggregation
// sees the result as absent.
func (r *Runner) judgeOne(ctx context.Context, t hardTask) *models.Judgment {
	artifact, err := review.Load(t.reviewPath)
	if err != nil {
		return nil
	}
	content := review.ExtractContent(artifact)
	if content == "" {
		return nil
	}

	j := models.Judgment{
		Mode:          t.mode,
		PRID:          t.pr.ID,
		BugID:         t.bug.ID,
		ReviewedModel: t.subjectID,
		JudgeModel:    t.voter.ID,
	}

	prompt := prompts.HardJudge(t.bug.Description, content)
	response, err := r.Invoke(ctx, t.voter, prompt, judgeTimeout)
	if err != nil {
		r.UI.Error("[Judge-Hard] %s/%s/%s: %v", t.mode, t.pr.ID, t.subjectID, err)
	} else if err := ExtractJSON(response, &j); err != nil {
		r.UI.Warning("[Judge-Hard] %s/%s/%s: %v", t.mode, t.pr.ID, t.subjectID, err)
		j = models.Judgment{Mode: t.mode, PRID: t.pr.ID, BugID: t.bug.ID,
			ReviewedModel: t.subjectID, JudgeModel: t.voter.ID}
	}

	if err := store.SaveJSON(t.outPath, &j); err != nil {
		r.UI.Error("[Judge-Hard] save %s: %v", t.outPath, err)
		return nil
	}
	return &j
}

// reconcile merges freshly computed and previously checkpointed judgments
// into the aggregate verdicts file, so a partial re-run still yields a
// complete view without recomputation.
func (r *Runner) reconcile(panel []models.Model) error {
	verdicts := map[string]models.Verdict{}

	for _, mode := range models.AllModes {
		for _, pr := range r.Manifest.HardPRs() {
			for _, subjectID := range r.subjects(mode, pr) {
				for _, bug := range pr.KnownBugs {
					var votes []models.Judgment
					for _, voter := range panel {
						path := r.Paths.HardJudgment(mode, pr.ID, bug.ID, subjectID, voter.ID)
						var j models.Judgment
						if err := store.LoadJSON(path, &j); err != nil {
							continue
						}
						if j.Parsed() {
							votes = append(votes, j)
						}
					}
					if len(votes) == 0 {
						continue
					}
					key := fmt.Sprintf("%s/%s/%s/%s", mode, pr.ID, bug.ID, subjectID)
					verdicts[key] = resolve(mode, votes)
				}
			}
		}
	}

	if err := store.SaveJSON(r.Paths.Verdicts(), verdicts); err != nil {
		return fmt.Errorf("save verdicts: %w", err)
	}

	keys := make([]string, 0, len(verdicts))
	for k := range verdicts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r.UI.Info("[Judge-Hard] === Final Verdicts ===")
	for _, k := range keys {
		v := verdicts[k]
		found := "NO"
		if v.Found {
			found = "YES"
		}
		r.UI.Info("  %s: %s (%s)", k, found, v.Confidence)
	}
	return nil
}

// resolve reduces one subject's votes to a verdict: the sole judge's call,
// or a strict-majority vote across the panel.
func resolve(mode models.ReviewMode, votes []models.Judgment) models.Verdict {
	if len(votes) == 1 {
		j := votes[0]
		return models.Verdict{
			Mode:       mode,
			Found:      j.Found(),
			Verdict:    j.Verdict,
			Confidence: j.Confidence,
			Reasoning:  j.Reasoning,
		}
	}

	yes := 0
	for _, j := range votes {
		if j.Found() {
			yes++
		}
	}
	found := ResolveMajority(yes, len(votes))
	verdict := "NO"
	if found {
		verdict = "YES"
	}
	return models.Verdict{
		Mode:       mode,
		Found:      found,
		Verdict:    verdict,
		YesVotes:   yes,
		TotalVotes: len(votes),
	}
}
