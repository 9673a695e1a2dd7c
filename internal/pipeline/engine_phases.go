package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/reviewarena/arena/internal/engine"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/store"
)

type engineTask struct {
	pr      models.PR
	model   *models.Model // nil for debate tasks
	outPath string
}

// RunReview runs the independent-review track: one engine invocation per
// hard PR per model, single round, no cross-model interaction.
func (p *Pipeline) RunReview(ctx context.Context, noContext bool) error {
	mode := models.ModeR1
	phase := "Review"
	if noContext {
		mode = models.ModeR1NoContext
		phase = "Review-noctx"
	}

	ledger := p.startRun(ctx, string(mode))
	defer ledger.finish(ctx)

	var tasks []engineTask
	skipped := 0
	for _, pr := range p.filteredPRs(true) {
		for _, m := range p.filteredModels() {
			m := m
			outPath := p.Paths.Review(mode, pr.ID, m.ID)
			if !p.Force && store.Exists(outPath) {
				p.UI.Progress(phase, 0, 0, pr.ID, m.ID, "skipped", 0)
				ledger.record(ctx, mode, pr.ID, m.ID, models.TaskSkipped, "result exists", 0)
				skipped++
				continue
			}
			tasks = append(tasks, engineTask{pr: pr, model: &m, outPath: outPath})
		}
	}

	p.runEngineTasks(ctx, ledger, phase, mode, tasks, skipped, p.Cfg.HardScore.Rounds, false, noContext)
	return nil
}

// RunDebate runs the multi-round debate track: one engine invocation per
// PR with every participating model as a reviewer.
func (p *Pipeline) RunDebate(ctx context.Context, noContext bool) error {
	mode := models.ModeDebate
	phase := "Debate"
	if noContext {
		mode = models.ModeDebateNoContext
		phase = "Debate-noctx"
	}

	ledger := p.startRun(ctx, string(mode))
	defer ledger.finish(ctx)

	var tasks []engineTask
	skipped := 0
	for _, pr := range p.filteredPRs(false) {
		outPath := p.Paths.Review(mode, pr.ID, "")
		if !p.Force && store.Exists(outPath) {
			p.UI.Progress(phase, 0, 0, pr.ID, "", "skipped", 0)
			ledger.record(ctx, mode, pr.ID, "", models.TaskSkipped, "result exists", 0)
			skipped++
			continue
		}
		tasks = append(tasks, engineTask{pr: pr, outPath: outPath})
	}

	p.runEngineTasks(ctx, ledger, phase, mode, tasks, skipped, p.Cfg.SoftScore.Rounds, p.Cfg.SoftScore.CheckConvergence, noContext)
	return nil
}

// runEngineTasks executes a batch of engine invocations under the pool.
func (p *Pipeline) runEngineTasks(ctx context.Context, ledger *runLedger, phase string, mode models.ReviewMode,
	tasks []engineTask, skipped, rounds int, checkConvergence, noContext bool) {

	total := len(tasks)
	if total == 0 {
		p.UI.Info("[%s] nothing to do (%d skipped)", phase, skipped)
		return
	}

	p.UI.PhaseStart(phase, total+skipped, p.Cfg.Execution.Concurrency)
	if skipped > 0 {
		p.UI.Info("[%s] %d result(s) exist, skipped", phase, skipped)
	}
	phaseStart := time.Now()

	reviewerNames := make([]string, 0, len(p.filteredModels()))
	for _, m := range p.filteredModels() {
		reviewerNames = append(reviewerNames, m.ID)
	}

	Parallel(p.Cfg.Execution.Concurrency, total, func(i int) {
		t := tasks[i]
		modelID := ""
		reviewers := p.filteredModels()
		startStatus := "debating (" + strings.Join(reviewerNames, ", ") + ")"
		if t.model != nil {
			modelID = t.model.ID
			reviewers = []models.Model{*t.model}
			startStatus = "reviewing"
		}
		p.UI.Progress(phase, i+1, total, t.pr.ID, modelID, startStatus, 0)
		start := time.Now()

		if _, sha := p.snapshotForPR(t.pr); sha != "" {
			p.UI.VerboseLog("[snapshot] %s: subject repo at %.12s", t.pr.ID, sha)
		}

		cfgPath, err := p.Engine.GenerateConfig(reviewers, p.Cfg.ReviewPrompt, engine.ConfigOptions{
			Rounds:           rounds,
			CheckConvergence: checkConvergence,
			SkipContext:      noContext,
		})
		if err != nil {
			p.UI.Progress(phase, i+1, total, t.pr.ID, modelID, "failed", time.Since(start))
			p.UI.Error("  [ERROR] %s: %v", t.pr.ID, err)
			ledger.record(ctx, mode, t.pr.ID, modelID, models.TaskFailed, err.Error(), time.Since(start))
			return
		}

		outcome := p.Engine.Review(ctx, t.pr.URL, cfgPath, t.outPath, rounds, noContext)
		elapsed := time.Since(start)

		if outcome.Err != nil {
			p.UI.Error("  [ERROR] %s: %v", t.pr.ID, outcome.Err)
			if outcome.StderrTail != "" {
				for _, line := range strings.Split(outcome.StderrTail, "\n") {
					p.UI.Error("  %s", line)
				}
			}
		}

		// The engine writes the transcript itself; the checkpoint predicate
		// on the output path is the source of truth for success.
		if store.Exists(t.outPath) {
			p.UI.Progress(phase, i+1, total, t.pr.ID, modelID, "done", elapsed)
			ledger.record(ctx, mode, t.pr.ID, modelID, models.TaskDone, "", elapsed)
		} else {
			p.UI.Progress(phase, i+1, total, t.pr.ID, modelID, "failed", elapsed)
			detail := "no output"
			if outcome.Err != nil {
				detail = outcome.Err.Error()
			}
			ledger.record(ctx, mode, t.pr.ID, modelID, models.TaskFailed, detail, elapsed)
		}
	}, func(i int, err error) {
		t := tasks[i]
		p.UI.Error("  [ERROR] %s: %v", t.pr.ID, err)
		ledger.record(ctx, mode, t.pr.ID, "", models.TaskFailed, err.Error(), 0)
	})

	p.UI.PhaseEnd(phase, total, time.Since(phaseStart))
}
