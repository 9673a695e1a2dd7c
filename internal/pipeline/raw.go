package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewarena/arena/internal/anticheat"
	"github.com/reviewarena/arena/internal/gitrepo"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/prompts"
	"github.com/reviewarena/arena/internal/provider"
	"github.com/reviewarena/arena/internal/store"
)

// rawTimeout bounds one autonomous raw review, which includes the model
// fetching and reading the diff itself.
const rawTimeout = 30 * time.Minute

type rawTask struct {
	pr      models.PR
	model   models.Model
	outPath string
}

// RunRaw measures each model's bare review capability: one direct model
// invocation per hard PR, no orchestration engine, anti-cheat rules in the
// prompt and a point-in-time snapshot as the working directory.
func (p *Pipeline) RunRaw(ctx context.Context) error {
	const phase = "Raw"
	ledger := p.startRun(ctx, "raw")
	defer ledger.finish(ctx)

	var tasks []rawTask
	skipped := 0
	for _, pr := range p.filteredPRs(true) {
		for _, m := range p.filteredModels() {
			outPath := p.Paths.Review(models.ModeRaw, pr.ID, m.ID)
			if !p.Force && store.Exists(outPath) {
				p.UI.Progress(phase, 0, 0, pr.ID, m.ID, "skipped", 0)
				ledger.record(ctx, models.ModeRaw, pr.ID, m.ID, models.TaskSkipped, "result exists", 0)
				skipped++
				continue
			}
			tasks = append(tasks, rawTask{pr: pr, model: m, outPath: outPath})
		}
	}

	total := len(tasks)
	if total == 0 {
		p.UI.Info("[%s] nothing to do (%d skipped)", phase, skipped)
		return nil
	}

	p.UI.PhaseStart(phase, total+skipped, p.Cfg.Execution.Concurrency)
	if skipped > 0 {
		p.UI.Info("[%s] %d result(s) exist, skipped", phase, skipped)
	}
	phaseStart := time.Now()

	Parallel(p.Cfg.Execution.Concurrency, total, func(i int) {
		t := tasks[i]
		p.UI.Progress(phase, i+1, total, t.pr.ID, t.model.ID, "reviewing", 0)
		start := time.Now()

		status, detail := p.rawOne(ctx, t, i+1, total)
		ledger.record(ctx, models.ModeRaw, t.pr.ID, t.model.ID, status, detail, time.Since(start))
	}, func(i int, err error) {
		t := tasks[i]
		p.UI.Error("  [ERROR] %s × %s: %v", t.pr.ID, t.model.ID, err)
		ledger.record(ctx, models.ModeRaw, t.pr.ID, t.model.ID, models.TaskFailed, err.Error(), 0)
	})

	p.UI.PhaseEnd(phase, total, time.Since(phaseStart))
	return nil
}

// rawOne executes a single raw review task end to end.
func (p *Pipeline) rawOne(ctx context.Context, t rawTask, index, total int) (models.TaskStatus, string) {
	const phase = "Raw"
	start := time.Now()

	workdir, sha := p.snapshotForPR(t.pr)
	if sha != "" {
		p.UI.VerboseLog("[snapshot] %s: subject repo at %.12s", t.pr.ID, sha)
	}

	prompt, err := p.rawPrompt(t)
	if err != nil {
		p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID, "failed ("+err.Error()+")", time.Since(start))
		return models.TaskFailed, err.Error()
	}

	prov, err := provider.New(t.model, p.Creds, provider.Options{Timeout: rawTimeout, Workdir: workdir})
	if err != nil {
		p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID, "failed", time.Since(start))
		p.UI.Error("  [ERROR] %s × %s: %v", t.pr.ID, t.model.ID, err)
		return models.TaskFailed, err.Error()
	}

	response, err := prov.Invoke(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil || response == "" {
		p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID, "failed", elapsed)
		if err != nil {
			p.UI.Error("  [ERROR] %s × %s: %v", t.pr.ID, t.model.ID, err)
			return models.TaskFailed, err.Error()
		}
		return models.TaskFailed, "empty response"
	}

	if valid, reason := anticheat.Validate(response); !valid {
		p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID, "INVALID ("+reason+")", elapsed)
		p.UI.Warning("  %s × %s: review failed validation: %s", t.pr.ID, t.model.ID, reason)
		p.UI.Warning("  First 200 chars: %.200s", response)
		return models.TaskFailed, "invalid: " + reason
	}

	isCheating, signals := anticheat.Detect(response)
	if isCheating {
		p.UI.Warning("  [CHEAT] %s × %s: cheating signals detected", t.pr.ID, t.model.ID)
		for _, sig := range signals {
			p.UI.Warning("    - %s: %s", sig.Category, sig.Detail)
		}
	}

	artifact := models.ReviewArtifact{
		PRNumber:     gitrepo.PRNumber(t.pr.URL),
		Messages:     []models.Message{{ReviewerID: t.model.ID, Content: response}},
		Mode:         models.ModeRaw,
		CheatSignals: signals,
	}
	if err := store.SaveJSON(t.outPath, &artifact); err != nil {
		p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID, "failed", elapsed)
		p.UI.Error("  [ERROR] %s × %s: %v", t.pr.ID, t.model.ID, err)
		return models.TaskFailed, err.Error()
	}

	cheatTag := ""
	if isCheating {
		cheatTag = " [CHEAT]"
	}
	p.UI.Progress(phase, index, total, t.pr.ID, t.model.ID,
		fmt.Sprintf("done (%d chars)%s", len(response), cheatTag), elapsed)
	return models.TaskDone, fmt.Sprintf("%d chars", len(response))
}

// rawPrompt builds the review prompt. API-only models cannot fetch URLs,
// so their prompt carries the diff and PR description inline.
func (p *Pipeline) rawPrompt(t rawTask) (string, error) {
	if t.model.Kind != models.KindAPI {
		return prompts.RawReview(p.Cfg.ReviewPrompt, t.pr.URL), nil
	}

	diff, err := p.GH.PRDiff(t.pr.URL)
	if err != nil || diff == "" {
		return "", fmt.Errorf("could not fetch diff")
	}
	info, err := p.GH.PRInfo(t.pr.URL)
	if err != nil {
		info = &gitrepo.PRInfo{Title: t.pr.Title}
	}
	return prompts.RawReviewInline(p.Cfg.ReviewPrompt, t.pr.URL, info.Title, info.Body, diff), nil
}
