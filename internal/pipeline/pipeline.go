// Package pipeline builds and executes the evaluation task graph: the
// cross product of PRs, models, and modes, filtered by checkpoint state,
// run under a bounded worker pool with per-task failure isolation.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/engine"
	"github.com/reviewarena/arena/internal/gitrepo"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/provider"
	"github.com/reviewarena/arena/internal/store"
)

// Pipeline carries the dependencies shared by every phase. All fields are
// set once at construction; tasks share nothing mutable except the run
// counters, which are lock-protected.
type Pipeline struct {
	Cfg          *config.Config
	Manifest     *models.Manifest
	Paths        store.Paths
	UI           *output.UI
	Git          gitrepo.Client
	GH           gitrepo.GitHubClient
	Engine       *engine.Runner
	Creds        provider.Credentials
	History      *store.History // nil disables the run ledger
	Force        bool
	PRFilter     string
	ModelFilters []string
}

// ValidateFilters rejects filter values that name unknown PRs or models.
// This is a configuration error: fatal before any work starts.
func ValidateFilters(cfg *config.Config, manifest *models.Manifest, prFilter string, modelFilters []string) error {
	if prFilter != "" && manifest.PRByID(prFilter) == nil {
		return fmt.Errorf("PR %q not in manifest. Available: %s", prFilter, strings.Join(prIDs(manifest), ", "))
	}
	for _, mf := range modelFilters {
		if cfg.ModelByID(mf) == nil {
			return fmt.Errorf("model %q not in config. Available: %s", mf, strings.Join(cfg.ModelIDs(), ", "))
		}
	}
	return nil
}

func prIDs(m *models.Manifest) []string {
	ids := make([]string, len(m.PRs))
	for i, p := range m.PRs {
		ids[i] = p.ID
	}
	return ids
}

// filteredModels applies the model filter to the roster.
func (p *Pipeline) filteredModels() []models.Model {
	if len(p.ModelFilters) == 0 {
		return p.Cfg.Models
	}
	want := map[string]bool{}
	for _, id := range p.ModelFilters {
		want[id] = true
	}
	var out []models.Model
	for _, m := range p.Cfg.Models {
		if want[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// filteredPRs applies the PR filter, optionally restricted to hard PRs.
func (p *Pipeline) filteredPRs(hardOnly bool) []models.PR {
	src := p.Manifest.PRs
	if hardOnly {
		src = p.Manifest.HardPRs()
	}
	if p.PRFilter == "" {
		return src
	}
	var out []models.PR
	for _, pr := range src {
		if pr.ID == p.PRFilter {
			out = append(out, pr)
		}
	}
	return out
}

// runLedger wraps the optional history store with run-scoped counters.
type runLedger struct {
	history *store.History
	run     *models.Run
	mu      sync.Mutex
}

func (p *Pipeline) startRun(ctx context.Context, phase string) *runLedger {
	ledger := &runLedger{history: p.History}
	if p.History == nil {
		return ledger
	}
	run, err := p.History.StartRun(ctx, phase, p.Force, p.PRFilter, strings.Join(p.ModelFilters, ","))
	if err != nil {
		p.UI.Warning("run history unavailable: %v", err)
		ledger.history = nil
		return ledger
	}
	ledger.run = run
	return ledger
}

func (l *runLedger) record(ctx context.Context, mode models.ReviewMode, prID, modelID string, status models.TaskStatus, detail string, elapsed time.Duration) {
	if l.history == nil || l.run == nil {
		return
	}
	l.mu.Lock()
	l.run.Tasks++
	switch status {
	case models.TaskFailed:
		l.run.Failed++
	case models.TaskSkipped:
		l.run.Skipped++
	}
	l.mu.Unlock()

	_ = l.history.RecordTask(ctx, &models.TaskRecord{
		RunID:     l.run.ID,
		Mode:      string(mode),
		PRID:      prID,
		ModelID:   modelID,
		Status:    status,
		Detail:    detail,
		ElapsedMS: elapsed.Milliseconds(),
	})
}

func (l *runLedger) finish(ctx context.Context) {
	if l.history != nil && l.run != nil {
		_ = l.history.FinishRun(ctx, l.run)
	}
}

// snapshotForPR exports the subject repository at the PR's merge commit
// into a content-addressed directory and returns it. Tasks for the same PR
// share one read-only snapshot; tasks for different PRs never touch each
// other's. Failure is non-fatal: the task proceeds without an isolated
// workdir rather than aborting the phase.
func (p *Pipeline) snapshotForPR(pr models.PR) (workdir, sha string) {
	if p.Cfg.SubjectRepo == "" {
		return "", ""
	}
	info, err := p.GH.PRInfo(pr.URL)
	if err != nil || info.MergeCommit == "" {
		p.UI.Warning("[snapshot] %s: %v", pr.ID, err)
		return "", ""
	}
	dest := gitrepo.SnapshotDir(p.Paths.Snapshots(), info.MergeCommit)
	if err := p.Git.Snapshot(p.Cfg.SubjectRepo, info.MergeCommit, dest); err != nil {
		p.UI.Warning("[snapshot] %s: %v", pr.ID, err)
		return "", ""
	}
	return dest, info.MergeCommit
}
