// Package judge runs the scoring phases: hard bug-detection verdicts over
// every review mode, and soft quality ratings over anonymized debate
// reviews.
package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/store"
)

// judgeTimeout bounds a single judge invocation. Judges answer one focused
// question, unlike reviews which can run tens of minutes.
const judgeTimeout = 5 * time.Minute

// InvokeFunc sends a prompt to a model and returns its response text.
type InvokeFunc func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error)

// Runner executes the judging phases.
type Runner struct {
	Cfg      *config.Config
	Manifest *models.Manifest
	Paths    store.Paths
	UI       *output.UI
	Invoke   InvokeFunc
	Force    bool
}

// voters resolves the hard-judge panel: the configured voter list, or the
// sole designated judge when no panel is configured.
func (r *Runner) voters() ([]models.Model, error) {
	ids := r.Cfg.Judge.Voters
	if len(ids) == 0 {
		ids = []string{r.Cfg.Judge.JudgeModel}
	}
	panel := make([]models.Model, 0, len(ids))
	for _, id := range ids {
		m := r.Cfg.ModelByID(id)
		if m == nil {
			return nil, fmt.Errorf("judge model %q not in config", id)
		}
		panel = append(panel, *m)
	}
	return panel, nil
}
