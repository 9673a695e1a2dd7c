package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewarena/arena/internal/output"
)

var runsTasks string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs from the history ledger",
	Long: `Show past pipeline invocations: phase, task counts, and timing.
With --tasks <run-id>, show the per-task outcomes of one run instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		history := getHistory(cfg)
		if history == nil {
			return fmt.Errorf("run ledger unavailable")
		}
		defer history.Close()

		ctx := cmd.Context()

		if runsTasks != "" {
			tasks, err := history.ListTasks(ctx, runsTasks)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				ui.Info("no tasks recorded for run %s", runsTasks)
				return nil
			}

			table := ui.Table([]string{"MODE", "PR", "MODEL", "STATUS", "ELAPSED", "DETAIL"})
			for _, t := range tasks {
				table.Append([]string{
					t.Mode,
					t.PRID,
					t.ModelID,
					output.StatusColor(string(t.Status)),
					output.Elapsed(time.Duration(t.ElapsedMS) * time.Millisecond),
					t.Detail,
				})
			}
			return table.Render()
		}

		runs, err := history.ListRuns(ctx, 30)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			ui.Info("no runs recorded yet")
			return nil
		}

		table := ui.Table([]string{"ID", "PHASE", "TASKS", "FAILED", "SKIPPED", "STARTED", "DURATION"})
		for _, r := range runs {
			duration := "-"
			if r.FinishedAt != nil {
				duration = output.Elapsed(r.FinishedAt.Sub(r.StartedAt))
			}
			table.Append([]string{
				r.ID,
				r.Phase,
				fmt.Sprintf("%d", r.Tasks),
				fmt.Sprintf("%d", r.Failed),
				fmt.Sprintf("%d", r.Skipped),
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				duration,
			})
		}
		return table.Render()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsTasks, "tasks", "", "Show per-task outcomes for the given run ID")
	rootCmd.AddCommand(runsCmd)
}
