package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/report"
	"github.com/reviewarena/arena/internal/store"
)

var runSkipNoContext bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: raw, review, debate, judge, report",
	Long: `Run every phase in order: raw baselines, independent reviews (with
and without context), debates (with and without context), judging, and
report generation. Each phase checkpoints per task, so an interrupted run
resumes where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		manifest, err := getManifest(cfg)
		if err != nil {
			return err
		}
		history := getHistory(cfg)
		if history != nil {
			defer history.Close()
		}

		p, err := buildPipeline(cfg, manifest, history)
		if err != nil {
			return err
		}

		start := time.Now()
		ctx := cmd.Context()

		if err := p.RunRaw(ctx); err != nil {
			return err
		}
		if err := p.RunReview(ctx, false); err != nil {
			return err
		}
		if !runSkipNoContext {
			if err := p.RunReview(ctx, true); err != nil {
				return err
			}
		}
		if err := p.RunDebate(ctx, false); err != nil {
			return err
		}
		if !runSkipNoContext {
			if err := p.RunDebate(ctx, true); err != nil {
				return err
			}
		}

		j := buildJudge(cfg, manifest)
		if err := j.RunHard(ctx); err != nil {
			return err
		}
		if err := j.RunSoft(ctx); err != nil {
			return err
		}

		g := &report.Generator{
			Cfg:      cfg,
			Manifest: manifest,
			Paths:    store.Paths{Root: cfg.ResultsDir},
			UI:       ui,
		}
		if err := g.Run(); err != nil {
			return err
		}

		ui.Success("Pipeline complete in %s", output.Elapsed(time.Since(start)))
		return nil
	},
}

func init() {
	addPhaseFlags(runCmd)
	runCmd.Flags().BoolVar(&runSkipNoContext, "skip-no-context", false, "Skip the no-context review and debate variants")
	rootCmd.AddCommand(runCmd)
}
