package cmd

import (
	"github.com/spf13/cobra"
)

var reviewNoContext bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run independent engine reviews for every model on hard PRs",
	Long: `Run the review phase: each model reviews each hard PR through the
engine, alone, for a single round. With --no-context the engine skips its
repository context gathering step, isolating what the model finds from the
diff alone. Results land in results/r1/<pr>/<model>.json (r1_nocontext
with --no-context).`,
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
		return p.RunReview(cmd.Context(), reviewNoContext)
	},
}

func init() {
	addPhaseFlags(reviewCmd)
	reviewCmd.Flags().BoolVar(&reviewNoContext, "no-context", false, "Skip the engine's repo context gathering")
	rootCmd.AddCommand(reviewCmd)
}
