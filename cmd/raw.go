package cmd

import (
	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Run single-shot baseline reviews for every model on hard PRs",
	Long: `Run the raw phase: each model reviews each hard PR once, directly,
without the multi-round engine. Results land in results/raw/<pr>/<model>.json
and existing results are skipped unless --force is given.`,
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
		return p.RunRaw(cmd.Context())
	},
}

func init() {
	addPhaseFlags(rawCmd)
	rootCmd.AddCommand(rawCmd)
}
