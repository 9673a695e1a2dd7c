package cmd

import (
	"github.com/spf13/cobra"
)

var debateNoContext bool

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Run multi-round debates with all models on every PR",
	Long: `Run the debate phase: all configured models review each PR together
through the engine across multiple rounds, seeing each other's arguments.
Covers both hard and soft PRs; the debate transcript is the input for soft
quality scoring. Results land in results/debate/<pr>/debate.json
(debate_nocontext with --no-context).`,
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
		return p.RunDebate(cmd.Context(), debateNoContext)
	},
}

func init() {
	addPhaseFlags(debateCmd)
	debateCmd.Flags().BoolVar(&debateNoContext, "no-context", false, "Skip the engine's repo context gathering")
	rootCmd.AddCommand(debateCmd)
}
