package cmd

import (
	"github.com/spf13/cobra"
)

var (
	judgeHardOnly bool
	judgeSoftOnly bool
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Judge completed reviews: hard verdicts and soft quality scores",
	Long: `Run the judging phase over completed review results.

Hard judging asks the judge panel, per known bug, whether each review found
it; verdicts aggregate into results/judge/verdicts.json. Soft judging
anonymizes each debate's first-round reviews and scores them per rubric
dimension, with the reviewer-to-model mapping persisted for the report
phase to de-anonymize.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		manifest, err := getManifest(cfg)
		if err != nil {
			return err
		}

		r := buildJudge(cfg, manifest)
		if !judgeSoftOnly {
			if err := r.RunHard(cmd.Context()); err != nil {
				return err
			}
		}
		if !judgeHardOnly {
			if err := r.RunSoft(cmd.Context()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	judgeCmd.Flags().BoolVar(&flagForce, "force", false, "Re-judge even when judgments exist")
	judgeCmd.Flags().BoolVar(&judgeHardOnly, "hard", false, "Only run hard bug-detection judging")
	judgeCmd.Flags().BoolVar(&judgeSoftOnly, "soft", false, "Only run soft quality judging")
	rootCmd.AddCommand(judgeCmd)
}
