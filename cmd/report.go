package cmd

import (
	"github.com/spf13/cobra"

	"github.com/reviewarena/arena/internal/report"
	"github.com/reviewarena/arena/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate score rollups and the text summary from judged results",
	Long: `Aggregate verdicts and quality scores into reports: detection-rate
tables per mode and model (CSV + JSON), quality rating rollups, the judge
self-bias analysis, and a human-readable summary. Reports are regenerated
from scratch on every run; partial results produce partial reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		manifest, err := getManifest(cfg)
		if err != nil {
			return err
		}

		g := &report.Generator{
			Cfg:      cfg,
			Manifest: manifest,
			Paths:    store.Paths{Root: cfg.ResultsDir},
			UI:       ui,
		}
		return g.Run()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
