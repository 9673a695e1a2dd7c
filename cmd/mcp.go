package cmd

import (
	"github.com/spf13/cobra"

	"github.com/reviewarena/arena/internal/mcpserv"
	"github.com/reviewarena/arena/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server exposing arena results",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an agent query evaluation results natively. Configure with:

  {
    "mcpServers": {
      "arena": { "command": "arena", "args": ["mcp"] }
    }
  }

Available tools: arena_list_prs, arena_list_models, arena_verdicts,
arena_hard_summary, arena_soft_summary, arena_bias, arena_list_runs.
All tools are read-only.`,
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

		s := mcpserv.NewServer(cfg, manifest, store.Paths{Root: cfg.ResultsDir}, history)
		return s.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
