package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reviewarena/arena/internal/config"
	"github.com/reviewarena/arena/internal/engine"
	"github.com/reviewarena/arena/internal/gitrepo"
	"github.com/reviewarena/arena/internal/judge"
	"github.com/reviewarena/arena/internal/models"
	"github.com/reviewarena/arena/internal/output"
	"github.com/reviewarena/arena/internal/pipeline"
	"github.com/reviewarena/arena/internal/provider"
	"github.com/reviewarena/arena/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool

	// Shared phase flags, registered on every phase command.
	flagPR     string
	flagModels []string
	flagForce  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Code-review model evaluation arena",
	Long: `arena evaluates code-review models against a fixed set of PRs.

Hard PRs carry known injected bugs and measure detection rates; soft PRs
measure review quality through blind peer scoring. Phases checkpoint to
the results directory and are safe to re-run.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./arena.yaml or ~/.config/arena/arena.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arena"))
		}
		viper.SetConfigName("arena")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ARENA")
	viper.AutomaticEnv()

	config.SetDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// addPhaseFlags registers the flags every pipeline phase shares.
func addPhaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPR, "pr", "", "Run only this PR ID")
	cmd.Flags().StringSliceVar(&flagModels, "model", nil, "Run only these model IDs (repeatable)")
	cmd.Flags().BoolVar(&flagForce, "force", false, "Re-run tasks even when results exist")
}

// getConfig loads and validates the arena configuration.
func getConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// getManifest loads the PR manifest named by the configuration.
func getManifest(cfg *config.Config) (*models.Manifest, error) {
	m, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	if len(m.PRs) == 0 {
		return nil, fmt.Errorf("manifest %s lists no PRs", cfg.ManifestPath)
	}
	return m, nil
}

// getHistory opens the run ledger. A broken ledger degrades to nil rather
// than blocking the pipeline; results on disk are the source of truth.
func getHistory(cfg *config.Config) *store.History {
	h, err := store.OpenHistory(cfg.HistoryDB)
	if err != nil {
		ui.Warning("run ledger unavailable: %v", err)
		return nil
	}
	if err := h.Migrate(rootCmd.Context()); err != nil {
		ui.Warning("run ledger migration failed: %v", err)
		_ = h.Close()
		return nil
	}
	return h
}

// buildPipeline wires a Pipeline from the loaded configuration and the
// shared phase flags. Filter validation is fatal: a typo in --pr or
// --model must not silently run nothing.
func buildPipeline(cfg *config.Config, manifest *models.Manifest, history *store.History) (*pipeline.Pipeline, error) {
	if err := pipeline.ValidateFilters(cfg, manifest, flagPR, flagModels); err != nil {
		return nil, err
	}

	paths := store.Paths{Root: cfg.ResultsDir}
	return &pipeline.Pipeline{
		Cfg:          cfg,
		Manifest:     manifest,
		Paths:        paths,
		UI:           ui,
		Git:          gitrepo.NewClient(),
		GH:           gitrepo.NewGitHubClient(),
		Engine:       engine.NewRunner(cfg.Engine, paths.EngineConfigs()),
		Creds:        provider.ResolveCredentials(cfg.Models),
		History:      history,
		Force:        flagForce,
		PRFilter:     flagPR,
		ModelFilters: flagModels,
	}, nil
}

// buildJudge wires a judge runner whose invoke function goes through the
// provider layer with the credentials resolved once at startup.
func buildJudge(cfg *config.Config, manifest *models.Manifest) *judge.Runner {
	creds := provider.ResolveCredentials(cfg.Models)
	return &judge.Runner{
		Cfg:      cfg,
		Manifest: manifest,
		Paths:    store.Paths{Root: cfg.ResultsDir},
		UI:       ui,
		Force:    flagForce,
		Invoke: func(ctx context.Context, m models.Model, prompt string, timeout time.Duration) (string, error) {
			p, err := provider.New(m, creds, provider.Options{Timeout: timeout})
			if err != nil {
				return "", err
			}
			return p.Invoke(ctx, prompt)
		},
	}
}
