package cmd

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reviewarena/arena/internal/output"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage arena configuration.

Running bare 'arena config' is the same as 'arena config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create arena.yaml with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating arena.yaml with comments.
const configTemplate = `# arena configuration

# Reviewer models. kind is one of:
#   cli    - prompt piped to the command's stdin
#   arg    - prompt passed as the last command argument
#   stream - like cli but output is a JSON event stream
#   api    - direct Anthropic API call (set api_model and api_key_env)
models:
  - id: claude
    provider: claude
    kind: stream
    command: "claude -p --output-format stream-json --verbose"
  - id: codex
    provider: codex
    kind: cli
    command: "codex exec"

# PR manifest (default: {{ .ManifestPath }})
# manifest_path: {{ .ManifestPath }}

# Results directory (default: {{ .ResultsDir }})
# results_dir: {{ .ResultsDir }}

# Local clone of the repository the PRs belong to. When set, each task
# runs against a read-only snapshot of the PR's merge commit.
# subject_repo: ""

execution:
  # Concurrent tasks per phase (default: {{ .Concurrency }})
  concurrency: {{ .Concurrency }}

engine:
  # Review-orchestration engine command (default: {{ .EngineCommand }})
  command: {{ .EngineCommand }}

judge:
  # Sole judge for hard verdicts (default: {{ .JudgeModel }})
  judge_model: {{ .JudgeModel }}
  # Uncomment to judge by panel majority instead:
  # voters: [claude, codex, gemini]
  dimensions:
    - id: accuracy
      name: Technical accuracy
    - id: depth
      name: Depth of analysis
    - id: actionability
      name: Actionability of feedback
`

type configTemplateData struct {
	ManifestPath  string
	ResultsDir    string
	Concurrency   int
	EngineCommand string
	JudgeModel    string
}

func configInitRun() error {
	cfgPath := "arena.yaml"

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	data := configTemplateData{
		ManifestPath:  viper.GetString("manifest_path"),
		ResultsDir:    viper.GetString("results_dir"),
		Concurrency:   viper.GetInt("execution.concurrency"),
		EngineCommand: viper.GetString("engine.command"),
		JudgeModel:    viper.GetString("judge.judge_model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	return nil
}

func configShowRun() error {
	if used := viper.ConfigFileUsed(); used != "" {
		ui.Info("Config file: %s", used)
	} else {
		ui.Warning("No config file found (run 'arena config init')")
	}

	cfg, err := getConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "%s\n", output.Cyan("models:"))
	for _, m := range cfg.Models {
		fmt.Fprintf(ui.Out, "  %s (%s, kind=%s)\n", m.ID, m.Provider, m.Kind)
	}
	fmt.Fprintf(ui.Out, "%s %s\n", output.Cyan("manifest_path:"), cfg.ManifestPath)
	fmt.Fprintf(ui.Out, "%s %s\n", output.Cyan("results_dir:"), cfg.ResultsDir)
	fmt.Fprintf(ui.Out, "%s %d\n", output.Cyan("concurrency:"), cfg.Execution.Concurrency)
	fmt.Fprintf(ui.Out, "%s %s (timeout %s)\n", output.Cyan("engine:"), cfg.Engine.Command, cfg.Engine.Timeout)
	fmt.Fprintf(ui.Out, "%s %s\n", output.Cyan("judge_model:"), cfg.Judge.JudgeModel)
	if len(cfg.Judge.Voters) > 0 {
		fmt.Fprintf(ui.Out, "%s %v\n", output.Cyan("voters:"), cfg.Judge.Voters)
	}
	return nil
}
