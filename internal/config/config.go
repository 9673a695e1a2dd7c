package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/reviewarena/arena/internal/models"
)

// Dimension is one soft-scoring rubric axis.
type Dimension struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Execution holds pipeline scheduling parameters.
type Execution struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Rounds holds review round counts per scoring track.
type Rounds struct {
	Rounds           int  `mapstructure:"rounds"`
	CheckConvergence bool `mapstructure:"check_convergence"`
}

// Judge configures the judging phase. JudgeModel is the sole judge for hard
// verdicts; when Voters lists more than one model ID, each voter judges
// independently and verdicts resolve by strict majority.
type Judge struct {
	JudgeModel string      `mapstructure:"judge_model"`
	Voters     []string    `mapstructure:"voters"`
	Dimensions []Dimension `mapstructure:"dimensions"`
}

// Engine configures the external review-orchestration engine.
type Engine struct {
	Command string        `mapstructure:"command"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the static arena configuration, loaded once at startup.
type Config struct {
	Models       []models.Model `mapstructure:"models"`
	Execution    Execution      `mapstructure:"execution"`
	HardScore    Rounds         `mapstructure:"hard_score"`
	SoftScore    Rounds         `mapstructure:"soft_score"`
	Judge        Judge          `mapstructure:"judge"`
	Engine       Engine         `mapstructure:"engine"`
	ReviewPrompt string         `mapstructure:"review_prompt"`
	SubjectRepo  string         `mapstructure:"subject_repo"`
	ResultsDir   string         `mapstructure:"results_dir"`
	ManifestPath string         `mapstructure:"manifest_path"`
	HistoryDB    string         `mapstructure:"history_db"`
}

// SetDefaults registers viper defaults for every knob.
func SetDefaults() {
	viper.SetDefault("execution.concurrency", 4)
	viper.SetDefault("hard_score.rounds", 1)
	viper.SetDefault("soft_score.rounds", 3)
	viper.SetDefault("soft_score.check_convergence", true)
	viper.SetDefault("judge.judge_model", "claude")
	viper.SetDefault("engine.command", "magpie")
	viper.SetDefault("engine.timeout", 30*time.Minute)
	viper.SetDefault("results_dir", "results")
	viper.SetDefault("manifest_path", "prs/manifest.yaml")
	viper.SetDefault("history_db", "results/arena.db")
	viper.SetDefault("review_prompt", "You are a senior engineer reviewing this PR.")
}

// Load unmarshals the viper-managed configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}
	if cfg.Execution.Concurrency < 1 {
		cfg.Execution.Concurrency = 1
	}
	return &cfg, nil
}

// LoadManifest reads the static PR manifest.
func LoadManifest(path string) (*models.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m models.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ModelByID returns the configured model with the given ID, or nil.
func (c *Config) ModelByID(id string) *models.Model {
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i]
		}
	}
	return nil
}

// ModelIDs returns the IDs of all configured models in order.
func (c *Config) ModelIDs() []string {
	ids := make([]string, len(c.Models))
	for i, m := range c.Models {
		ids[i] = m.ID
	}
	return ids
}

// DimensionIDs returns the rubric dimension identifiers in order.
func (j Judge) DimensionIDs() []string {
	ids := make([]string, len(j.Dimensions))
	for i, d := range j.Dimensions {
		ids[i] = d.ID
	}
	return ids
}
