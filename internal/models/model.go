package models

// ModelKind selects how a model is invoked by the provider layer.
type ModelKind string

const (
	// KindCLI pipes the prompt to a shell command on stdin.
	KindCLI ModelKind = "cli"
	// KindArg passes the prompt as a positional argument to the command.
	KindArg ModelKind = "arg"
	// KindStream runs a CLI that emits JSON-lines events and extracts the
	// final assistant text from the stream.
	KindStream ModelKind = "stream"
	// KindAPI calls the provider's HTTP API directly. API models cannot
	// fetch URLs themselves, so raw-review prompts inline the PR diff.
	KindAPI ModelKind = "api"
)

// Model is one AI model participating in the arena. The Provider handle is
// used both for engine configuration and for self-identification matching
// during bias analysis.
type Model struct {
	ID        string    `mapstructure:"id" yaml:"id" json:"id"`
	Provider  string    `mapstructure:"provider" yaml:"provider" json:"provider"`
	Kind      ModelKind `mapstructure:"kind" yaml:"kind" json:"kind"`
	Command   string    `mapstructure:"command" yaml:"command" json:"command,omitempty"`
	APIModel  string    `mapstructure:"api_model" yaml:"api_model" json:"api_model,omitempty"`
	APIKeyEnv string    `mapstructure:"api_key_env" yaml:"api_key_env" json:"api_key_env,omitempty"`
}
