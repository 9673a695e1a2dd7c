package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/reviewarena/arena/internal/models"
)

// Anthropic invokes a model through the Anthropic Messages API. Used for
// API-only models with no CLI; raw-review prompts for these models carry
// the PR diff inline since the model cannot fetch URLs itself.
type Anthropic struct {
	model models.Model
	api   *anthropic.Client
	opts  Options
}

// NewAnthropic creates an API provider with the given credential.
func NewAnthropic(m models.Model, apiKey string, opts Options) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: missing API key (set %s)", m.ID, m.APIKeyEnv)
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{model: m, api: &client, opts: opts}, nil
}

func (a *Anthropic) Name() string { return a.model.ID }

// Invoke sends the prompt as a single user message and returns the text
// blocks of the response.
func (a *Anthropic) Invoke(ctx context.Context, prompt string) (string, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	msg, err := a.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model.APIModel),
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: anthropic API call: %w", a.model.ID, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("%s: no text content in API response", a.model.ID)
	}
	return Normalize(text), nil
}
