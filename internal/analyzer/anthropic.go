package analyzer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
)

type AnthropicReasoner struct {
	client anthropic.Client
	model  string
}

func NewAnthropicReasoner(cfg Config) *AnthropicReasoner {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicReasoner{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (r *AnthropicReasoner) Complete(ctx context.Context, system, prompt string) (string, error) {
	message, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic API error: %w", errs.ErrBackendUnavailable, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errs.ErrReasoningEmpty
}
