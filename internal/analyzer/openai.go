package analyzer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
)

// OpenAIReasoner talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, Ollama, vLLM, ...).
type OpenAIReasoner struct {
	client openai.Client
	model  string
}

func NewOpenAIReasoner(cfg Config) *OpenAIReasoner {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIReasoner{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (r *OpenAIReasoner) Complete(ctx context.Context, system, prompt string) (string, error) {
	completion, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai API error: %w", errs.ErrBackendUnavailable, err)
	}

	if len(completion.Choices) == 0 {
		return "", errs.ErrReasoningEmpty
	}
	return completion.Choices[0].Message.Content, nil
}
