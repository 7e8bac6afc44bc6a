package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/event"
	"github.com/rs/zerolog/log"
)

// Reasoner sends one chat request and returns the text of the first answer.
// Implementations return errs.ErrReasoningEmpty when the service answers with
// no candidates.
type Reasoner interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// NewReasoner builds the reasoning client selected by cfg.Provider.
func NewReasoner(cfg Config) (Reasoner, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIReasoner(cfg), nil
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicReasoner(cfg), nil
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", cfg.Provider)
	}
}

type Analyzer struct {
	reasoner Reasoner
}

func New(r Reasoner) *Analyzer {
	return &Analyzer{reasoner: r}
}

// Snippet flattens records into "<timestamp> <message>" lines, keeping the
// order they were retrieved in.
func Snippet(records []event.Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.Timestamp + " " + r.Message
	}
	return strings.Join(lines, "\n")
}

// Analyze asks the reasoning service for a troubleshooting summary of
// records. It makes exactly one request.
func (a *Analyzer) Analyze(ctx context.Context, records []event.Record, category, description string) (string, error) {
	prompt := BuildPrompt(Snippet(records), category, description)

	log.Info().
		Int("records", len(records)).
		Int("promptBytes", len(prompt)).
		Str("category", category).
		Msg("Requesting log analysis")

	answer, err := a.reasoner.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		if errors.Is(err, errs.ErrReasoningEmpty) || errors.Is(err, errs.ErrBackendUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, err)
	}
	return answer, nil
}
