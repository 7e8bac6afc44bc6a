package ingestor

import (
	"context"
	"fmt"
	"time"

	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/ricardonunez-io/logcopilot/internal/event"
)

// Source lists log messages from an external log platform.
type Source interface {
	Messages(ctx context.Context, query string, tr TimeRange) ([]string, error)
}

type PullRequest struct {
	Query    string
	Interval string
	Category string
}

// Pull copies the messages of one look-back window into the category's index
// as a single ingestion batch.
func Pull(ctx context.Context, src Source, svc *copilot.Service, req PullRequest, now time.Time) (copilot.IngestResult, error) {
	interval := req.Interval
	if interval == "" {
		interval = DefaultInterval
	}
	d, ok := ParseInterval(interval)
	if !ok {
		return copilot.IngestResult{}, fmt.Errorf("invalid interval %q, expected one of %v", req.Interval, IntervalNames())
	}

	query := req.Query
	if query == "" {
		query = "*"
	}

	messages, err := src.Messages(ctx, query, LastWindow(now, d))
	if err != nil {
		return copilot.IngestResult{}, err
	}

	return svc.IngestLines(ctx, messages, req.Category, event.SourceDatadog)
}
