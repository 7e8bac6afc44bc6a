package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/event"
	"github.com/ricardonunez-io/logcopilot/internal/store"
	"github.com/rs/zerolog/log"
)

const (
	MatchAll     = "*"
	DefaultLimit = 200
)

// Build returns a search body that applies filter as a query_string query,
// caps the result at limit documents and sorts newest first.
func Build(filter string, limit int) map[string]any {
	if strings.TrimSpace(filter) == "" {
		filter = MatchAll
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return map[string]any{
		"query": map[string]any{
			"query_string": map[string]any{
				"query": filter,
			},
		},
		"size": limit,
		"sort": []any{
			map[string]any{
				"@timestamp": map[string]any{"order": "desc"},
			},
		},
	}
}

type Searcher struct {
	store store.Store
}

func NewSearcher(s store.Store) *Searcher {
	return &Searcher{store: s}
}

// Search returns the most recent records of index matching filter, in the
// order the backend ranked them. An empty result is errs.ErrNoMatch.
func (s *Searcher) Search(ctx context.Context, index, filter string, limit int) ([]event.Record, error) {
	body := Build(filter, limit)

	sources, err := s.store.Search(ctx, index, body)
	if err != nil {
		if errors.Is(err, errs.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, err)
	}

	if len(sources) == 0 {
		log.Info().Str("index", index).Str("query", filter).Msg("Search matched no logs")
		return nil, errs.ErrNoMatch
	}

	records := make([]event.Record, 0, len(sources))
	for _, src := range sources {
		var r event.Record
		if err := json.Unmarshal(src, &r); err != nil {
			log.Warn().Err(err).Str("index", index).Msg("Skipping undecodable document")
			continue
		}
		records = append(records, r)
	}

	if len(records) == 0 {
		return nil, errs.ErrNoMatch
	}

	log.Info().
		Str("index", index).
		Str("query", filter).
		Int("hits", len(records)).
		Msg("Search completed")

	return records, nil
}
