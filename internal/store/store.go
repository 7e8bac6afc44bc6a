package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrIndexExists is returned by CreateIndex when another writer created the
// index first.
var ErrIndexExists = errors.New("index already exists")

// Store is the subset of a document-search backend the pipeline relies on.
// Implementations must be safe for concurrent use.
type Store interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, body map[string]any) error
	Bulk(ctx context.Context, payload []byte) (BulkResult, error)
	Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, error)
}

// BulkResult summarises a bulk response. Items is what the backend reports as
// processed, Failed how many of those items carry an error.
type BulkResult struct {
	Items  int
	Failed int
}

type bulkResponse struct {
	Errors bool                                `json:"errors"`
	Items  []map[string]bulkResponseItemResult `json:"items"`
}

type bulkResponseItemResult struct {
	Status int             `json:"status"`
	Error  json.RawMessage `json:"error,omitempty"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

func parseBulkResponse(data []byte) (BulkResult, error) {
	var resp bulkResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return BulkResult{}, err
	}
	result := BulkResult{Items: len(resp.Items)}
	for _, item := range resp.Items {
		for _, r := range item {
			if len(r.Error) > 0 && string(r.Error) != "null" {
				result.Failed++
			}
		}
	}
	return result, nil
}

func parseSearchResponse(data []byte) ([]json.RawMessage, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	sources := make([]json.RawMessage, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		sources = append(sources, h.Source)
	}
	return sources, nil
}
