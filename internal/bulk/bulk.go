package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/event"
	"github.com/ricardonunez-io/logcopilot/internal/store"
	"github.com/rs/zerolog/log"
)

type action struct {
	Index actionTarget `json:"index"`
}

type actionTarget struct {
	Index string `json:"_index"`
}

// Encode renders events as a newline-delimited bulk body: one index action
// line followed by one document line per event. The body ends with a newline.
func Encode(index string, events []event.LogEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	meta := action{Index: actionTarget{Index: index}}
	for _, e := range events {
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("failed to encode bulk document: %w", err)
		}
	}
	return buf.Bytes(), nil
}

type Writer struct {
	store store.Store
}

func NewWriter(s store.Store) *Writer {
	return &Writer{store: s}
}

// Write submits events to index in a single bulk request and returns the
// number of items the backend reports as processed. No events means no
// request.
func (w *Writer) Write(ctx context.Context, index string, events []event.LogEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	payload, err := Encode(index, events)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, err)
	}

	result, err := w.store.Bulk(ctx, payload)
	if err != nil {
		if errors.Is(err, errs.ErrBackendUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, err)
	}

	if result.Failed > 0 {
		log.Warn().
			Str("index", index).
			Int("items", result.Items).
			Int("failed", result.Failed).
			Msg("Bulk request reported item failures")
	}

	log.Info().
		Str("index", index).
		Int("events", len(events)).
		Int("items", result.Items).
		Msg("Bulk write completed")

	return result.Items, nil
}
