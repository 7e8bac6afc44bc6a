// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/ricardonunez-io/logcopilot/internal/store"
)

type SearchCall struct {
	Index string
	Body  map[string]any
}

// Fake records every call. Bulk reports one item per action line of the
// payload; Search returns Hits unchanged.
type Fake struct {
	mu sync.Mutex

	Indices      map[string]bool
	Created      []string
	Mappings     map[string]map[string]any
	ExistsCalls  int
	BulkPayloads [][]byte
	Searches     []SearchCall
	Hits         []json.RawMessage

	// CreateRace makes CreateIndex report that another writer won.
	CreateRace bool
	Err        error
}

func New() *Fake {
	return &Fake{
		Indices:  make(map[string]bool),
		Mappings: make(map[string]map[string]any),
	}
}

func (f *Fake) IndexExists(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExistsCalls++
	if f.Err != nil {
		return false, f.Err
	}
	return f.Indices[name], nil
}

func (f *Fake) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if f.CreateRace {
		f.Indices[name] = true
		return store.ErrIndexExists
	}
	f.Created = append(f.Created, name)
	f.Mappings[name] = body
	f.Indices[name] = true
	return nil
}

func (f *Fake) Bulk(ctx context.Context, payload []byte) (store.BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return store.BulkResult{}, f.Err
	}
	f.BulkPayloads = append(f.BulkPayloads, payload)
	lines := bytes.Count(payload, []byte("\n"))
	return store.BulkResult{Items: lines / 2}, nil
}

func (f *Fake) Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, SearchCall{Index: index, Body: body})
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Hits, nil
}

// Doc renders a stored document the way the backend returns it in _source.
func Doc(timestamp, message string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{
		"@timestamp": timestamp,
		"message":    message,
		"source":     "upload",
	})
	return data
}
