package store

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/rs/zerolog/log"
)

type OpenSearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Insecure  bool
}

// OpenSearch implements Store on top of a single shared opensearch client.
type OpenSearch struct {
	client *opensearch.Client
}

func NewOpenSearch(cfg OpenSearchConfig) (*OpenSearch, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure},
		},
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}
	return &OpenSearch{client: client}, nil
}

func (s *OpenSearch) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: index exists %s: %w", errs.ErrBackendUnavailable, name, err)
	}
	defer closeBody(res)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: index exists %s: %s", errs.ErrBackendUnavailable, name, res.Status())
	}
}

func (s *OpenSearch) CreateIndex(ctx context.Context, name string, body map[string]any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal index body: %w", err)
	}

	res, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithBody(bytes.NewReader(data)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: create index %s: %w", errs.ErrBackendUnavailable, name, err)
	}
	defer closeBody(res)

	if res.IsError() {
		e := decodeError(res)
		if e.Error.Type == "resource_already_exists_exception" {
			return ErrIndexExists
		}
		return fmt.Errorf("%w: create index %s: %s %s", errs.ErrBackendUnavailable, name, res.Status(), e.Error.Reason)
	}

	log.Info().Str("index", name).Msg("Created index")
	return nil
}

func (s *OpenSearch) Bulk(ctx context.Context, payload []byte) (BulkResult, error) {
	res, err := s.client.Bulk(
		bytes.NewReader(payload),
		s.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return BulkResult{}, fmt.Errorf("%w: bulk: %w", errs.ErrBackendUnavailable, err)
	}
	defer closeBody(res)

	if res.IsError() {
		e := decodeError(res)
		return BulkResult{}, fmt.Errorf("%w: bulk: %s %s", errs.ErrBackendUnavailable, res.Status(), e.Error.Reason)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return BulkResult{}, fmt.Errorf("%w: bulk: reading response: %w", errs.ErrBackendUnavailable, err)
	}
	result, err := parseBulkResponse(data)
	if err != nil {
		return BulkResult{}, fmt.Errorf("%w: bulk: decoding response: %w", errs.ErrBackendUnavailable, err)
	}
	return result, nil
}

func (s *OpenSearch) Search(ctx context.Context, index string, body map[string]any) ([]json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", errs.ErrBackendUnavailable, index, err)
	}
	defer closeBody(res)

	if res.IsError() {
		e := decodeError(res)
		return nil, fmt.Errorf("%w: search %s: %s %s", errs.ErrBackendUnavailable, index, res.Status(), e.Error.Reason)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: reading response: %w", errs.ErrBackendUnavailable, index, err)
	}
	sources, err := parseSearchResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: decoding response: %w", errs.ErrBackendUnavailable, index, err)
	}
	return sources, nil
}

func decodeError(res *opensearchapi.Response) errorResponse {
	var e errorResponse
	if res.Body != nil {
		_ = json.NewDecoder(res.Body).Decode(&e)
	}
	return e
}

func closeBody(res *opensearchapi.Response) {
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
}
