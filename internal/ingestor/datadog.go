package ingestor

import (
	"context"
	"fmt"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxLogs = 5000
	pageLimit      = 1000
)

type DataDogConfig struct {
	APIKey string
	AppKey string
	Site   string
	// MaxLogs caps one pull. Zero means defaultMaxLogs.
	MaxLogs int
}

type DataDog struct {
	client *datadog.APIClient
	cfg    DataDogConfig
}

func NewDataDog(cfg DataDogConfig) *DataDog {
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = defaultMaxLogs
	}
	return &DataDog{
		client: datadog.NewAPIClient(datadog.NewConfiguration()),
		cfg:    cfg,
	}
}

// withServer points the client at a different API host. Used by tests.
func (d *DataDog) withServer(url string) *DataDog {
	cfg := d.client.GetConfig()
	cfg.Servers = datadog.ServerConfigurations{{URL: url}}
	return d
}

func (d *DataDog) authContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: d.cfg.APIKey},
		"appKeyAuth": {Key: d.cfg.AppKey},
	})
	if d.cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": d.cfg.Site,
		})
	}
	return ctx
}

// Messages returns the messages of the logs matching query within tr, oldest
// first, following pagination cursors until MaxLogs is reached.
func (d *DataDog) Messages(ctx context.Context, query string, tr TimeRange) ([]string, error) {
	api := datadogV2.NewLogsApi(d.client)
	ctx = d.authContext(ctx)

	log.Info().
		Str("query", query).
		Str("start", tr.From.String()).
		Str("end", tr.To.String()).
		Msg("Pulling logs from DataDog")

	var messages []string
	var cursor *string

	for len(messages) < d.cfg.MaxLogs {
		params := datadogV2.NewListLogsGetOptionalParameters()
		sort := datadogV2.LOGSSORT_TIMESTAMP_ASCENDING
		limit := int32(min(pageLimit, d.cfg.MaxLogs-len(messages)))
		from, to := tr.From, tr.To
		params.Sort = &sort
		params.FilterFrom = &from
		params.FilterTo = &to
		params.FilterQuery = &query
		params.PageLimit = &limit
		if cursor != nil {
			params.PageCursor = cursor
		}

		resp, _, err := api.ListLogsGet(ctx, *params)
		if err != nil {
			log.Err(err).Msg("Error when calling LogsApi.ListLogsGet")
			return nil, fmt.Errorf("%w: datadog list logs: %w", errs.ErrBackendUnavailable, err)
		}

		for _, l := range resp.Data {
			if l.Attributes == nil || l.Attributes.Message == nil {
				continue
			}
			messages = append(messages, *l.Attributes.Message)
		}

		if resp.Meta == nil || resp.Meta.Page == nil || resp.Meta.Page.After == nil || *resp.Meta.Page.After == "" {
			break
		}
		after := *resp.Meta.Page.After
		cursor = &after
	}

	if len(messages) > d.cfg.MaxLogs {
		messages = messages[:d.cfg.MaxLogs]
	}

	log.Info().
		Int("logCount", len(messages)).
		Msg("Successfully retrieved logs from DataDog")

	return messages, nil
}
