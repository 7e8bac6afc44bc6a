package copilot

import (
	"context"
	"strings"

	"github.com/ricardonunez-io/logcopilot/internal/analyzer"
	"github.com/ricardonunez-io/logcopilot/internal/bulk"
	"github.com/ricardonunez-io/logcopilot/internal/cluster"
	"github.com/ricardonunez-io/logcopilot/internal/event"
	"github.com/ricardonunez-io/logcopilot/internal/index"
	"github.com/ricardonunez-io/logcopilot/internal/query"
	"github.com/ricardonunez-io/logcopilot/internal/store"
	"github.com/rs/zerolog/log"
)

const DefaultCategory = "generic"

type IngestRequest struct {
	Content     []byte
	Category    string
	Description string
	Source      string
}

type IngestResult struct {
	Index   string `json:"index"`
	Indexed int    `json:"indexed_docs"`
}

type AnalysisRequest struct {
	Index       string
	Filter      string
	Limit       int
	Category    string
	Description string
}

type AnalysisResult struct {
	Index    string          `json:"index"`
	Filter   string          `json:"query"`
	HitsUsed int             `json:"hits_used"`
	Analysis string          `json:"analysis"`
	Patterns []cluster.Group `json:"patterns"`
}

// Notifier is told about every completed analysis. Failures are logged only.
type Notifier interface {
	Notify(ctx context.Context, result AnalysisResult) error
}

// Service ties the pipeline together. It holds no per-request state and is
// safe for concurrent use as long as its collaborators are.
type Service struct {
	provisioner *index.Provisioner
	writer      *bulk.Writer
	searcher    *query.Searcher
	analyzer    *analyzer.Analyzer
	notifier    Notifier
}

func New(s store.Store, r analyzer.Reasoner, n Notifier) *Service {
	return &Service{
		provisioner: index.NewProvisioner(s),
		writer:      bulk.NewWriter(s),
		searcher:    query.NewSearcher(s),
		analyzer:    analyzer.New(r),
		notifier:    n,
	}
}

// Ingest stores every non-blank line of req.Content in the index derived
// from req.Category.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	category := orDefault(req.Category, DefaultCategory)
	source := orDefault(req.Source, event.SourceUpload)

	name, err := index.Name(category)
	if err != nil {
		return IngestResult{}, err
	}

	if err := s.provisioner.Ensure(ctx, name); err != nil {
		return IngestResult{}, err
	}

	events := event.Normalize(req.Content, source, event.Now())
	return s.write(ctx, name, events)
}

// IngestLines is Ingest for sources that already deliver one message per
// entry.
func (s *Service) IngestLines(ctx context.Context, lines []string, category, source string) (IngestResult, error) {
	name, err := index.Name(orDefault(category, DefaultCategory))
	if err != nil {
		return IngestResult{}, err
	}

	if err := s.provisioner.Ensure(ctx, name); err != nil {
		return IngestResult{}, err
	}

	events := event.FromLines(lines, orDefault(source, event.SourceUpload), event.Now())
	return s.write(ctx, name, events)
}

func (s *Service) write(ctx context.Context, name string, events []event.LogEvent) (IngestResult, error) {
	indexed, err := s.writer.Write(ctx, name, events)
	if err != nil {
		return IngestResult{}, err
	}

	log.Info().
		Str("index", name).
		Int("events", len(events)).
		Int("indexed", indexed).
		Msg("Ingestion completed")

	return IngestResult{Index: name, Indexed: indexed}, nil
}

// Analyze retrieves the most recent matching lines of req.Index and asks the
// reasoning service about them. A search without hits returns errs.ErrNoMatch
// before the reasoning service is contacted.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	filter := orDefault(req.Filter, query.MatchAll)
	limit := req.Limit
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	category := orDefault(req.Category, DefaultCategory)

	if err := index.Validate(req.Index); err != nil {
		return AnalysisResult{}, err
	}
	if err := s.provisioner.Ensure(ctx, req.Index); err != nil {
		return AnalysisResult{}, err
	}

	records, err := s.searcher.Search(ctx, req.Index, filter, limit)
	if err != nil {
		return AnalysisResult{}, err
	}

	answer, err := s.analyzer.Analyze(ctx, records, category, req.Description)
	if err != nil {
		return AnalysisResult{}, err
	}

	result := AnalysisResult{
		Index:    req.Index,
		Filter:   filter,
		HitsUsed: len(records),
		Analysis: answer,
		Patterns: cluster.Patterns(records, cluster.DefaultTopGroups),
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, result); err != nil {
			log.Err(err).Str("index", req.Index).Msg("Failed to send analysis notification")
		}
	}

	return result, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
