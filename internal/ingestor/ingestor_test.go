package ingestor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ricardonunez-io/logcopilot/internal/copilot"
	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/store/storetest"
)

type noReasoner struct{}

func (noReasoner) Complete(ctx context.Context, system, prompt string) (string, error) {
	return "", errors.New("unused")
}

type fakeSource struct {
	query    string
	tr       TimeRange
	messages []string
	err      error
}

func (f *fakeSource) Messages(ctx context.Context, query string, tr TimeRange) ([]string, error) {
	f.query = query
	f.tr = tr
	return f.messages, f.err
}

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func TestParseInterval(t *testing.T) {
	if d, ok := ParseInterval("one_hour"); !ok || d != time.Hour {
		t.Errorf("one_hour: got %v, %v", d, ok)
	}
	if d, ok := ParseInterval(" FIFTEEN_MINUTES "); !ok || d != 15*time.Minute {
		t.Errorf("FIFTEEN_MINUTES: got %v, %v", d, ok)
	}
	if _, ok := ParseInterval("FOREVER"); ok {
		t.Error("unknown interval should not parse")
	}
}

func TestIntervalNames_Sorted(t *testing.T) {
	names := IntervalNames()
	if names[0] != "ONE_MINUTE" || names[len(names)-1] != "ONE_WEEK" {
		t.Errorf("names: got %v", names)
	}
}

func TestLastWindow(t *testing.T) {
	tr := LastWindow(now, time.Hour)
	if !tr.To.Equal(now) || !tr.From.Equal(now.Add(-time.Hour)) {
		t.Errorf("window: got %v - %v", tr.From, tr.To)
	}
}

func TestPull_IngestsMessages(t *testing.T) {
	fake := storetest.New()
	svc := copilot.New(fake, noReasoner{}, nil)
	src := &fakeSource{messages: []string{"GET /health 200", "", "GET /api 502"}}

	res, err := Pull(context.Background(), src, svc, PullRequest{Query: "service:web", Interval: "ONE_HOUR", Category: "web"}, now)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if res.Index != "logs-web" || res.Indexed != 2 {
		t.Errorf("result: got %+v", res)
	}
	if src.query != "service:web" {
		t.Errorf("query: got %q", src.query)
	}
	if !src.tr.From.Equal(now.Add(-time.Hour)) {
		t.Errorf("from: got %v", src.tr.From)
	}
	if !strings.Contains(string(fake.BulkPayloads[0]), `"source":"datadog"`) {
		t.Error("pulled events should be tagged datadog")
	}
}

func TestPull_Defaults(t *testing.T) {
	src := &fakeSource{}
	svc := copilot.New(storetest.New(), noReasoner{}, nil)

	res, err := Pull(context.Background(), src, svc, PullRequest{}, now)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if src.query != "*" {
		t.Errorf("query: got %q, want *", src.query)
	}
	if !src.tr.From.Equal(now.Add(-15 * time.Minute)) {
		t.Errorf("default window: got %v", src.tr.From)
	}
	if res.Index != "logs-generic" || res.Indexed != 0 {
		t.Errorf("result: got %+v", res)
	}
}

func TestPull_InvalidInterval(t *testing.T) {
	src := &fakeSource{}
	_, err := Pull(context.Background(), src, copilot.New(storetest.New(), noReasoner{}, nil), PullRequest{Interval: "FOREVER"}, now)
	if err == nil {
		t.Fatal("expected error")
	}
	if src.query != "" {
		t.Error("source should not be queried")
	}
}

func TestPull_SourceError(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: boom", errs.ErrBackendUnavailable)}
	_, err := Pull(context.Background(), src, copilot.New(storetest.New(), noReasoner{}, nil), PullRequest{}, now)
	if !errors.Is(err, errs.ErrBackendUnavailable) {
		t.Errorf("got %v, want ErrBackendUnavailable", err)
	}
}

func TestDataDog_FollowsCursor(t *testing.T) {
	var mu sync.Mutex
	var cursors []string
	var apiKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		cursors = append(cursors, r.URL.Query().Get("page[cursor]"))
		apiKeys = append(apiKeys, r.Header.Get("DD-API-KEY"))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page[cursor]") == "" {
			io.WriteString(w, `{"data":[
				{"id":"1","type":"log","attributes":{"message":"first"}},
				{"id":"2","type":"log","attributes":{}}
			],"meta":{"page":{"after":"next-page"}}}`)
			return
		}
		io.WriteString(w, `{"data":[{"id":"3","type":"log","attributes":{"message":"second"}}],"meta":{}}`)
	}))
	defer srv.Close()

	dd := NewDataDog(DataDogConfig{APIKey: "api", AppKey: "app"}).withServer(srv.URL)
	messages, err := dd.Messages(context.Background(), "service:web", LastWindow(now, time.Hour))
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
		t.Errorf("messages: got %v", messages)
	}
	if len(cursors) != 2 || cursors[1] != "next-page" {
		t.Errorf("cursors: got %v", cursors)
	}
	if apiKeys[0] != "api" {
		t.Errorf("api key header: got %q", apiKeys[0])
	}
}

func TestDataDog_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"errors":["Forbidden"]}`)
	}))
	defer srv.Close()

	dd := NewDataDog(DataDogConfig{APIKey: "bad", AppKey: "bad"}).withServer(srv.URL)
	_, err := dd.Messages(context.Background(), "*", LastWindow(now, time.Hour))
	if !errors.Is(err, errs.ErrBackendUnavailable) {
		t.Errorf("got %v, want ErrBackendUnavailable", err)
	}
}
