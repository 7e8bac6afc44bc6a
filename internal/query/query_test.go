package query

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/store/storetest"
)

func TestBuild_Body(t *testing.T) {
	got := Build("status:500", 50)
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"query":{"query_string":{"query":"status:500"}},"size":50,"sort":[{"@timestamp":{"order":"desc"}}]}`
	if string(data) != want {
		t.Errorf("body:\ngot  %s\nwant %s", data, want)
	}
}

func TestBuild_Defaults(t *testing.T) {
	got := Build("", 0)
	q := got["query"].(map[string]any)["query_string"].(map[string]any)["query"]
	if q != MatchAll {
		t.Errorf("default filter: got %v, want %q", q, MatchAll)
	}
	if got["size"] != DefaultLimit {
		t.Errorf("default size: got %v, want %d", got["size"], DefaultLimit)
	}

	if q := Build("   ", -3)["query"].(map[string]any)["query_string"].(map[string]any)["query"]; q != MatchAll {
		t.Errorf("blank filter: got %v, want %q", q, MatchAll)
	}
}

func TestSearch_PreservesBackendOrder(t *testing.T) {
	fake := storetest.New()
	fake.Hits = []json.RawMessage{
		storetest.Doc("10:01", "line2"),
		storetest.Doc("10:00", "line1"),
		storetest.Doc("09:59", "line0"),
	}

	records, err := NewSearcher(fake).Search(context.Background(), "logs-nginx", "*", 200)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var got []string
	for _, r := range records {
		got = append(got, r.Timestamp+" "+r.Message)
	}
	want := []string{"10:01 line2", "10:00 line1", "09:59 line0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order: got %v, want %v", got, want)
	}

	if len(fake.Searches) != 1 {
		t.Fatalf("search calls: got %d, want 1", len(fake.Searches))
	}
	call := fake.Searches[0]
	if call.Index != "logs-nginx" {
		t.Errorf("index: got %q", call.Index)
	}
	if !reflect.DeepEqual(call.Body, Build("*", 200)) {
		t.Errorf("body: got %v", call.Body)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	fake := storetest.New()

	_, err := NewSearcher(fake).Search(context.Background(), "logs-nginx", "nothing", 10)
	if !errors.Is(err, errs.ErrNoMatch) {
		t.Errorf("got %v, want ErrNoMatch", err)
	}
}

func TestSearch_SkipsUndecodableDocuments(t *testing.T) {
	fake := storetest.New()
	fake.Hits = []json.RawMessage{
		json.RawMessage(`"not an object"`),
		storetest.Doc("10:00", "line1"),
	}

	records, err := NewSearcher(fake).Search(context.Background(), "logs-nginx", "*", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Message != "line1" {
		t.Errorf("records: got %+v", records)
	}
}

func TestSearch_EpochMillisTimestamp(t *testing.T) {
	fake := storetest.New()
	fake.Hits = []json.RawMessage{
		json.RawMessage(`{"@timestamp":1741946400000,"message":"from another writer"}`),
	}

	records, err := NewSearcher(fake).Search(context.Background(), "logs-nginx", "*", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Timestamp != "1741946400000" {
		t.Errorf("records: got %+v", records)
	}
}

func TestSearch_BackendUnavailable(t *testing.T) {
	fake := storetest.New()
	fake.Err = errors.New("connection reset")

	_, err := NewSearcher(fake).Search(context.Background(), "logs-nginx", "*", 10)
	if !errors.Is(err, errs.ErrBackendUnavailable) {
		t.Errorf("got %v, want ErrBackendUnavailable", err)
	}
}
