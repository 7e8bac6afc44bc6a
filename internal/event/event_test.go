package event

import (
	"encoding/json"
	"testing"
	"time"
	"unicode/utf8"
)

var fixedTime = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func TestNormalize_SkipsBlankLines(t *testing.T) {
	events := Normalize([]byte("line1\n\nline2\n"), SourceUpload, fixedTime)
	if len(events) != 2 {
		t.Fatalf("event count: got %d, want 2", len(events))
	}
	if events[0].Message != "line1" || events[1].Message != "line2" {
		t.Errorf("messages: got %q, %q", events[0].Message, events[1].Message)
	}
}

func TestNormalize_WhitespaceOnlyLines(t *testing.T) {
	events := Normalize([]byte("  \n\t\nreal line\n \r\n"), SourceUpload, fixedTime)
	if len(events) != 1 {
		t.Fatalf("event count: got %d, want 1", len(events))
	}
	if events[0].Message != "real line" {
		t.Errorf("message: got %q, want %q", events[0].Message, "real line")
	}
}

func TestNormalize_PreservesOrderAndContent(t *testing.T) {
	input := "b second\n  a indented\nc third"
	events := Normalize([]byte(input), SourceUpload, fixedTime)
	want := []string{"b second", "  a indented", "c third"}
	if len(events) != len(want) {
		t.Fatalf("event count: got %d, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].Message != w {
			t.Errorf("event %d: got %q, want %q", i, events[i].Message, w)
		}
	}
}

func TestNormalize_StripsCRLF(t *testing.T) {
	events := Normalize([]byte("first\r\nsecond\r\n"), SourceUpload, fixedTime)
	if len(events) != 2 {
		t.Fatalf("event count: got %d, want 2", len(events))
	}
	if events[0].Message != "first" || events[1].Message != "second" {
		t.Errorf("messages: got %q, %q", events[0].Message, events[1].Message)
	}
}

func TestNormalize_CarriageReturnOnly(t *testing.T) {
	events := Normalize([]byte("line1\rline2\r\rline3\r"), SourceUpload, fixedTime)
	want := []string{"line1", "line2", "line3"}
	if len(events) != len(want) {
		t.Fatalf("event count: got %d, want %d", len(events), len(want))
	}
	for i, w := range want {
		if events[i].Message != w {
			t.Errorf("event %d: got %q, want %q", i, events[i].Message, w)
		}
	}
}

func TestNormalize_MixedLineEndings(t *testing.T) {
	events := Normalize([]byte("a\r\nb\rc\nd"), SourceUpload, fixedTime)
	if len(events) != 4 {
		t.Fatalf("event count: got %d, want 4", len(events))
	}
	if events[3].Message != "d" {
		t.Errorf("last message: got %q, want %q", events[3].Message, "d")
	}
}

func TestNormalize_SharedTimestampAndSource(t *testing.T) {
	events := Normalize([]byte("a\nb\nc\n"), SourceUpload, fixedTime)
	for i, e := range events {
		if !e.Timestamp.Equal(fixedTime) {
			t.Errorf("event %d timestamp: got %v, want %v", i, e.Timestamp, fixedTime)
		}
		if e.Source != SourceUpload {
			t.Errorf("event %d source: got %q, want %q", i, e.Source, SourceUpload)
		}
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	if events := Normalize(nil, SourceUpload, fixedTime); len(events) != 0 {
		t.Errorf("nil input: got %d events, want 0", len(events))
	}
	if events := Normalize([]byte("\n\n  \n"), SourceUpload, fixedTime); len(events) != 0 {
		t.Errorf("blank input: got %d events, want 0", len(events))
	}
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	raw := []byte("bad \xff\xfe bytes\nok\n")
	events := Normalize(raw, SourceUpload, fixedTime)
	if len(events) != 2 {
		t.Fatalf("event count: got %d, want 2", len(events))
	}
	if !utf8.ValidString(events[0].Message) {
		t.Errorf("message should be valid UTF-8: %q", events[0].Message)
	}
	if events[0].Message != "bad � bytes" {
		t.Errorf("message: got %q", events[0].Message)
	}
}

func TestNormalize_InvalidBytesOnlyLine(t *testing.T) {
	events := Normalize([]byte("\xff\n"), SourceUpload, fixedTime)
	if len(events) != 1 {
		t.Fatalf("event count: got %d, want 1", len(events))
	}
}

func TestFromLines(t *testing.T) {
	events := FromLines([]string{"one\n", "", "   ", "two\nwith detail"}, SourceDatadog, fixedTime)
	if len(events) != 2 {
		t.Fatalf("event count: got %d, want 2", len(events))
	}
	if events[0].Message != "one" {
		t.Errorf("first message: got %q", events[0].Message)
	}
	if events[1].Message != "two\nwith detail" {
		t.Errorf("second message: got %q", events[1].Message)
	}
	if events[1].Source != SourceDatadog {
		t.Errorf("source: got %q", events[1].Source)
	}
}

func TestNow_IsUTC(t *testing.T) {
	if loc := Now().Location(); loc != time.UTC {
		t.Errorf("location: got %v, want UTC", loc)
	}
}

func TestRecord_StringTimestamp(t *testing.T) {
	var r Record
	doc := `{"@timestamp":"2025-03-14T10:00:00Z","message":"line1","source":"upload"}`
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Timestamp != "2025-03-14T10:00:00Z" || r.Message != "line1" || r.Source != SourceUpload {
		t.Errorf("record: got %+v", r)
	}
}

func TestRecord_EpochMillisTimestamp(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"@timestamp":1741946400000,"message":"line1"}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Timestamp != "1741946400000" {
		t.Errorf("timestamp: got %q, want %q", r.Timestamp, "1741946400000")
	}
	if r.Message != "line1" {
		t.Errorf("message: got %q, want %q", r.Message, "line1")
	}
}

func TestRecord_MissingTimestamp(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"message":"line1"}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.Timestamp != "" {
		t.Errorf("timestamp: got %q, want empty", r.Timestamp)
	}
}

func TestRecord_NotAnObject(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`"not an object"`), &r); err == nil {
		t.Error("expected an error for a non-object document")
	}
}
