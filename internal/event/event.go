package event

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	SourceUpload  = "upload"
	SourceDatadog = "datadog"
)

// LogEvent is one ingested line. The field tags double as the index mapping,
// see index.Mapping.
type LogEvent struct {
	Timestamp time.Time `json:"@timestamp" jsonschema_extras:"mapping=date"`
	Message   string    `json:"message" jsonschema_extras:"mapping=text"`
	Source    string    `json:"source" jsonschema_extras:"mapping=keyword"`
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func Now() time.Time {
	return time.Now().UTC()
}

// Normalize turns raw uploaded bytes into one event per non-blank line.
// Lines end at \n, \r\n or a lone \r. Invalid UTF-8 is replaced, never
// rejected. Every event shares ts.
func Normalize(raw []byte, source string, ts time.Time) []LogEvent {
	content := Decode(raw)
	if content == "" {
		return nil
	}

	var events []LogEvent
	for _, line := range strings.Split(lineBreaks.Replace(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, LogEvent{
			Timestamp: ts,
			Message:   line,
			Source:    source,
		})
	}
	return events
}

// Decode converts raw bytes to a string, substituting U+FFFD for every
// malformed sequence.
func Decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// FromLines builds events from lines that were already split, e.g. messages
// pulled from another log platform. Blank lines are dropped and multi-line
// messages are kept as a single event.
func FromLines(lines []string, source string, ts time.Time) []LogEvent {
	var events []LogEvent
	for _, line := range lines {
		line = strings.TrimRight(strings.ToValidUTF8(line, string(utf8.RuneError)), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, LogEvent{Timestamp: ts, Message: line, Source: source})
	}
	return events
}

// Record is a LogEvent as read back from the index. The timestamp is kept as
// the stored text so that it renders exactly as indexed. Documents written by
// other clients may carry epoch millis, which render as the bare number.
type Record struct {
	Timestamp string `json:"@timestamp"`
	Message   string `json:"message"`
	Source    string `json:"source"`
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var doc struct {
		Timestamp json.RawMessage `json:"@timestamp"`
		Message   string          `json:"message"`
		Source    string          `json:"source"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.Message = doc.Message
	r.Source = doc.Source
	r.Timestamp = ""
	ts := bytes.TrimSpace(doc.Timestamp)
	switch {
	case len(ts) == 0 || bytes.Equal(ts, []byte("null")):
	case ts[0] == '"':
		if err := json.Unmarshal(ts, &r.Timestamp); err != nil {
			return err
		}
	default:
		r.Timestamp = string(ts)
	}
	return nil
}
