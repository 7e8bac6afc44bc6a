package index

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/ricardonunez-io/logcopilot/internal/event"
)

const Prefix = "logs-"

var (
	ErrInvalidCategory = errors.New("category has no usable characters")
	ErrInvalidName     = errors.New("not a log index name")
)

// Name derives the index for a log category. Characters outside [a-z0-9-]
// collapse into a single hyphen so that user input can never address another
// index or an illegal name.
func Name(category string) (string, error) {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(category) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return Prefix + b.String(), nil
}

// Validate accepts only names Name could have produced.
func Validate(name string) error {
	rest, ok := strings.CutPrefix(name, Prefix)
	if !ok || rest == "" || rest[0] == '-' || rest[len(rest)-1] == '-' {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, r := range rest {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}

var (
	mappingOnce sync.Once
	properties  map[string]any
)

// Mapping returns the create-index body for every log index. Field types come
// from the "mapping" extra on the event.LogEvent struct tags.
func Mapping() map[string]any {
	mappingOnce.Do(func() {
		properties = reflectProperties(&event.LogEvent{})
	})

	props := make(map[string]any, len(properties))
	for k, v := range properties {
		props[k] = v
	}
	return map[string]any{
		"mappings": map[string]any{
			"properties": props,
		},
	}
}

func reflectProperties(v any) map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	s := r.Reflect(v)

	props := make(map[string]any)
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		fieldType, ok := pair.Value.Extras["mapping"].(string)
		if !ok {
			fieldType = defaultFieldType(pair.Value)
		}
		props[pair.Key] = map[string]any{"type": fieldType}
	}
	return props
}

func defaultFieldType(s *jsonschema.Schema) string {
	switch {
	case s.Format == "date-time":
		return "date"
	case s.Type == "integer":
		return "long"
	case s.Type == "number":
		return "double"
	case s.Type == "boolean":
		return "boolean"
	default:
		return "keyword"
	}
}
