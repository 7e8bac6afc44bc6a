package cluster

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Order matters: timestamps and addresses must be masked before bare numbers.
var rules = []rule{
	{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "<UUID>"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`), "<TIMESTAMP>"},
	{regexp.MustCompile(`\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4}`), "<TIMESTAMP>"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?\b`), "<IP>"},
	{regexp.MustCompile(`\b[0-9a-fA-F]{24,}\b`), "<HEX>"},
	{regexp.MustCompile(`/[\w./-]+(:\d+)?`), "<PATH>"},
	{regexp.MustCompile(`\b\d+(\.\d+)?\b`), "<NUM>"},
}

// Template masks the variable parts of a log message so that lines produced
// by the same statement compare equal.
func Template(msg string) string {
	for _, r := range rules {
		msg = r.pattern.ReplaceAllString(msg, r.placeholder)
	}
	return msg
}
