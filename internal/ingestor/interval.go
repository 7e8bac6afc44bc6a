package ingestor

import (
	"sort"
	"strings"
	"time"
)

const DefaultInterval = "FIFTEEN_MINUTES"

var intervals = map[string]time.Duration{
	"ONE_MINUTE":      time.Minute,
	"FIVE_MINUTES":    5 * time.Minute,
	"TEN_MINUTES":     10 * time.Minute,
	"FIFTEEN_MINUTES": 15 * time.Minute,
	"THIRTY_MINUTES":  30 * time.Minute,
	"ONE_HOUR":        time.Hour,
	"SIX_HOURS":       6 * time.Hour,
	"TWELVE_HOURS":    12 * time.Hour,
	"ONE_DAY":         24 * time.Hour,
	"ONE_WEEK":        7 * 24 * time.Hour,
}

// ParseInterval resolves a named look-back window such as "one_hour".
func ParseInterval(name string) (time.Duration, bool) {
	d, ok := intervals[strings.ToUpper(strings.TrimSpace(name))]
	return d, ok
}

func IntervalNames() []string {
	names := make([]string, 0, len(intervals))
	for k := range intervals {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		return intervals[names[i]] < intervals[names[j]]
	})
	return names
}

type TimeRange struct {
	From time.Time
	To   time.Time
}

// LastWindow is the range ending at now and spanning d.
func LastWindow(now time.Time, d time.Duration) TimeRange {
	return TimeRange{From: now.Add(-d), To: now}
}
