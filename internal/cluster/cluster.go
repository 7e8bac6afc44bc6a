package cluster

import (
	"sort"

	"github.com/ricardonunez-io/logcopilot/internal/event"
)

type Group struct {
	Template string   `json:"template"`
	Count    int      `json:"count"`
	Samples  []string `json:"samples"`
}

const (
	DefaultSimilarity = 0.85
	DefaultTopGroups  = 5
	maxSamples        = 3

	// Only the leading runes of each template are compared.
	maxCompareRunes = 256
)

// Patterns groups the messages of records by template and returns the n
// largest groups.
func Patterns(records []event.Record, n int) []Group {
	messages := make([]string, len(records))
	for i, r := range records {
		messages[i] = r.Message
	}
	groups := GroupMessages(messages, DefaultSimilarity)
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// GroupMessages buckets messages by exact template, then folds templates whose
// similarity is at least threshold into the earliest seen one. Groups are
// ordered by count, ties broken by first appearance.
func GroupMessages(messages []string, threshold float64) []Group {
	var groups []*Group
	byTemplate := make(map[string]*Group)

	for _, msg := range messages {
		tmpl := Template(msg)
		if g, ok := byTemplate[tmpl]; ok {
			g.add(msg, 1)
			continue
		}
		g := &Group{Template: tmpl}
		g.add(msg, 1)
		byTemplate[tmpl] = g
		groups = append(groups, g)
	}

	merged := make([]*Group, 0, len(groups))
	for _, g := range groups {
		target := findSimilar(merged, g.Template, threshold)
		if target == nil {
			merged = append(merged, g)
			continue
		}
		target.Count += g.Count
		for _, s := range g.Samples {
			target.add(s, 0)
		}
	}

	result := make([]Group, len(merged))
	for i, g := range merged {
		result[i] = *g
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

func (g *Group) add(sample string, count int) {
	g.Count += count
	if len(g.Samples) < maxSamples {
		g.Samples = append(g.Samples, sample)
	}
}

func findSimilar(groups []*Group, tmpl string, threshold float64) *Group {
	for _, g := range groups {
		if Similarity(g.Template, tmpl) >= threshold {
			return g
		}
	}
	return nil
}

// Similarity is 1 minus the normalised edit distance between the first
// maxCompareRunes runes of a and b.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := prefix(a), prefix(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

func prefix(s string) []rune {
	r := []rune(s)
	if len(r) > maxCompareRunes {
		r = r[:maxCompareRunes]
	}
	return r
}

func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(b)]
}
