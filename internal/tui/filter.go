package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyScore is the edit distance between query and the closest
// query-length window of text; 0 means a substring match.
func fuzzyScore(query, text string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(text)
	if q == "" || strings.Contains(t, q) {
		return 0
	}
	qr, tr := []rune(q), []rune(t)
	if len(tr) <= len(qr) {
		return levenshtein.ComputeDistance(q, t)
	}
	best := len(qr)
	for i := 0; i+len(qr) <= len(tr); i++ {
		if d := levenshtein.ComputeDistance(q, string(tr[i:i+len(qr)])); d < best {
			best = d
		}
	}
	return best
}

// maxTypos allows one typo per four query runes.
func maxTypos(query string) int {
	return len([]rune(strings.TrimSpace(query))) / 4
}

// filterRows keeps rows whose title or subtitle is within maxTypos of query,
// best matches first, ties in original order.
func filterRows(rows []row, query string) []row {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	limit := maxTypos(query)
	type scored struct {
		r     row
		score int
	}
	var kept []scored
	for _, r := range rows {
		s := min(fuzzyScore(query, r.title), fuzzyScore(query, r.subtitle))
		if s <= limit {
			kept = append(kept, scored{r: r, score: s})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score < kept[j].score })
	out := make([]row, len(kept))
	for i, k := range kept {
		out[i] = k.r
	}
	return out
}
