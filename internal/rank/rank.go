// Package rank orders deduplicated article groups for the digest.
package rank

import (
	"sort"
	"strings"

	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
)

// Score rates a group by coverage and trust: one point per member plus
// two per member from a trusted source.
func Score(group dedup.Group, trusted map[string]bool) int {
	s := len(group)
	for _, a := range group {
		if trusted[a.SourceName] {
			s += 2
		}
	}
	return s
}

// Rank sorts groups by descending score. Ties may land in any order.
func Rank(groups []dedup.Group, trusted map[string]bool) []dedup.Group {
	sort.Slice(groups, func(i, j int) bool {
		return Score(groups[i], trusted) > Score(groups[j], trusted)
	})
	return groups
}

// FilterByInterests keeps only the groups whose combined title+summary
// text contains at least one keyword, case-insensitively.
func FilterByInterests(groups []dedup.Group, keywords []string) []dedup.Group {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	var filtered []dedup.Group
	for _, group := range groups {
		var b strings.Builder
		for _, a := range group {
			b.WriteString(strings.ToLower(a.Title + " " + a.Summary))
			b.WriteString(" ")
		}
		text := b.String()
		for _, kw := range lowered {
			if strings.Contains(text, kw) {
				filtered = append(filtered, group)
				break
			}
		}
	}
	return filtered
}
