// Package dedup groups articles that cover the same underlying story.
//
// Matching runs on three signals, checked in order: exact URL equality,
// shared CVE identifiers, and normalized title similarity. The grouping
// pass is anchor-based and deliberately not transitively closed: each
// candidate is compared against the group's anchor only, never against
// other members. If A~B and B~C but not A~C, C lands in its own group.
// This keeps group counts stable and predictable at the cost of the
// occasional split story.
package dedup

import (
	"regexp"
	"strings"

	"github.com/kai-kun-ai/security-news-digest/internal/feed"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the similarity ratio at or above which two
// normalized titles are considered the same story. Lowering it causes
// false merges; raising it causes false gap reports downstream.
const DefaultThreshold = 0.75

var cvePattern = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,7}`)

// sourceSuffixes are trailers aggregators append to titles. At most one
// is removed, first match in table order wins.
var sourceSuffixes = []string{
	" - The Hacker News",
	" - BleepingComputer",
	" - SecurityWeek",
	" - Dark Reading",
	" - Krebs on Security",
	" - GBHackers on Security",
	" - Ars Technica",
	" - CISA",
	" | The Hacker News",
	" | BleepingComputer",
}

// ExtractCVEs returns the set of CVE identifiers found in text, in
// canonical uppercase form.
func ExtractCVEs(text string) map[string]bool {
	cves := map[string]bool{}
	for _, m := range cvePattern.FindAllString(text, -1) {
		cves[strings.ToUpper(m)] = true
	}
	return cves
}

var bracketPrefix = regexp.MustCompile(`^\[.*?\]\s*`)

// NormalizeTitle produces a comparison key: trimmed, one known aggregator
// suffix removed, one leading bracketed tag like "[Breaking]" removed,
// lowercased. Idempotent; empty input yields an empty key.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	for _, suffix := range sourceSuffixes {
		if strings.HasSuffix(t, suffix) {
			t = t[:len(t)-len(suffix)]
			break
		}
	}
	t = bracketPrefix.ReplaceAllString(t, "")
	return strings.TrimSpace(strings.ToLower(t))
}

// TitlesSimilar reports whether two normalized titles are close enough to
// be the same story, at DefaultThreshold.
func TitlesSimilar(a, b string) bool {
	return TitlesSimilarAt(a, b, DefaultThreshold)
}

// TitlesSimilarAt compares with an explicit threshold. The ratio is the
// Ratcliff/Obershelp measure over the two rune sequences, in [0,1].
func TitlesSimilarAt(a, b string, threshold float64) bool {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio() >= threshold
}

// Group is a sequence of articles covering one story. The first member is
// the representative (the anchor that opened the group).
type Group []feed.Article

// Representative returns the group's anchor article.
func (g Group) Representative() feed.Article {
	return g[0]
}

// CVEs returns the union of CVE identifiers across the group's members'
// titles and summaries.
func (g Group) CVEs() map[string]bool {
	cves := map[string]bool{}
	for _, a := range g {
		for cve := range ExtractCVEs(a.Title + " " + a.Summary) {
			cves[cve] = true
		}
	}
	return cves
}

// Deduplicate partitions articles into groups at DefaultThreshold.
func Deduplicate(articles []feed.Article) []Group {
	return DeduplicateAt(articles, DefaultThreshold)
}

// DeduplicateAt partitions articles into groups of duplicates. Every
// input article lands in exactly one group; groups appear in order of
// their anchor's first appearance. O(n²) comparisons, fine for the batch
// sizes a digest run sees.
func DeduplicateAt(articles []feed.Article, threshold float64) []Group {
	var groups []Group
	used := make([]bool, len(articles))

	for i, art := range articles {
		if used[i] {
			continue
		}
		group := Group{art}
		used[i] = true

		urlI := art.URL
		cvesI := ExtractCVEs(art.Title + " " + art.Summary)
		normI := NormalizeTitle(art.Title)

		for j := i + 1; j < len(articles); j++ {
			if used[j] {
				continue
			}
			other := articles[j]

			// Same URL
			if urlI != "" && urlI == other.URL {
				group = append(group, other)
				used[j] = true
				continue
			}

			// Shared CVE
			cvesJ := ExtractCVEs(other.Title + " " + other.Summary)
			if len(cvesI) > 0 && len(cvesJ) > 0 && intersects(cvesI, cvesJ) {
				group = append(group, other)
				used[j] = true
				continue
			}

			// Similar title
			if TitlesSimilarAt(normI, NormalizeTitle(other.Title), threshold) {
				group = append(group, other)
				used[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}
