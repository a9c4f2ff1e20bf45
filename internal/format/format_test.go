package format

import (
	"strings"
	"testing"

	"github.com/kai-kun-ai/security-news-digest/internal/summarize"
)

func TestDigestLayout(t *testing.T) {
	items := []summarize.Item{
		{
			Title:       "Critical Bug",
			Summary:     "Bad one.",
			Category:    "critical",
			Sources:     []string{"The Hacker News"},
			URLs:        []string{"https://example.com/1"},
			CVEs:        []string{"CVE-2026-0001"},
			SourceCount: 1,
		},
		{
			Title:       "Minor Note",
			Summary:     "Small one.",
			Category:    "general",
			SourceCount: 1,
		},
	}

	out := Digest(items, "2026-08-30")

	if !strings.Contains(out, "# Security News Digest — 2026-08-30") {
		t.Error("missing top heading")
	}
	if !strings.Contains(out, "Articles: 2") {
		t.Error("missing article count")
	}
	if !strings.Contains(out, "## 🔴 Critical / Actively Exploited") {
		t.Error("missing critical section header")
	}
	if !strings.Contains(out, "### Critical Bug") {
		t.Error("missing item heading")
	}
	if !strings.Contains(out, "**CVE:** CVE-2026-0001") {
		t.Error("missing CVE line")
	}
	if !strings.Contains(out, "- <https://example.com/1>") {
		t.Error("missing URL line")
	}
	if strings.Index(out, "### Critical Bug") > strings.Index(out, "### Minor Note") {
		t.Error("critical section must precede general")
	}
}

func TestDigestUnknownCategoryFallsBackToGeneral(t *testing.T) {
	items := []summarize.Item{{Title: "Oddity", Category: "bogus", SourceCount: 1}}
	out := Digest(items, "2026-08-30")
	if !strings.Contains(out, "## 📰 General") {
		t.Error("unknown category should land in the general section")
	}
}

func TestDigestLimitsURLsToThree(t *testing.T) {
	items := []summarize.Item{{
		Title:    "Widely Covered",
		Category: "general",
		URLs: []string{
			"https://a.com/1", "https://b.com/2", "https://c.com/3", "https://d.com/4",
		},
		SourceCount: 4,
	}}
	out := Digest(items, "2026-08-30")
	if strings.Contains(out, "https://d.com/4") {
		t.Error("only the first 3 URLs should be rendered")
	}
	if !strings.Contains(out, "https://c.com/3") {
		t.Error("third URL should be rendered")
	}
}

func TestDigestSectionSortsBySourceCount(t *testing.T) {
	items := []summarize.Item{
		{Title: "Narrow", Category: "general", SourceCount: 1},
		{Title: "Wide", Category: "general", SourceCount: 5},
	}
	out := Digest(items, "2026-08-30")
	if strings.Index(out, "### Wide") > strings.Index(out, "### Narrow") {
		t.Error("wider coverage should come first within a section")
	}
}

func TestDigestEmpty(t *testing.T) {
	out := Digest(nil, "2026-08-30")
	if !strings.Contains(out, "Articles: 0") {
		t.Error("empty digest should still render the header")
	}
	if strings.Contains(out, "## ") {
		t.Error("no sections expected for an empty digest")
	}
}
