package summarize

import (
	"context"
	"strings"
	"testing"

	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
)

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		name  string
		group dedup.Group
		want  string
	}{
		{
			"japanese",
			dedup.Group{{Title: "何かの脆弱性", Lang: "ja"}},
			"jp",
		},
		{
			"actively exploited",
			dedup.Group{{Title: "Flaw actively exploited in attacks", Lang: "en"}},
			"critical",
		},
		{
			"zero-day",
			dedup.Group{{Title: "New zero-day in popular VPN", Lang: "en"}},
			"critical",
		},
		{
			"cvss score",
			dedup.Group{{Title: "Vendor advisory", Summary: "Rated CVSS: 9.8", Lang: "en"}},
			"critical",
		},
		{
			"low cvss stays general",
			dedup.Group{{Title: "Vendor advisory", Summary: "Rated CVSS: 5.3", Lang: "en"}},
			"general",
		},
		{
			"wide coverage",
			dedup.Group{{Title: "a"}, {Title: "b"}, {Title: "c"}},
			"notable",
		},
		{
			"default",
			dedup.Group{{Title: "Routine update", Lang: "en"}},
			"general",
		},
	}

	for _, tt := range tests {
		if got := GuessCategory(tt.group); got != tt.want {
			t.Errorf("%s: GuessCategory = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSummarizeHeuristicBaseline(t *testing.T) {
	groups := []dedup.Group{
		{
			{Title: "CVE-2026-1234 exploited", URL: "https://a.com/1", Summary: "sum", SourceName: "The Hacker News", Lang: "en"},
			{Title: "Same story", URL: "https://b.com/2", Summary: "mentions CVE-2026-1234", SourceName: "BleepingComputer", Lang: "en"},
		},
	}

	items := Summarize(context.Background(), groups, nil)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Title != "CVE-2026-1234 exploited" {
		t.Errorf("title should come from the representative, got %q", item.Title)
	}
	if item.SourceCount != 2 {
		t.Errorf("SourceCount = %d, want 2", item.SourceCount)
	}
	if len(item.Sources) != 2 {
		t.Errorf("Sources = %v, want both outlets", item.Sources)
	}
	if len(item.URLs) != 2 {
		t.Errorf("URLs = %v, want both", item.URLs)
	}
	if len(item.CVEs) != 1 || item.CVEs[0] != "CVE-2026-1234" {
		t.Errorf("CVEs = %v", item.CVEs)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.input); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	groups := []dedup.Group{
		{{Title: "Story", URL: "https://a.com", Lang: "en"}},
	}
	prompt := buildPrompt(groups)
	if prompt == "" {
		t.Fatal("empty prompt")
	}
	for _, want := range []string{"[Article 1]", "Title: Story", "Sources (1): unknown", "CVEs: none"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestChatUnconfigured(t *testing.T) {
	if _, err := Chat(context.Background(), nil, "sys", "user"); err == nil {
		t.Error("nil LLM config should error")
	}
}

func TestSummarizeEmptyGroupsNoError(t *testing.T) {
	items := Summarize(context.Background(), nil, nil)
	if len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
}
