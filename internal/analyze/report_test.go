package analyze

import (
	"context"
	"strings"
	"testing"
)

func annotated(title string, cause Cause, suggestion string) AnnotatedGap {
	return AnnotatedGap{
		Gap:   Gap{Title: title, URL: "https://example.com/" + title},
		Cause: CauseInfo{Cause: cause, Suggestion: suggestion},
	}
}

func TestHeuristicReportGroupsByCause(t *testing.T) {
	gaps := []AnnotatedGap{
		annotated("a", CauseFeedMissing, "add feed"),
		annotated("b", CauseFeedMissing, "add feed"),
		annotated("c", CauseUnknown, "improve matching"),
	}

	report := heuristicReport(gaps)
	if !strings.Contains(report, "Detected gaps: 3") {
		t.Errorf("missing gap count:\n%s", report)
	}
	if !strings.Contains(report, "### feed_missing (2)") {
		t.Errorf("missing feed_missing section:\n%s", report)
	}
	// Most frequent cause first.
	if strings.Index(report, "### feed_missing") > strings.Index(report, "### unknown") {
		t.Errorf("causes should be ordered by count descending:\n%s", report)
	}
	if !strings.Contains(report, "- [ ] a") {
		t.Errorf("items should be listed as checkboxes:\n%s", report)
	}
}

func TestHeuristicReportCapsItemsPerCause(t *testing.T) {
	var gaps []AnnotatedGap
	for i := 0; i < 13; i++ {
		gaps = append(gaps, annotated(strings.Repeat("x", i+1), CauseUnknown, "s"))
	}

	report := heuristicReport(gaps)
	if !strings.Contains(report, "(3 more)") {
		t.Errorf("expected overflow marker for 13 items:\n%s", report)
	}
}

func TestSuggestionsWithoutLLMUsesHeuristic(t *testing.T) {
	gaps := []AnnotatedGap{annotated("a", CauseFeedMissing, "add feed")}
	report := Suggestions(context.Background(), gaps, nil)
	if !strings.Contains(report, "## Analysis Summary") {
		t.Errorf("expected heuristic report when no LLM configured:\n%s", report)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArgs []string
	}{
		{"list", "list", nil},
		{"detail 3", "detail", []string{"3"}},
		{"  SHOW-FIX 1  ", "show-fix", []string{"1"}},
		{"", "", nil},
	}
	for _, tt := range tests {
		cmd := ParseCommand(tt.line)
		if cmd.Name != tt.wantName {
			t.Errorf("ParseCommand(%q).Name = %q, want %q", tt.line, cmd.Name, tt.wantName)
		}
		if len(cmd.Args) != len(tt.wantArgs) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.line, cmd.Args, tt.wantArgs)
			continue
		}
		for i := range cmd.Args {
			if cmd.Args[i] != tt.wantArgs[i] {
				t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.line, cmd.Args, tt.wantArgs)
			}
		}
	}
}
