package tui

import (
	"strings"
	"testing"

	"github.com/kai-kun-ai/security-news-digest/internal/analyze"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
	}
	for _, tt := range tests {
		got := truncateStr(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateStrUTF8(t *testing.T) {
	got := truncateStr("日本語テスト", 5)
	want := "日本..."
	if got != want {
		t.Errorf("truncateStr(Japanese, 5) = %q, want %q", got, want)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}

func TestNextCause(t *testing.T) {
	if got := nextCause(""); got != "feed_missing" {
		t.Errorf("nextCause(\"\") = %q, want feed_missing", got)
	}
	// Cycling through every value returns to the unfiltered state
	c := ""
	for range causeCycle {
		c = nextCause(c)
	}
	if c != "" {
		t.Errorf("full cycle ended at %q, want empty", c)
	}
}

func TestApplyFilters(t *testing.T) {
	gaps := []analyze.AnnotatedGap{
		{Gap: analyze.Gap{Title: "Chrome zero-day"}, Cause: analyze.CauseInfo{Cause: analyze.CauseFeedMissing}},
		{Gap: analyze.Gap{Title: "Linux kernel patch"}, Cause: analyze.CauseInfo{Cause: analyze.CauseLowRank}},
		{Gap: analyze.Gap{Title: "Chrome sandbox escape"}, Cause: analyze.CauseInfo{Cause: analyze.CauseLowRank}},
	}
	app := NewApp(gaps)

	if len(app.visible) != 3 {
		t.Fatalf("unfiltered visible = %d, want 3", len(app.visible))
	}

	app.causeFilter = string(analyze.CauseLowRank)
	app.applyFilters()
	if len(app.visible) != 2 {
		t.Errorf("cause filter visible = %d, want 2", len(app.visible))
	}

	app.searchInput.SetValue("chrome")
	app.applyFilters()
	if len(app.visible) != 1 || app.visible[0].Gap.Title != "Chrome sandbox escape" {
		t.Errorf("combined filter = %v, want only Chrome sandbox escape", app.visible)
	}
}

func TestRenderListEmpty(t *testing.T) {
	out := renderList(nil, 0, 9, 40)
	if !strings.Contains(out, "No gaps found") {
		t.Errorf("empty list output = %q, want placeholder text", out)
	}
}

func TestRenderDetailNil(t *testing.T) {
	out := renderDetail(nil, 40)
	if !strings.Contains(out, "Select a gap") {
		t.Errorf("nil detail output = %q", out)
	}
}
