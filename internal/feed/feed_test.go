package feed

import (
	"testing"

	"github.com/mmcdole/gofeed"
)

func TestSourceName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Big Vuln - The Hacker News", "The Hacker News"},
		{"Big Vuln | BleepingComputer", "BleepingComputer"},
		{"Plain title", ""},
		{"Dashes-inside-words only", ""},
	}
	for _, tt := range tests {
		item := &gofeed.Item{Title: tt.title}
		if got := sourceName(item); got != tt.want {
			t.Errorf("sourceName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	// Japanese characters are multi-byte but should truncate by rune
	input := "こんにちは世界です"
	got := truncate(input, 5)
	want := "こん..."
	if got != want {
		t.Errorf("truncate(%q, 5) = %q, want %q", input, got, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.input); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPublishedAtUnknownIsZero(t *testing.T) {
	item := &gofeed.Item{Title: "undated"}
	if got := publishedAt(item); !got.IsZero() {
		t.Errorf("missing dates should yield zero time, got %v", got)
	}
}
