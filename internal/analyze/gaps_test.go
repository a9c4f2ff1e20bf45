package analyze

import (
	"testing"

	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
)

func TestFindGapsURLMatchAndTitleSimilarity(t *testing.T) {
	reference := []Link{
		{Title: "A", URL: "https://example.com/a"},
		{Title: "Critical RCE Exploit in Apache Server", URL: "https://example.com/b"},
		{Title: "C", URL: "https://example.com/c"},
	}
	digest := []Link{
		{Title: "Some title", URL: "https://example.com/a/"},
		{Title: "Critical RCE Exploit in Apache Server Found", URL: ""},
	}

	gaps := FindGaps(reference, digest, dedup.DefaultThreshold)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].URL != "https://example.com/c" {
		t.Errorf("expected gap for /c, got %q", gaps[0].URL)
	}
	if gaps[0].Matched {
		t.Error("gaps must carry Matched=false")
	}
}

func TestFindGapsTrailingSlashNeverGaps(t *testing.T) {
	reference := []Link{{Title: "Completely Different Title", URL: "https://example.com/x/"}}
	digest := []Link{{Title: "Other", URL: "https://example.com/x"}}

	if gaps := FindGaps(reference, digest, dedup.DefaultThreshold); len(gaps) != 0 {
		t.Errorf("URL match modulo trailing slash must win regardless of titles, got %v", gaps)
	}
}

func TestFindGapsEmptyDigest(t *testing.T) {
	reference := []Link{
		{Title: "First", URL: "https://example.com/1"},
		{Title: "Second", URL: "https://example.com/2"},
	}
	gaps := FindGaps(reference, nil, dedup.DefaultThreshold)
	if len(gaps) != 2 {
		t.Fatalf("everything should gap against an empty digest, got %d", len(gaps))
	}
	if gaps[0].URL != "https://example.com/1" || gaps[1].URL != "https://example.com/2" {
		t.Errorf("gaps must keep reference order, got %v", gaps)
	}
}

func TestFindGapsEmptyTitlesNeverMatch(t *testing.T) {
	reference := []Link{{Title: "", URL: "https://example.com/ref"}}
	digest := []Link{{Title: "", URL: "https://example.com/other"}}

	if gaps := FindGaps(reference, digest, dedup.DefaultThreshold); len(gaps) != 1 {
		t.Errorf("empty normalized titles must not count as similar, got %v", gaps)
	}
}

func TestFindGapsThresholdApplies(t *testing.T) {
	reference := []Link{{Title: "apple releases ios update", URL: "https://a.com/1"}}
	digest := []Link{{Title: "google patches android flaw", URL: "https://b.com/2"}}

	if gaps := FindGaps(reference, digest, 0.0); len(gaps) != 0 {
		t.Error("threshold 0 should match any non-empty titles")
	}
	if gaps := FindGaps(reference, digest, dedup.DefaultThreshold); len(gaps) != 1 {
		t.Error("default threshold should report the gap")
	}
}
