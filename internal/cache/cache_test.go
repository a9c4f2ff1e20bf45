package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/feed"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSaveAndLoadRun(t *testing.T) {
	c := openTestCache(t)

	pub := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	articles := []feed.Article{
		{Title: "A", URL: "https://a.com/1", Summary: "s", Published: pub, SourceFeed: "Feed", Lang: "en", SourceName: "Src"},
		{Title: "B", URL: "https://b.com/2"},
	}

	if err := c.SaveRun(articles, "/tmp/digest.md"); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	loaded, err := c.LoadArticles()
	if err != nil {
		t.Fatalf("LoadArticles: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(loaded))
	}
	if loaded[0].Title != "A" || !loaded[0].Published.Equal(pub) {
		t.Errorf("first article round-trip mismatch: %+v", loaded[0])
	}
	if !loaded[1].Published.IsZero() {
		t.Errorf("missing publish date should load as zero, got %v", loaded[1].Published)
	}
	if got := c.LastDigestPath(); got != "/tmp/digest.md" {
		t.Errorf("LastDigestPath = %q", got)
	}
	if c.LastRunAt().IsZero() {
		t.Error("LastRunAt should be set after SaveRun")
	}
}

func TestSaveRunReplacesPreviousRun(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveRun([]feed.Article{{Title: "Old", URL: "https://old.com"}}, "old.md"); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveRun([]feed.Article{{Title: "New", URL: "https://new.com"}}, "new.md"); err != nil {
		t.Fatal(err)
	}

	loaded, err := c.LoadArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Title != "New" {
		t.Errorf("expected only the new run, got %+v", loaded)
	}
	if got := c.LastDigestPath(); got != "new.md" {
		t.Errorf("LastDigestPath = %q, want new.md", got)
	}
}

func TestLoadArticlesEmpty(t *testing.T) {
	c := openTestCache(t)
	loaded, err := c.LoadArticles()
	if err != nil {
		t.Fatalf("LoadArticles on empty cache: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no articles, got %d", len(loaded))
	}
	if got := c.LastDigestPath(); got != "" {
		t.Errorf("LastDigestPath on empty cache = %q", got)
	}
}

func TestPrune(t *testing.T) {
	c := openTestCache(t)
	if err := c.SaveRun([]feed.Article{{Title: "A", URL: "https://a.com"}}, "d.md"); err != nil {
		t.Fatal(err)
	}

	deleted, err := c.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("fresh articles should not be pruned, deleted %d", deleted)
	}

	deleted, err = c.Prune(-time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned article, got %d", deleted)
	}
}

func TestStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.SaveRun([]feed.Article{{Title: "A", URL: "https://a.com"}}, "d.md"); err != nil {
		t.Fatal(err)
	}

	count, size, err := c.Stats(path)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if size <= 0 {
		t.Errorf("size = %d, want > 0", size)
	}
}
