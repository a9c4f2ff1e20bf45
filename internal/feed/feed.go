package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/mmcdole/gofeed"
)

// Article is a single news item as fetched from a feed. Immutable once
// created. A zero Published means the feed gave no usable date; articles
// are never excluded for that alone.
type Article struct {
	Title      string
	URL        string
	Summary    string
	Published  time.Time
	SourceFeed string
	Lang       string
	SourceName string
}

type Fetcher interface {
	Fetch(ctx context.Context, feed config.Feed, windowDays int) ([]Article, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, feedCfg config.Feed, windowDays int) ([]Article, error) {
	parsed, err := f.parser.ParseURLWithContext(feedCfg.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feedCfg.Name, err)
	}

	cutoff := time.Now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)
	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		pub := publishedAt(item)

		// Only skip when the date is known and stale; unknown dates stay in.
		if !pub.IsZero() && pub.Before(cutoff) {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = truncate(stripHTML(summary), 500)

		articles = append(articles, Article{
			Title:      strings.TrimSpace(item.Title),
			URL:        strings.TrimSpace(item.Link),
			Summary:    summary,
			Published:  pub,
			SourceFeed: feedCfg.Name,
			Lang:       feedCfg.LangOrDefault(),
			SourceName: sourceName(item),
		})
	}
	return articles, nil
}

func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// sourceName extracts the originating outlet: an aggregator suffix like
// "Title - Source Name" or "Title | Source Name", empty when absent.
func sourceName(item *gofeed.Item) string {
	title := item.Title
	if idx := strings.LastIndex(title, " - "); idx >= 0 {
		return strings.TrimSpace(title[idx+3:])
	}
	if idx := strings.LastIndex(title, " | "); idx >= 0 {
		return strings.TrimSpace(title[idx+3:])
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type FetchResult struct {
	Articles []Article
	Errors   []error
}

// FetchAll fetches every configured feed concurrently. Failed feeds are
// reported in Errors without aborting the rest.
func FetchAll(ctx context.Context, feeds []config.Feed, windowDays int) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	fetcher := NewRSSFetcher()

	for _, fc := range feeds {
		wg.Add(1)
		go func(fc config.Feed) {
			defer wg.Done()
			articles, err := fetcher.Fetch(ctx, fc, windowDays)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Articles = append(result.Articles, articles...)
		}(fc)
	}

	wg.Wait()
	return result
}
