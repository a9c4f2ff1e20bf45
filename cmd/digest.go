package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/cache"
	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
	"github.com/kai-kun-ai/security-news-digest/internal/feed"
	"github.com/kai-kun-ai/security-news-digest/internal/format"
	"github.com/kai-kun-ai/security-news-digest/internal/rank"
	"github.com/kai-kun-ai/security-news-digest/internal/summarize"
	"github.com/spf13/cobra"
)

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("Fetching %d feeds (window: %dd)...\n", len(cfg.Feeds), cfg.GetWindowDays())
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	result := feed.FetchAll(ctx, cfg.Feeds, cfg.GetWindowDays())
	cancel()

	for _, e := range result.Errors {
		fmt.Printf("  [warn] %v\n", e)
	}
	if len(result.Articles) == 0 {
		return fmt.Errorf("no articles fetched from any feed")
	}

	groups := dedup.DeduplicateAt(result.Articles, cfg.GetSimilarityThreshold())
	groups = rank.Rank(groups, cfg.TrustedSet())

	if flagInterests {
		groups = rank.FilterByInterests(groups, cfg.InterestKeywords)
		if len(groups) == 0 {
			return fmt.Errorf("no groups matched the configured interest keywords")
		}
	}

	llm := cfg.LLM
	if flagNoLLM {
		llm = nil
	}

	sumCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	items := summarize.Summarize(sumCtx, groups, llm)
	cancel()

	dateStr := time.Now().Format("2006-01-02")
	digest := format.Digest(items, dateStr)

	outDir := cfg.OutputDir()
	if flagOutputDir != "" {
		outDir = flagOutputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	filename := strings.ReplaceAll(cfg.FilenameTemplate(), "{date}", dateStr)
	outPath := filepath.Join(outDir, filename)
	if err := os.WriteFile(outPath, []byte(digest), 0o644); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}

	// Persist the run so analyze can replay it without refetching.
	if db, err := cache.Open(config.CachePath()); err == nil {
		if err := db.SaveRun(result.Articles, outPath); err != nil {
			fmt.Printf("  [warn] caching run: %v\n", err)
		}
		db.Close()
	} else {
		fmt.Printf("  [warn] opening cache: %v\n", err)
	}

	fmt.Printf("Fetched %d articles, merged into %d groups.\n", len(result.Articles), len(groups))
	fmt.Printf("Digest written to %s\n", outPath)
	return nil
}
