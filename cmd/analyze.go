package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kai-kun-ai/security-news-digest/internal/analyze"
	"github.com/kai-kun-ai/security-news-digest/internal/cache"
	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
	"github.com/kai-kun-ai/security-news-digest/internal/feed"
	"github.com/kai-kun-ai/security-news-digest/internal/tui"
	"github.com/spf13/cobra"
)

var (
	flagReferenceURL string
	flagDigestPath   string
	flagRefetch      bool
	flagInteractive  bool
	flagAnalyzeTUI   bool
	flagAnalyzeNoLLM bool
)

var (
	gapCountStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#E06C75"})
	gapCauseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	gapDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"})
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Find and explain articles the last digest missed",
	Long: `Compare a reference article listing against a generated digest and
explain why each missing article did not make it in.

By default the fetched articles from the last digest run are replayed
from the local cache; use --refetch to hit the feeds again.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagReferenceURL, "reference-url", "", "URL of the reference article listing (required)")
	analyzeCmd.Flags().StringVar(&flagDigestPath, "digest", "", "path to the digest markdown (default: last generated digest)")
	analyzeCmd.Flags().BoolVar(&flagRefetch, "refetch", false, "refetch feeds instead of replaying the cached run")
	analyzeCmd.Flags().BoolVar(&flagInteractive, "interactive", false, "start an interactive session over the gaps")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeTUI, "tui", false, "browse the gaps in a full-screen TUI")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeNoLLM, "no-llm", false, "skip LLM rewriting of the suggestions report")
	analyzeCmd.MarkFlagRequired("reference-url")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Printf("Fetching reference listing from %s...\n", flagReferenceURL)
	reference, err := analyze.FetchReference(ctx, flagReferenceURL)
	if err != nil {
		return fmt.Errorf("fetching reference: %w", err)
	}
	if len(reference) == 0 {
		return fmt.Errorf("reference page yielded no article links")
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	digestPath := flagDigestPath
	if digestPath == "" {
		digestPath = db.LastDigestPath()
	}
	if digestPath == "" {
		return fmt.Errorf("no digest found; run a digest first or pass --digest")
	}
	digest, err := analyze.ParseDigestFile(digestPath)
	if err != nil {
		return fmt.Errorf("parsing digest %s: %w", digestPath, err)
	}

	articles, err := db.LoadArticles()
	if err != nil {
		return fmt.Errorf("loading cached run: %w", err)
	}
	if flagRefetch || len(articles) == 0 {
		fmt.Println("Fetching feeds...")
		result := feed.FetchAll(ctx, cfg.Feeds, cfg.GetWindowDays())
		for _, e := range result.Errors {
			fmt.Printf("  [warn] %v\n", e)
		}
		articles = result.Articles
	}

	groups := dedup.DeduplicateAt(articles, cfg.GetSimilarityThreshold())
	gaps := analyze.FindGaps(reference, digest, cfg.GetSimilarityThreshold())

	if len(gaps) == 0 {
		fmt.Printf("No gaps: all %d reference articles are covered by %s.\n", len(reference), digestPath)
		return nil
	}

	annotated := make([]analyze.AnnotatedGap, len(gaps))
	for i, g := range gaps {
		annotated[i] = analyze.AnnotatedGap{
			Gap:   g,
			Cause: analyze.ClassifyGapCause(g, cfg.Feeds, articles, groups, cfg),
		}
	}

	printGapSummary(annotated, len(reference), digestPath)

	llm := cfg.LLM
	if flagAnalyzeNoLLM {
		llm = nil
	}
	suggestions := analyze.Suggestions(ctx, annotated, llm)

	switch {
	case flagAnalyzeTUI:
		return tui.Run(annotated)
	case flagInteractive:
		return analyze.RunSession(annotated, suggestions, cfg)
	default:
		fmt.Println()
		fmt.Println(suggestions)
		return nil
	}
}

func printGapSummary(gaps []analyze.AnnotatedGap, referenceCount int, digestPath string) {
	fmt.Printf("\n%s missing from %s (%d reference articles checked)\n\n",
		gapCountStyle.Render(fmt.Sprintf("%d articles", len(gaps))),
		digestPath, referenceCount)

	counts := map[string]int{}
	for _, g := range gaps {
		counts[string(g.Cause.Cause)]++
	}
	causes := make([]string, 0, len(counts))
	for c := range counts {
		causes = append(causes, c)
	}
	sort.Slice(causes, func(i, j int) bool {
		if counts[causes[i]] != counts[causes[j]] {
			return counts[causes[i]] > counts[causes[j]]
		}
		return causes[i] < causes[j]
	})
	for _, c := range causes {
		fmt.Printf("  %s %s\n", gapCauseStyle.Render(fmt.Sprintf("%-18s", c)), gapDimStyle.Render(fmt.Sprintf("%d", counts[c])))
	}
}
