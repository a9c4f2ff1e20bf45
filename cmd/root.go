package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig    string
	flagNoLLM     bool
	flagInterests bool
	flagOutputDir string
)

var rootCmd = &cobra.Command{
	Use:   "secdigest",
	Short: "Security news digest generator",
	Long:  "secdigest fetches security news feeds, merges duplicate coverage of the same story, and writes a ranked markdown digest.",
	RunE:  runDigest,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().BoolVar(&flagNoLLM, "no-llm", false, "skip LLM summaries, use heuristic output only")
	rootCmd.Flags().BoolVar(&flagInterests, "interests", false, "keep only groups matching interest keywords from config")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "override the digest output directory")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("secdigest %s (commit: %s, built: %s)\n", version, commit, date)
		if flagVersionCheck {
			if res := update.Check(context.Background(), version); res != nil {
				fmt.Printf("A newer version is available: %s\n", res.LatestVersion)
			} else {
				fmt.Println("You are up to date.")
			}
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check GitHub for a newer release")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
