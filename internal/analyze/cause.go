package analyze

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
	"github.com/kai-kun-ai/security-news-digest/internal/feed"
)

// Cause is the classifier's single best-guess explanation for a gap.
type Cause string

const (
	CauseFeedMissing      Cause = "feed_missing"
	CauseOutsideWindow    Cause = "outside_window"
	CauseDedupMerged      Cause = "dedup_merged"
	CauseInterestFiltered Cause = "interest_filtered"
	CauseLowRank          Cause = "low_rank"
	CauseUnknown          Cause = "unknown"
)

// CauseInfo is the classifier's final answer for one gap.
type CauseInfo struct {
	Cause      Cause
	Detail     string
	Suggestion string
}

// AnnotatedGap pairs a gap with its classified cause.
type AnnotatedGap struct {
	Gap   Gap
	Cause CauseInfo
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func domainsFromFeeds(feeds []config.Feed) map[string]bool {
	domains := map[string]bool{}
	for _, f := range feeds {
		if d := extractDomain(f.URL); d != "" {
			domains[d] = true
		}
	}
	return domains
}

func matchesInterest(text string, keywords []string) bool {
	t := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(t, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func interestKeywords(cfg *config.Config) []string {
	var kws []string
	for _, k := range cfg.InterestKeywords {
		if strings.TrimSpace(k) != "" {
			kws = append(kws, k)
		}
	}
	return kws
}

// ClassifyGapCause estimates why a reference article is missing from the
// digest. Heuristics run in strict priority order and the first match
// wins; later rules never override earlier ones. Empty or absent inputs
// make a rule not match rather than fail, and "unknown" is the terminal
// default.
func ClassifyGapCause(gap Gap, feeds []config.Feed, fetched []feed.Article, groups []dedup.Group, cfg *config.Config) CauseInfo {
	gapURL := gap.URL
	gapDomain := extractDomain(gapURL)

	feedDomains := domainsFromFeeds(feeds)
	windowDays := cfg.GetWindowDays()
	cutoff := time.Now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)

	// 1) feed_missing: the source isn't polled at all.
	if gapDomain != "" && !feedDomains[gapDomain] {
		return CauseInfo{
			Cause: CauseFeedMissing,
			Detail: fmt.Sprintf(
				"the reference article's domain (%s) does not appear among the configured feeds", gapDomain),
			Suggestion: fmt.Sprintf(
				"add the source's RSS feed to config.yaml, e.g.:\n"+
					"feeds:\n"+
					"  - name: %s\n"+
					"    url: https://%s/feed\n"+
					"    lang: en\n", gapDomain, gapDomain),
		}
	}

	// 2) outside_window: fetched, but published before the cutoff.
	for _, art := range fetched {
		if gapURL != "" && normURL(art.URL) == normURL(gapURL) {
			if !art.Published.IsZero() && art.Published.Before(cutoff) {
				return CauseInfo{
					Cause: CauseOutsideWindow,
					Detail: fmt.Sprintf(
						"an article with the same URL exists, but its publish date (%s) falls outside the window (window_days=%d)",
						art.Published.Format(time.RFC3339), windowDays),
					Suggestion: "increase window_days in config.yaml (e.g. 3 -> 7)",
				}
			}
		}
	}

	// 3) dedup_merged: absorbed into another story group via a shared CVE.
	gapCVEs := dedup.ExtractCVEs(gap.Title)
	if len(gapCVEs) > 0 {
		for _, group := range groups {
			groupCVEs := group.CVEs()
			if len(groupCVEs) > 0 && cvesIntersect(gapCVEs, groupCVEs) {
				rep := group.Representative()
				return CauseInfo{
					Cause: CauseDedupMerged,
					Detail: fmt.Sprintf(
						"shares a CVE with another article group (representative: %s); likely merged during deduplication",
						truncateRunes(rep.Title, 80)),
					Suggestion: "review the title-similarity threshold and the CVE merge rule in the dedup pass",
				}
			}
		}
	}

	// 4) interest_filtered: dropped by the interest keyword filter.
	keywords := interestKeywords(cfg)
	if len(keywords) > 0 && !matchesInterest(gap.Title, keywords) {
		return CauseInfo{
			Cause:      CauseInterestFiltered,
			Detail:     "the title matches none of the configured interest_keywords, so interest filtering likely dropped it",
			Suggestion: "add a matching keyword to interest_keywords in config.yaml",
		}
	}

	// 5) low_rank: fetched fine, lost somewhere downstream.
	for _, art := range fetched {
		if gapURL != "" && normURL(art.URL) == normURL(gapURL) {
			return CauseInfo{
				Cause:      CauseLowRank,
				Detail:     "the article was fetched but did not survive grouping, ranking, or filtering into the final digest",
				Suggestion: "consider adding the source to trusted_sources or adjusting the group ranking",
			}
		}
	}

	return CauseInfo{
		Cause:      CauseUnknown,
		Detail:     "no cause could be determined from the available information",
		Suggestion: "improve URL normalization or title-similarity matching between the reference page and fetched articles",
	}
}

func cvesIntersect(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
