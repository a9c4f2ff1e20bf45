// Package format renders digest items as a markdown document.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/summarize"
)

var categoryHeaders = map[string]string{
	"critical": "🔴 Critical / Actively Exploited",
	"notable":  "⚠️ Notable",
	"jp":       "🇯🇵 Japan / Japanese Sources",
	"general":  "📰 General",
}

var categoryOrder = []string{"critical", "notable", "jp", "general"}

// Digest renders the digest markdown for the given date. Items with an
// unrecognized category file under "general"; within a section, stories
// with wider coverage come first.
func Digest(items []summarize.Item, dateStr string) string {
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}

	lines := []string{
		fmt.Sprintf("# Security News Digest — %s", dateStr),
		"",
		fmt.Sprintf("Generated: %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")),
		fmt.Sprintf("Articles: %d", len(items)),
		"",
		"---",
		"",
	}

	byCat := map[string][]summarize.Item{}
	for _, item := range items {
		cat := item.Category
		if _, ok := categoryHeaders[cat]; !ok {
			cat = "general"
		}
		byCat[cat] = append(byCat[cat], item)
	}

	for _, cat := range categoryOrder {
		sectionItems := byCat[cat]
		if len(sectionItems) == 0 {
			continue
		}

		lines = append(lines, "## "+categoryHeaders[cat], "")

		sort.SliceStable(sectionItems, func(i, j int) bool {
			return sectionItems[i].SourceCount > sectionItems[j].SourceCount
		})

		for _, item := range sectionItems {
			lines = append(lines, "### "+item.Title, "")
			if len(item.CVEs) > 0 {
				lines = append(lines, "**CVE:** "+strings.Join(item.CVEs, ", "), "")
			}
			lines = append(lines, item.Summary, "")
			if len(item.Sources) > 0 {
				lines = append(lines, fmt.Sprintf("**Sources (%d):** %s", item.SourceCount, strings.Join(item.Sources, ", ")))
			}
			for i, url := range item.URLs {
				if i >= 3 {
					break
				}
				lines = append(lines, fmt.Sprintf("- <%s>", url))
			}
			lines = append(lines, "", "---", "")
		}
	}

	return strings.Join(lines, "\n")
}
