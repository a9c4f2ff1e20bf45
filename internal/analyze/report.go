package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/kai-kun-ai/security-news-digest/internal/summarize"
)

const suggestionsSystemPrompt = "You are a security news feed optimization assistant. " +
	"Given gaps (articles a reference source covered but we missed) and pre-classified causes, " +
	"suggest specific improvements."

const suggestionsUserPrompt = `Given the following gaps (articles a reference source covered but we missed), analyze the root causes and suggest specific improvements.

For each gap, the cause has been pre-classified. Your job is to:
1. Summarize the gaps
2. Group improvement suggestions by category
3. For EACH suggestion, provide the EXACT change needed (e.g., config.yaml change snippet)
4. Prioritize by impact (how many gaps each fix would address)

Output format:
## Analysis Summary
...
## Suggested Improvements
### 1. Feed additions
- [ ] ...
### 2. Keyword additions
- [ ] ...
### 3. Configuration tuning
- [ ] ...

GAPS:
%s`

// Suggestions builds an improvement report from classified gaps. A
// heuristic report grouped by cause is always produced; when an LLM is
// configured and reachable, its rewrite replaces the heuristic text.
func Suggestions(ctx context.Context, gaps []AnnotatedGap, llm *config.LLMConfig) string {
	heuristic := heuristicReport(gaps)
	if llm == nil {
		return heuristic
	}

	var blocks []string
	for i, g := range gaps {
		blocks = append(blocks, fmt.Sprintf(
			"[%d] Title: %s\nURL: %s\nCause: %s\nDetail: %s\n",
			i+1, g.Gap.Title, g.Gap.URL, g.Cause.Cause, g.Cause.Detail))
	}

	user := fmt.Sprintf(suggestionsUserPrompt, strings.Join(blocks, "\n---\n"))
	text, err := summarize.Chat(ctx, llm, suggestionsSystemPrompt, user)
	if err != nil {
		return heuristic
	}
	return strings.TrimSpace(text) + "\n"
}

func heuristicReport(gaps []AnnotatedGap) string {
	byCause := map[Cause][]AnnotatedGap{}
	for _, g := range gaps {
		byCause[g.Cause.Cause] = append(byCause[g.Cause.Cause], g)
	}

	causes := make([]Cause, 0, len(byCause))
	for c := range byCause {
		causes = append(causes, c)
	}
	// Most frequent cause first, name as tiebreaker.
	sort.Slice(causes, func(i, j int) bool {
		ni, nj := len(byCause[causes[i]]), len(byCause[causes[j]])
		if ni != nj {
			return ni > nj
		}
		return causes[i] < causes[j]
	})

	lines := []string{"## Analysis Summary", "", fmt.Sprintf("Detected gaps: %d", len(gaps)), "", "## Suggested Improvements", ""}
	for _, cause := range causes {
		items := byCause[cause]
		lines = append(lines, fmt.Sprintf("### %s (%d)", cause, len(items)))
		for i, it := range items {
			if i >= 10 {
				lines = append(lines, fmt.Sprintf("- ... (%d more)", len(items)-10))
				break
			}
			lines = append(lines, fmt.Sprintf("- [ ] %s — %s", it.Gap.Title, firstLine(it.Cause.Suggestion)))
		}
		lines = append(lines, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
