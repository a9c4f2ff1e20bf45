// Package summarize turns deduplicated article groups into digest items,
// using an OpenAI-compatible LLM when configured and falling back to
// heuristics when not.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kai-kun-ai/security-news-digest/internal/config"
	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
)

// Item is one digest entry built from an article group.
type Item struct {
	Title       string
	Summary     string
	Category    string
	Sources     []string
	URLs        []string
	CVEs        []string
	SourceCount int
	Lang        string
}

const systemPrompt = `You are a cybersecurity news analyst. Your task is to analyze article groups and produce a JSON response.

For each article group, provide:
1. "summary" — A concise summary (2-3 sentences). Include CVE IDs and CVSS scores if mentioned.
2. "category" — One of: "critical" (CVSS>=9.0, KEV, actively exploited), "notable", "jp" (Japanese-language news), "general"
3. "title" — A short descriptive title

Be concise and accurate. Always include CVE IDs when present.
Respond with valid JSON only: {"articles": [{"title": "...", "summary": "...", "category": "..."}]}`

type llmArticle struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

type llmResult struct {
	Articles []llmArticle `json:"articles"`
}

// Summarize builds digest items for each group. The heuristic baseline
// (representative title/summary, guessed category, combined sources,
// URLs, and CVEs) is always computed; LLM output, when available,
// overlays title/summary/category per group index.
func Summarize(ctx context.Context, groups []dedup.Group, llm *config.LLMConfig) []Item {
	var overlay *llmResult
	if llm != nil {
		if text, err := Chat(ctx, llm, systemPrompt, buildPrompt(groups)); err == nil {
			var parsed llmResult
			if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err == nil {
				overlay = &parsed
			} else {
				fmt.Printf("[warn] LLM returned unparsable JSON: %v\n", err)
			}
		} else {
			fmt.Printf("[warn] LLM summarization failed: %v\n", err)
		}
	}

	items := make([]Item, 0, len(groups))
	for i, group := range groups {
		rep := group.Representative()

		sourceSet := map[string]bool{}
		urlSet := map[string]bool{}
		var urls []string
		for _, a := range group {
			if a.SourceName != "" {
				sourceSet[a.SourceName] = true
			}
			if a.URL != "" && !urlSet[a.URL] {
				urlSet[a.URL] = true
				urls = append(urls, a.URL)
			}
		}

		item := Item{
			Title:       rep.Title,
			Summary:     rep.Summary,
			Category:    GuessCategory(group),
			Sources:     sortedKeys(sourceSet),
			URLs:        urls,
			CVEs:        sortedKeys(group.CVEs()),
			SourceCount: len(group),
			Lang:        rep.Lang,
		}

		if overlay != nil && i < len(overlay.Articles) {
			la := overlay.Articles[i]
			if la.Title != "" {
				item.Title = la.Title
			}
			if la.Summary != "" {
				item.Summary = la.Summary
			}
			if la.Category != "" {
				item.Category = la.Category
			}
		}

		items = append(items, item)
	}

	return items
}

func buildPrompt(groups []dedup.Group) string {
	var parts []string
	for i, group := range groups {
		rep := group.Representative()
		sources := strings.Join(sortedKeys(sourceNames(group)), ", ")
		if sources == "" {
			sources = "unknown"
		}
		cves := strings.Join(sortedKeys(group.CVEs()), ", ")
		if cves == "" {
			cves = "none"
		}
		summary := rep.Summary
		if summary == "" {
			summary = "N/A"
		}
		parts = append(parts, fmt.Sprintf(
			"[Article %d]\nTitle: %s\nSources (%d): %s\nCVEs: %s\nLanguage: %s\nSummary: %s\n",
			i+1, rep.Title, len(group), sources, cves, rep.Lang, truncateRunes(summary, 500)))
	}
	return strings.Join(parts, "\n---\n")
}

func sourceNames(group dedup.Group) map[string]bool {
	set := map[string]bool{}
	for _, a := range group {
		if a.SourceName != "" {
			set[a.SourceName] = true
		}
	}
	return set
}

var criticalTerms = []string{
	"actively exploited", "kev", "cvss 9", "cvss 10", "critical vulnerability",
	"zero-day", "0-day", "in the wild",
}

var cvssScore = regexp.MustCompile(`cvss[:\s]*(\d+\.?\d*)`)

// GuessCategory is the heuristic category used when no LLM answer is
// available: Japanese-language items file under "jp", critical indicators
// or a CVSS score of 9.0+ under "critical", widely covered stories under
// "notable", everything else under "general".
func GuessCategory(group dedup.Group) string {
	rep := group.Representative()
	text := strings.ToLower(rep.Title + " " + rep.Summary)

	if rep.Lang == "ja" {
		return "jp"
	}

	for _, term := range criticalTerms {
		if strings.Contains(text, term) {
			return "critical"
		}
	}

	if m := cvssScore.FindStringSubmatch(text); m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil && score >= 9.0 {
			return "critical"
		}
	}

	if len(group) >= 3 {
		return "notable"
	}

	return "general"
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// --- OpenAI-compatible chat client ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends one system+user exchange to the configured primary provider
// and falls back to the secondary on any failure (missing key included).
func Chat(ctx context.Context, llm *config.LLMConfig, system, user string) (string, error) {
	if llm == nil {
		return "", fmt.Errorf("LLM not configured")
	}

	client := &http.Client{Timeout: 60 * time.Second}

	text, primaryErr := call(ctx, client, llm.Primary, llm, system, user)
	if primaryErr == nil {
		return text, nil
	}

	text, fallbackErr := call(ctx, client, llm.Fallback, llm, system, user)
	if fallbackErr == nil {
		return text, nil
	}
	return "", fmt.Errorf("primary: %v; fallback: %w", primaryErr, fallbackErr)
}

func call(ctx context.Context, client *http.Client, p config.Provider, llm *config.LLMConfig, system, user string) (string, error) {
	if p.Model == "" || p.APIBase == "" {
		return "", fmt.Errorf("provider not configured")
	}
	apiKey := os.Getenv(p.APIKeyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("no API key in $%s", p.APIKeyEnv)
	}

	maxTokens := llm.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temperature := llm.Temperature
	if temperature <= 0 {
		temperature = 0.3
	}

	body, _ := json.Marshal(chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})

	endpoint := strings.TrimSuffix(p.APIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%s returned %d: %s", p.Model, resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", p.Model)
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
