package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const userAgent = "security-news-digest/1.0"

// FetchReference downloads a third-party page and extracts its article
// links. Page structure varies by site, so extraction is deliberately
// loose: every a[href] with an http(s) target and non-empty link text
// counts, first occurrence per URL wins.
func FetchReference(ctx context.Context, pageURL string) ([]Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching reference page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reference page returned %d", resp.StatusCode)
	}

	return ExtractLinks(resp.Body)
}

// ExtractLinks pulls title/URL pairs out of an HTML document.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing reference HTML: %w", err)
	}

	var links []Link
	seen := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrValue(n, "href")
			if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
				title := collapseSpace(nodeText(n))
				if title != "" && !seen[href] {
					seen[href] = true
					links = append(links, Link{Title: title, URL: href})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var (
	digestURLLine  = regexp.MustCompile(`^-\s*<(https?://[^>]+)>`)
	bareDigestLink = regexp.MustCompile(`<(https?://[^>]+)>`)
)

// ParseDigest extracts title/URL pairs from a digest markdown document:
// "### Title" headings followed by "- <https://...>" lines. A title with
// several URL lines yields one record per URL. When no heading/URL pairs
// are found, bare <https://...> links are used as a fallback, with the
// URL doubling as the title.
func ParseDigest(r io.Reader) ([]Link, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading digest: %w", err)
	}
	text := string(data)

	var out []Link
	var curTitle string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "### ") {
			curTitle = strings.TrimSpace(line[4:])
			continue
		}
		if m := digestURLLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil && curTitle != "" {
			out = append(out, Link{Title: curTitle, URL: m[1]})
		}
	}

	if len(out) == 0 {
		for _, m := range bareDigestLink.FindAllStringSubmatch(text, -1) {
			out = append(out, Link{Title: m[1], URL: m[1]})
		}
	}

	return out, nil
}

// ParseDigestFile is ParseDigest over a file on disk.
func ParseDigestFile(path string) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening digest %s: %w", path, err)
	}
	defer f.Close()
	return ParseDigest(f)
}
