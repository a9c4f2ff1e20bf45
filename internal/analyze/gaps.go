// Package analyze compares an independently sourced article list against
// a generated digest, reports the articles the digest missed, and assigns
// each miss a best-effort cause.
package analyze

import (
	"strings"

	"github.com/kai-kun-ai/security-news-digest/internal/dedup"
)

// Link is a title/URL pair from a reference page or a parsed digest.
type Link struct {
	Title string
	URL   string
}

// Gap is a reference article with no counterpart in the digest. Matched
// reference items are dropped, so Matched is always false here.
type Gap struct {
	Title   string
	URL     string
	Matched bool
}

func normURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

// FindGaps returns the reference items absent from the digest, in
// reference order. An item matches on URL equality (modulo one trailing
// slash) against any digest URL, otherwise on title similarity against
// any digest title. The first sufficiently similar digest title wins; no
// best-match selection, so the outcome follows digest-list order.
func FindGaps(reference, digest []Link, threshold float64) []Gap {
	digestURLs := map[string]bool{}
	for _, d := range digest {
		if d.URL != "" {
			digestURLs[normURL(d.URL)] = true
		}
	}
	digestTitles := make([]string, len(digest))
	for i, d := range digest {
		digestTitles[i] = dedup.NormalizeTitle(d.Title)
	}

	var gaps []Gap
	for _, ref := range reference {
		refURL := normURL(ref.URL)

		matched := false
		if refURL != "" && digestURLs[refURL] {
			matched = true
		} else {
			refNorm := dedup.NormalizeTitle(ref.Title)
			for _, dt := range digestTitles {
				if dt != "" && refNorm != "" && dedup.TitlesSimilarAt(refNorm, dt, threshold) {
					matched = true
					break
				}
			}
		}

		if !matched {
			gaps = append(gaps, Gap{Title: ref.Title, URL: ref.URL, Matched: false})
		}
	}

	return gaps
}
