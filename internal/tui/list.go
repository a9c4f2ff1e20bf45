package tui

import (
	"strings"

	"github.com/kai-kun-ai/security-news-digest/internal/analyze"
)

func renderListItem(g analyze.AnnotatedGap, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(g.Gap.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(g.Gap.Title, width-4))
	}

	badge := "  " + badgeStyle(string(g.Cause.Cause)).Render(string(g.Cause.Cause))

	return title + "\n" + badge
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(gaps []analyze.AnnotatedGap, cursor int, height int, width int) string {
	if len(gaps) == 0 {
		return centerText("No gaps found", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(gaps) {
		end = len(gaps)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(gaps[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderDetail(g *analyze.AnnotatedGap, width int) string {
	if g == nil {
		return "Select a gap to see details"
	}
	if width < 20 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(wrapText(g.Gap.Title, width)))
	b.WriteString("\n\n")
	b.WriteString(detailLabelStyle.Render("Cause: "))
	b.WriteString(badgeStyle(string(g.Cause.Cause)).Render(string(g.Cause.Cause)))
	b.WriteString("\n\n")
	b.WriteString(detailBodyStyle.Render(wrapText(g.Cause.Detail, width)))
	if g.Cause.Suggestion != "" {
		b.WriteString("\n\n")
		b.WriteString(detailLabelStyle.Render("Suggestion"))
		b.WriteString("\n")
		b.WriteString(detailBodyStyle.Render(wrapText(g.Cause.Suggestion, width)))
	}
	if g.Gap.URL != "" {
		b.WriteString("\n")
		b.WriteString(detailLinkStyle.Render(g.Gap.URL))
	}
	return b.String()
}

// wrapText is a plain greedy word wrapper. Lines already present in the
// input are preserved.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len(cur)+1+len(w) > width {
				out = append(out, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}

func centerText(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
