package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kai-kun-ai/security-news-digest/internal/analyze"
	"github.com/kai-kun-ai/security-news-digest/internal/browser"
)

type focusPane int

const (
	focusList focusPane = iota
	focusDetail
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeHelp
)

type browserErrMsg struct{ err error }

// causeCycle is the order the cause filter steps through. The empty
// string means no filter.
var causeCycle = []string{
	"",
	string(analyze.CauseFeedMissing),
	string(analyze.CauseOutsideWindow),
	string(analyze.CauseDedupMerged),
	string(analyze.CauseInterestFiltered),
	string(analyze.CauseLowRank),
	string(analyze.CauseUnknown),
}

type App struct {
	all     []analyze.AnnotatedGap
	visible []analyze.AnnotatedGap
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	searchInput textinput.Model
	causeFilter string

	detailScroll int
	err          error
}

func NewApp(gaps []analyze.AnnotatedGap) *App {
	ti := textinput.New()
	ti.Placeholder = "Search gaps..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	a := &App{
		all:         gaps,
		searchInput: ti,
	}
	a.applyFilters()
	return a
}

// applyFilters rebuilds the visible slice from the cause filter and the
// search query, preserving the original order.
func (a *App) applyFilters() {
	query := strings.ToLower(strings.TrimSpace(a.searchInput.Value()))

	a.visible = a.visible[:0]
	for _, g := range a.all {
		if a.causeFilter != "" && string(g.Cause.Cause) != a.causeFilter {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(g.Gap.Title), query) {
			continue
		}
		a.visible = append(a.visible, g)
	}
	if a.cursor >= len(a.visible) {
		a.cursor = max(0, len(a.visible)-1)
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return browserErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case browserErrMsg:
		a.err = msg.err
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible)-1 {
			a.cursor++
			a.detailScroll = 0
		} else if a.focus == focusDetail {
			a.detailScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.detailScroll = 0
		} else if a.focus == focusDetail && a.detailScroll > 0 {
			a.detailScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusDetail
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if len(a.visible) > 0 && a.cursor < len(a.visible) {
			return a, openBrowserCmd(a.visible[a.cursor].Gap.URL)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.causeFilter = nextCause(a.causeFilter)
		a.cursor = 0
		a.applyFilters()
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func nextCause(current string) string {
	for i, c := range causeCycle {
		if c == current {
			return causeCycle[(i+1)%len(causeCycle)]
		}
	}
	return ""
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.applyFilters()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.cursor = 0
	a.applyFilters()
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  gap browser")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	headerHeight := 1
	barHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - barHeight - statusHeight - 4 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(a.width) * 0.4)
	detailWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("digest gaps")
	headerRight := headerCountStyle.Render(fmt.Sprintf("%d of %d", len(a.visible), len(a.all)))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	bar := a.renderFilterBar()
	if a.mode == modeSearch {
		bar = a.searchInput.View()
	}

	innerListW := listWidth - 4
	listContent := renderList(a.visible, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var selected *analyze.AnnotatedGap
	if len(a.visible) > 0 && a.cursor < len(a.visible) {
		selected = &a.visible[a.cursor]
	}
	innerDetailW := detailWidth - 4
	detailContent := scrollLines(renderDetail(selected, innerDetailW), a.detailScroll, contentHeight)

	var detailPane string
	if a.focus == focusDetail {
		detailPane = detailPaneActiveStyle.Width(detailWidth - 2).Height(contentHeight).Render(detailContent)
	} else {
		detailPane = detailPaneStyle.Width(detailWidth - 2).Height(contentHeight).Render(detailContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	status := fmt.Sprintf("%d gaps", len(a.visible))
	if a.causeFilter != "" {
		status += "  filter: " + a.causeFilter
	}
	status += "  ·  j/k move  tab focus  o open  f filter  / search  ? help  q quit"
	statusLine := statusBarStyle.Width(a.width).Render(status)

	if a.err != nil {
		statusLine = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, content, statusLine)
}

func (a *App) renderFilterBar() string {
	var parts []string
	for _, c := range causeCycle {
		label := c
		if c == "" {
			label = "all"
		}
		if c == a.causeFilter {
			parts = append(parts, badgeStyle(c).Render("["+label+"]"))
		} else {
			parts = append(parts, lipgloss.NewStyle().Foreground(colorDim).Render(label))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func scrollLines(s string, offset, height int) string {
	lines := strings.Split(s, "\n")
	if offset >= len(lines) {
		offset = len(lines) - 1
	}
	if offset < 0 {
		offset = 0
	}
	lines = lines[offset:]
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("gap browser")
	dim := lipgloss.NewStyle().Foreground(colorDim)

	help := title + dim.Render(" — Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate gap list\n" +
		"  tab           Switch focus between list and detail\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open reference article in browser\n" +
		"  /             Search gap titles\n" +
		"  f             Cycle cause filter\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 3).
		Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the gap browser.
func Run(gaps []analyze.AnnotatedGap) error {
	app := NewApp(gaps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
