package analyze

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/kai-kun-ai/security-news-digest/internal/browser"
	"github.com/kai-kun-ai/security-news-digest/internal/config"
)

// Command is one parsed line of session input.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a session input line into a lowercased command name
// and its arguments.
func ParseCommand(line string) Command {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return Command{}
	}
	parts := strings.Fields(raw)
	return Command{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

const sessionHelp = `Commands: list | detail <n> | suggest | show-fix <n> | apply <n> | open <n> | help | quit/q
list shows the gaps, detail the classified cause, suggest the full report,
apply attempts the config change for fixable causes, open launches the browser.`

// RunSession drives the interactive gap-review loop. apply asks for
// confirmation before writing the config and prints the resulting diff.
func RunSession(gaps []AnnotatedGap, suggestions string, cfg *config.Config) error {
	rl, err := readline.New("analyze-gap> ")
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer rl.Close()

	fmt.Println("Entering interactive gap analysis session.")
	fmt.Println(sessionHelp)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			fmt.Println("Bye.")
			return nil
		}

		cmd := ParseCommand(line)
		switch cmd.Name {
		case "quit", "q", "exit":
			fmt.Println("Bye.")
			return nil

		case "help", "h", "?":
			fmt.Println(sessionHelp)

		case "list":
			if len(gaps) == 0 {
				fmt.Println("No gaps.")
				continue
			}
			for i, g := range gaps {
				fmt.Printf("[%d] %s (%s)\n", i+1, g.Gap.Title, g.Cause.Cause)
			}

		case "detail":
			g, ok := pickGap(gaps, cmd.Args, "detail")
			if !ok {
				continue
			}
			fmt.Printf("Title: %s\nURL: %s\nCause: %s\nDetail: %s\n", g.Gap.Title, g.Gap.URL, g.Cause.Cause, g.Cause.Detail)

		case "suggest":
			fmt.Println(suggestions)

		case "show-fix":
			g, ok := pickGap(gaps, cmd.Args, "show-fix")
			if !ok {
				continue
			}
			if g.Cause.Suggestion == "" {
				fmt.Println("(no suggestion)")
			} else {
				fmt.Println(g.Cause.Suggestion)
			}

		case "open":
			g, ok := pickGap(gaps, cmd.Args, "open")
			if !ok {
				continue
			}
			if err := browser.Open(g.Gap.URL); err != nil {
				fmt.Printf("cannot open: %v\n", err)
			}

		case "apply":
			g, ok := pickGap(gaps, cmd.Args, "apply")
			if !ok {
				continue
			}
			applyFix(rl, g, cfg)

		case "":
			// blank line

		default:
			fmt.Println("Unknown command. Type 'help'.")
		}
	}
}

func pickGap(gaps []AnnotatedGap, args []string, usage string) (AnnotatedGap, bool) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s <n>\n", usage)
		return AnnotatedGap{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("n must be an integer")
		return AnnotatedGap{}, false
	}
	if n < 1 || n > len(gaps) {
		fmt.Println("out of range")
		return AnnotatedGap{}, false
	}
	return gaps[n-1], true
}

// applyFix mutates the config for the causes that map to a mechanical
// change: widening the window, adding an interest keyword, or appending a
// feed placeholder for the missed domain.
func applyFix(rl *readline.Instance, g AnnotatedGap, cfg *config.Config) {
	var actionDesc string
	apply := func() {}

	switch g.Cause.Cause {
	case CauseOutsideWindow:
		cur := cfg.GetWindowDays()
		next := cur
		if next < 7 {
			next = 7
		}
		actionDesc = fmt.Sprintf("Set window_days: %d -> %d", cur, next)
		apply = func() { cfg.WindowDays = next }

	case CauseInterestFiltered:
		fmt.Println("Enter a keyword to add to interest_keywords:")
		kw, err := readlinePrompt(rl, "keyword> ")
		if err != nil || strings.TrimSpace(kw) == "" {
			fmt.Println("Canceled (empty keyword).")
			return
		}
		kw = strings.TrimSpace(kw)
		actionDesc = fmt.Sprintf("Add interest keyword: %s", kw)
		apply = func() {
			for _, existing := range cfg.InterestKeywords {
				if existing == kw {
					return
				}
			}
			cfg.InterestKeywords = append(cfg.InterestKeywords, kw)
		}

	case CauseFeedMissing:
		dom := extractDomain(g.Gap.URL)
		name := dom
		if name == "" {
			name = "new-source"
		}
		feedURL := ""
		if dom != "" {
			feedURL = "https://" + dom + "/feed"
		}
		actionDesc = fmt.Sprintf("Append feed placeholder for domain: %s", dom)
		apply = func() {
			cfg.Feeds = append(cfg.Feeds, config.Feed{Name: name, URL: feedURL, Lang: "en"})
		}

	default:
		fmt.Println("This fix cannot be applied automatically.")
		return
	}

	fmt.Printf("About to apply change: %s\n", actionDesc)
	confirm, err := readlinePrompt(rl, "Proceed? [y/N] ")
	if err != nil {
		fmt.Println("Canceled.")
		return
	}
	confirm = strings.ToLower(strings.TrimSpace(confirm))
	if confirm != "y" && confirm != "yes" {
		fmt.Println("Canceled.")
		return
	}

	before, _ := os.ReadFile(cfg.Path())
	apply()
	if err := cfg.Save(); err != nil {
		fmt.Printf("applying change: %v\n", err)
		return
	}
	after, _ := os.ReadFile(cfg.Path())

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: cfg.Path(),
		ToFile:   cfg.Path(),
		Context:  3,
	})
	fmt.Println("Applied. Diff:")
	if diff == "" {
		fmt.Println("(no diff)")
	} else {
		fmt.Print(diff)
	}
}

func readlinePrompt(rl *readline.Instance, prompt string) (string, error) {
	rl.SetPrompt(prompt)
	defer rl.SetPrompt("analyze-gap> ")
	return rl.Readline()
}
