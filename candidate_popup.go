package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/cursork/cinlook/cin"
	"github.com/mattn/go-runewidth"
)

// CandidatePopup holds the candidates of an ambiguous commit.
// This is NOT a pane - it is drawn over the session while the session keeps focus.
type CandidatePopup struct {
	Key      string // the committed symbols, for the title
	Options  []cin.Annotation
	Selected int
}

// NewCandidatePopup creates popup state for results in ranking order
func NewCandidatePopup(key string, results []cin.Annotation) *CandidatePopup {
	return &CandidatePopup{Key: key, Options: results}
}

// CycleNext moves selection to next option (wraps around)
func (a *CandidatePopup) CycleNext() {
	if len(a.Options) == 0 {
		return
	}
	a.Selected = (a.Selected + 1) % len(a.Options)
}

// CyclePrev moves selection to previous option (wraps around)
func (a *CandidatePopup) CyclePrev() {
	if len(a.Options) == 0 {
		return
	}
	a.Selected = (a.Selected - 1 + len(a.Options)) % len(a.Options)
}

// Pick selects the 1-based nth visible option. It reports false when there
// is no such option.
func (a *CandidatePopup) Pick(n int) bool {
	if n < 1 || n > 9 || n > len(a.Options) {
		return false
	}
	a.Selected = n - 1
	return true
}

// SelectedOption returns the currently selected candidate
func (a *CandidatePopup) SelectedOption() (cin.Annotation, bool) {
	if a.Selected >= 0 && a.Selected < len(a.Options) {
		return a.Options[a.Selected], true
	}
	return cin.Annotation{}, false
}

func (a *CandidatePopup) label(i int) string {
	prefix := "  "
	if i < 9 {
		prefix = strconv.Itoa(i+1) + " "
	}
	return prefix + a.Options[i].String()
}

// Render returns the popup for overlay rendering
func (a *CandidatePopup) Render(maxW, maxH int) string {
	if len(a.Options) == 0 {
		return ""
	}

	selectedStyle := lipgloss.NewStyle().Background(AccentColor).Foreground(lipgloss.Color("0"))
	borderStyle := lipgloss.NewStyle().Foreground(AccentColor)

	contentW := a.Width() - 2
	if contentW > maxW-2 {
		contentW = maxW - 2
	}
	contentH := a.Height(maxH) - 2

	// Keep the selection visible
	scrollOffset := 0
	if a.Selected >= contentH {
		scrollOffset = a.Selected - contentH + 1
	}

	var lines []string
	title := runewidth.Truncate(" "+a.Key+" ", contentW, "")
	lines = append(lines, borderStyle.Render("┌"+title+strings.Repeat("─", contentW-runewidth.StringWidth(title))+"┐"))

	for i := scrollOffset; i < len(a.Options) && i < scrollOffset+contentH; i++ {
		opt := runewidth.Truncate(a.label(i), contentW, "…")
		padded := runewidth.FillRight(opt, contentW)

		if i == a.Selected {
			lines = append(lines, borderStyle.Render("│")+selectedStyle.Render(padded)+borderStyle.Render("│"))
		} else {
			lines = append(lines, borderStyle.Render("│")+padded+borderStyle.Render("│"))
		}
	}

	lines = append(lines, borderStyle.Render("└"+strings.Repeat("─", contentW)+"┘"))

	return strings.Join(lines, "\n")
}

// Width returns the rendered width of the popup
func (a *CandidatePopup) Width() int {
	w := 10
	if kw := runewidth.StringWidth(a.Key) + 2; kw > w {
		w = kw
	}
	for i := range a.Options {
		if lw := runewidth.StringWidth(a.label(i)); lw > w {
			w = lw
		}
	}
	return w + 2 // borders
}

// Height returns the rendered height of the popup
func (a *CandidatePopup) Height(maxH int) int {
	h := len(a.Options)
	if h > maxH-2 {
		h = maxH - 2
	}
	if h < 1 {
		h = 1
	}
	return h + 2 // borders
}
