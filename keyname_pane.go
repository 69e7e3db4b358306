package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/cursork/cinlook/cin"
	"github.com/mattn/go-runewidth"
)

// keyname is one declared keystroke and the symbol it shows.
type keyname struct {
	Token  string
	Symbol string
}

// KeynamePane is a searchable list of the composition table's keynames
type KeynamePane struct {
	all            []keyname
	filtered       []keyname
	query          string
	selected       int
	scroll         int    // Scroll offset
	height         int    // List height at last render
	SelectedSymbol string // Set when Enter pressed
}

// NewKeynamePane lists the keynames of codec in declaration order
func NewKeynamePane(codec *cin.Codec) *KeynamePane {
	var all []keyname
	for _, p := range codec.Pairs() {
		all = append(all, keyname{Token: p[0], Symbol: p[1]})
	}
	return &KeynamePane{all: all, filtered: all, height: 15}
}

func (s *KeynamePane) filter() {
	if s.query == "" {
		s.filtered = s.all
		s.selected = 0
		s.scroll = 0
		return
	}

	q := strings.ToLower(s.query)
	s.filtered = nil
	for _, k := range s.all {
		if strings.Contains(strings.ToLower(k.Token), q) || strings.Contains(k.Symbol, s.query) {
			s.filtered = append(s.filtered, k)
		}
	}

	if s.selected >= len(s.filtered) {
		s.selected = len(s.filtered) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	s.scroll = 0
}

func (s *KeynamePane) Title() string {
	return "keynames"
}

func (s *KeynamePane) Render(w, h int) string {
	var sb strings.Builder

	// Query line
	promptStyle := lipgloss.NewStyle().Foreground(AccentColor)
	sb.WriteString(promptStyle.Render("/ "))
	sb.WriteString(s.query)
	sb.WriteString(cursorStyle.Render(" "))
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat("─", w))
	sb.WriteString("\n")

	selectedStyle := lipgloss.NewStyle().Background(AccentColor).Foreground(lipgloss.Color("0"))
	symStyle := lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	listH := h - 2
	if listH < 1 {
		listH = 1
	}
	s.height = listH
	if s.selected >= s.scroll+listH {
		s.scroll = s.selected - listH + 1
	}

	for i := s.scroll; i < len(s.filtered) && i < s.scroll+listH; i++ {
		k := s.filtered[i]
		sym := " " + runewidth.FillRight(k.Symbol, 2) + " "
		token := keyStyle.Render(displayToken(k.Token))

		if i == s.selected {
			sb.WriteString(selectedStyle.Render(sym) + " " + token)
		} else {
			sb.WriteString(symStyle.Render(sym) + " " + token)
		}

		if i < len(s.filtered)-1 && i < s.scroll+listH-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// displayToken makes whitespace tokens visible.
func displayToken(t string) string {
	switch t {
	case " ":
		return "␠"
	case "\t":
		return "⇥"
	}
	return t
}

func (s *KeynamePane) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		if s.selected > 0 {
			s.selected--
			if s.selected < s.scroll {
				s.scroll = s.selected
			}
		}
		return true

	case tea.KeyDown:
		if s.selected < len(s.filtered)-1 {
			s.selected++
			if s.selected >= s.scroll+s.height {
				s.scroll = s.selected - s.height + 1
			}
		}
		return true

	case tea.KeyEnter:
		if s.selected >= 0 && s.selected < len(s.filtered) {
			s.SelectedSymbol = s.filtered[s.selected].Symbol
		}
		return true

	case tea.KeyBackspace:
		if len(s.query) > 0 {
			r := []rune(s.query)
			s.query = string(r[:len(r)-1])
			s.filter()
		}
		return true

	default:
		if len(msg.Runes) > 0 {
			s.query += string(msg.Runes)
			s.filter()
			return true
		}
	}

	return false
}

func (s *KeynamePane) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	if msg.Type == tea.MouseLeft && y >= 2 {
		idx := s.scroll + y - 2
		if idx >= 0 && idx < len(s.filtered) {
			s.selected = idx
			s.SelectedSymbol = s.filtered[s.selected].Symbol
			return true
		}
	}
	return false
}
