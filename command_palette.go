package main

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Command is an entry in the palette
type Command struct {
	Name    string
	Help    string
	Binding key.Binding // shown next to the name when enabled
}

// paletteCommands lists what the palette can run, bound to km for display.
func paletteCommands(km KeyMap) []Command {
	return []Command{
		{Name: "mode", Help: "switch compose / reverse", Binding: km.ToggleMode},
		{Name: "keynames", Help: "list keystrokes and symbols", Binding: km.Keynames},
		{Name: "info", Help: "show table details", Binding: km.Info},
		{Name: "debug", Help: "toggle the debug log", Binding: km.ToggleDebug},
		{Name: "reload", Help: "reload both tables from disk"},
		{Name: "clear", Help: "clear composed text and history", Binding: km.Clear},
		{Name: "quit", Help: "exit cinlook", Binding: km.Quit},
	}
}

// CommandPalette is a searchable command list
type CommandPalette struct {
	commands       []Command
	filtered       []Command
	query          string
	selected       int
	scrollOffset   int    // First visible item index
	SelectedAction string // Set when Enter pressed
}

// NewCommandPalette creates a command palette with the given commands
func NewCommandPalette(commands []Command) *CommandPalette {
	return &CommandPalette{
		commands: commands,
		filtered: commands,
	}
}

// filter keeps commands matching the query, names starting with it first.
func (c *CommandPalette) filter() {
	if c.query == "" {
		c.filtered = c.commands
	} else {
		q := strings.ToLower(c.query)
		c.filtered = nil
		for _, cmd := range c.commands {
			if strings.Contains(cmd.Name, q) || strings.Contains(strings.ToLower(cmd.Help), q) {
				c.filtered = append(c.filtered, cmd)
			}
		}
		sort.SliceStable(c.filtered, func(i, j int) bool {
			return strings.HasPrefix(c.filtered[i].Name, q) && !strings.HasPrefix(c.filtered[j].Name, q)
		})
	}

	if c.selected >= len(c.filtered) {
		c.selected = len(c.filtered) - 1
	}
	if c.selected < 0 {
		c.selected = 0
	}
	c.scrollOffset = 0
}

func (c *CommandPalette) Title() string {
	return "Commands"
}

func (c *CommandPalette) Render(w, h int) string {
	var sb strings.Builder

	promptStyle := lipgloss.NewStyle().Foreground(AccentColor)
	sb.WriteString(promptStyle.Render(": "))
	sb.WriteString(c.query)
	sb.WriteString(cursorStyle.Render(" "))
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat("─", w))
	sb.WriteString("\n")

	selectedStyle := lipgloss.NewStyle().Background(AccentColor).Foreground(lipgloss.Color("0"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	listH := h - 2
	if listH < 1 {
		listH = 1
	}
	c.AdjustScroll(listH)

	nameW := 10
	visible := 0
	for i := c.scrollOffset; i < len(c.filtered) && visible < listH; i++ {
		cmd := c.filtered[i]
		name := padRight(cmd.Name, nameW)
		if i == c.selected {
			name = selectedStyle.Render(name)
		}
		line := name + " " + helpStyle.Render(cmd.Help)
		if cmd.Binding.Enabled() {
			line += " " + keyStyle.Render(cmd.Binding.Help().Key)
		}
		sb.WriteString(fitWidth(line, w))
		visible++
		if visible < listH {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func (c *CommandPalette) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		if c.selected > 0 {
			c.selected--
		}
		return true

	case tea.KeyDown:
		if c.selected < len(c.filtered)-1 {
			c.selected++
		}
		return true

	case tea.KeyEnter:
		if c.selected >= 0 && c.selected < len(c.filtered) {
			c.SelectedAction = c.filtered[c.selected].Name
		}
		return true

	case tea.KeyBackspace:
		if len(c.query) > 0 {
			c.query = c.query[:len(c.query)-1]
			c.filter()
		}
		return true

	case tea.KeyEscape:
		// Let parent handle escape
		return false

	default:
		if len(msg.Runes) > 0 {
			c.query += string(msg.Runes)
			c.filter()
			return true
		}
	}

	return false
}

// AdjustScroll ensures selected item is visible given the list height
func (c *CommandPalette) AdjustScroll(listH int) {
	if listH < 1 {
		listH = 1
	}
	if c.selected >= c.scrollOffset+listH {
		c.scrollOffset = c.selected - listH + 1
	}
	if c.selected < c.scrollOffset {
		c.scrollOffset = c.selected
	}
}

func (c *CommandPalette) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	if msg.Button == tea.MouseButtonLeft && y >= 2 {
		idx := c.scrollOffset + y - 2 // query line and separator
		if idx >= 0 && idx < len(c.filtered) {
			c.selected = idx
			c.SelectedAction = c.filtered[c.selected].Name
			return true
		}
	}
	return false
}
