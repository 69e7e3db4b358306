package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/cursork/cinlook/cin"
)

// InfoPane displays rendered markdown describing the loaded tables.
type InfoPane struct {
	markdown string
	lines    []string
	width    int // width lines were rendered at
	scroll   int
}

// RenderMarkdown pre-renders markdown for terminal display at the given width.
func RenderMarkdown(markdown string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// tableInfoMarkdown describes the coordinator's tables.
func tableInfoMarkdown(coord *cin.Coordinator, paths TablePaths) string {
	var sb strings.Builder
	writeTable := func(role, path string, t *cin.Table) {
		st := t.Stats()
		name := st.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&sb, "## %s: %s\n\n", role, name)
		sb.WriteString("| | |\n|---|---|\n")
		fmt.Fprintf(&sb, "| file | `%s` |\n", path)
		fmt.Fprintf(&sb, "| keynames | %d |\n", st.Tokens)
		fmt.Fprintf(&sb, "| keys | %d |\n", st.Keys)
		fmt.Fprintf(&sb, "| characters | %d |\n", st.Chars)
		fmt.Fprintf(&sb, "| entries | %d |\n", st.Entries)
		var terms []string
		for _, s := range st.Terminators {
			terms = append(terms, displayToken(s))
		}
		fmt.Fprintf(&sb, "| terminators | %s |\n\n", strings.Join(terms, " "))
	}

	sb.WriteString("# Tables\n\n")
	writeTable("compose", paths.Compose, coord.Compose())
	if coord.Reference() != coord.Compose() {
		writeTable("reference", paths.reference(), coord.Reference())
	} else {
		sb.WriteString("The composition table is also the reference table.\n")
	}
	return sb.String()
}

func NewInfoPane(markdown string) *InfoPane {
	return &InfoPane{markdown: markdown}
}

func (d *InfoPane) Title() string {
	return "table info"
}

func (d *InfoPane) Render(w, h int) string {
	if w != d.width || d.lines == nil {
		rendered := RenderMarkdown(d.markdown, w)
		d.lines = strings.Split(strings.TrimRight(rendered, "\n"), "\n")
		d.width = w
	}

	var sb strings.Builder
	end := d.scroll + h
	if end > len(d.lines) {
		end = len(d.lines)
	}
	for i := d.scroll; i < end; i++ {
		sb.WriteString(d.lines[i])
		if i < end-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func (d *InfoPane) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		d.scrollUp(1)
	case tea.KeyDown:
		d.scrollDown(1)
	case tea.KeyPgUp:
		d.scrollUp(20)
	case tea.KeyPgDown:
		d.scrollDown(20)
	default:
		if len(msg.Runes) == 1 {
			switch msg.Runes[0] {
			case 'j':
				d.scrollDown(1)
			case 'k':
				d.scrollUp(1)
			default:
				return false
			}
		} else {
			return false
		}
	}
	return true
}

func (d *InfoPane) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	switch msg.Type {
	case tea.MouseWheelUp:
		d.scrollUp(3)
		return true
	case tea.MouseWheelDown:
		d.scrollDown(3)
		return true
	}
	return false
}

func (d *InfoPane) scrollUp(n int) {
	d.scroll -= n
	if d.scroll < 0 {
		d.scroll = 0
	}
}

func (d *InfoPane) scrollDown(n int) {
	d.scroll += n
	limit := len(d.lines) - 5
	if limit < 0 {
		limit = 0
	}
	if d.scroll > limit {
		d.scroll = limit
	}
}
