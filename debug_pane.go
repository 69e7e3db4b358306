package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cursork/cinlook/logger"
)

// DebugPane displays the log ring using a viewport
type DebugPane struct {
	viewport  viewport.Model
	ring      *logger.Ring
	lastTotal int // Track ring total for auto-scroll
}

// NewDebugPane creates a debug pane backed by the given ring
func NewDebugPane(ring *logger.Ring) *DebugPane {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	return &DebugPane{
		viewport: vp,
		ring:     ring,
	}
}

func (d *DebugPane) Title() string {
	return "debug"
}

func (d *DebugPane) Render(w, h int) string {
	d.viewport.Width = w
	d.viewport.Height = h

	d.viewport.SetContent(strings.Join(d.ring.Lines(), "\n"))

	// Auto-scroll to bottom if new lines arrived
	if total := d.ring.Total(); total > d.lastTotal {
		d.viewport.GotoBottom()
		d.lastTotal = total
	}

	return d.viewport.View()
}

func (d *DebugPane) HandleKey(msg tea.KeyMsg) bool {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd != nil
}

func (d *DebugPane) HandleMouse(x, y int, msg tea.MouseMsg) bool {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd != nil
}
