package main

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/cursork/cinlook/cin"
	"github.com/cursork/cinlook/logger"
	"github.com/mattn/go-runewidth"
)

// AccentColor is set from the config at startup
var AccentColor color.Color = lipgloss.Color("63")

// Cursor style - inverted colors
var cursorStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("255")).
	Foreground(lipgloss.Color("0"))

var (
	bufferStyle = lipgloss.NewStyle().Underline(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Mode selects what typed keys do.
type Mode int

const (
	ModeCompose Mode = iota // keys are keystroke tokens of the composition table
	ModeReverse             // keys are text to annotate
)

func (md Mode) String() string {
	if md == ModeReverse {
		return "reverse"
	}
	return "compose"
}

// Model holds all state for the TUI.
type Model struct {
	coord   *cin.Coordinator
	paths   TablePaths
	opts    []cin.Option
	reloads <-chan reloadEvent

	mode     Mode
	buffer   []string // symbols typed since the last commit
	composed string   // committed characters of the current line
	input    []rune   // reverse mode line
	history  []string
	scroll   int // history lines scrolled back from the bottom

	status    string
	statusErr bool

	popup  *CandidatePopup
	leader bool // leader pressed, waiting for the action key

	// Floating panes
	panes       *PaneManager
	keynamePane *KeynamePane
	infoPane    *InfoPane
	palette     *CommandPalette

	help help.Model
	keys KeyMap

	// Terminal dimensions
	width  int
	height int
}

// watchClosedMsg reports that the table watcher stopped.
type watchClosedMsg struct{}

// NewModel creates a Model around a loaded coordinator. reloads may be nil
// when table files are not watched.
func NewModel(coord *cin.Coordinator, paths TablePaths, keys KeyMap, reloads <-chan reloadEvent, opts ...cin.Option) Model {
	m := Model{
		coord:   coord,
		paths:   paths,
		opts:    opts,
		reloads: reloads,
		panes:   NewPaneManager(80, 24), // Will be updated on WindowSizeMsg
		help:    help.New(),
		keys:    keys,
	}
	m.log("tables ready: %s", m.title())
	return m
}

func (m *Model) log(format string, args ...any) {
	logger.Logger.Debugf(format, args...)
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = true
	logger.Logger.Warn(m.status)
}

// waitForReload waits for the next reload from the table watcher.
func waitForReload(ch <-chan reloadEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return ev
	}
}

// reloadCmd reloads the tables off the UI goroutine.
func reloadCmd(paths TablePaths, opts []cin.Option) tea.Cmd {
	return func() tea.Msg {
		coord, err := LoadTables(context.Background(), paths, opts...)
		return reloadEvent{coord: coord, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	return waitForReload(m.reloads)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panes.UpdateSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case reloadEvent:
		return m.handleReload(msg)

	case watchClosedMsg:
		m.log("table watcher stopped")
		m.reloads = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.leader {
		m.leader = false
		return m.handleLeader(msg)
	}
	if key.Matches(msg, m.keys.Leader) {
		m.leader = true
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CyclePane):
		if m.panes.HasPanes() {
			m.panes.FocusNext()
		}
		return m, nil

	case key.Matches(msg, m.keys.CyclePanePrev):
		if m.panes.HasPanes() {
			m.panes.FocusPrev()
		}
		return m, nil

	case key.Matches(msg, m.keys.ClosePane):
		switch {
		case m.panes.FocusedPane() != nil:
			m.closePane(m.panes.FocusedPane().ID)
		case m.popup != nil:
			m.popup = nil
		default:
			m.buffer = nil
		}
		return m, nil
	}

	// Route to focused pane first
	if fp := m.panes.FocusedPane(); fp != nil && fp.Content != nil {
		if fp.Content.HandleKey(msg) {
			return m.checkPaneActions()
		}
	}

	if m.popup != nil {
		if done := m.handlePopupKey(msg); done {
			return m, nil
		}
	}

	return m.handleSessionKey(msg)
}

// handleLeader runs the action bound to the key pressed after the leader.
func (m Model) handleLeader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleDebug):
		m.toggleDebugPane()
	case key.Matches(msg, m.keys.ToggleMode):
		m.toggleMode()
	case key.Matches(msg, m.keys.CommandPalette):
		m.togglePalette()
	case key.Matches(msg, m.keys.Keynames):
		m.toggleKeynamePane()
	case key.Matches(msg, m.keys.Info):
		m.toggleInfoPane()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Leader):
	default:
		m.setError("nothing bound to %s %s", m.keys.Leader.Help().Key, msg.String())
	}
	return m, nil
}

// checkPaneActions acts on a selection made inside a pane.
func (m Model) checkPaneActions() (tea.Model, tea.Cmd) {
	if m.palette != nil && m.palette.SelectedAction != "" {
		action := m.palette.SelectedAction
		m.closePane("commands")
		return m.runCommand(action)
	}
	if m.keynamePane != nil && m.keynamePane.SelectedSymbol != "" {
		sym := m.keynamePane.SelectedSymbol
		m.keynamePane.SelectedSymbol = ""
		if m.mode == ModeCompose {
			m.feed(sym)
		} else {
			m.input = append(m.input, []rune(sym)...)
		}
	}
	return m, nil
}

func (m Model) runCommand(name string) (tea.Model, tea.Cmd) {
	m.log("command %s", name)
	switch name {
	case "mode":
		m.toggleMode()
	case "keynames":
		m.toggleKeynamePane()
	case "info":
		m.toggleInfoPane()
	case "debug":
		m.toggleDebugPane()
	case "reload":
		m.setStatus("reloading…")
		return m, reloadCmd(m.paths, m.opts)
	case "clear":
		m.clear()
	case "quit":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleReload(ev reloadEvent) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if ev.watched && m.reloads != nil {
		cmd = waitForReload(m.reloads)
	}
	if ev.err != nil {
		// Keep the tables we have.
		m.setError("reload failed: %v", ev.err)
		return m, cmd
	}

	m.coord = ev.coord
	m.buffer = nil
	m.popup = nil
	if m.keynamePane != nil {
		m.keynamePane = NewKeynamePane(m.coord.Compose().Codec())
		m.replacePane("keynames", m.keynamePane)
	}
	if m.infoPane != nil {
		m.infoPane = NewInfoPane(tableInfoMarkdown(m.coord, m.paths))
		m.replacePane("info", m.infoPane)
	}
	m.setStatus("reloaded %s", m.title())
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == ModeCompose {
		m.mode = ModeReverse
	} else {
		m.mode = ModeCompose
	}
	m.buffer = nil
	m.popup = nil
	m.setStatus("%s mode", m.mode)
}

func (m *Model) clear() {
	m.buffer = nil
	m.composed = ""
	m.input = nil
	m.history = nil
	m.popup = nil
	m.scroll = 0
	m.status = ""
}

func (m Model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Erase):
		m.erase()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.buffer = nil
		m.composed = ""
		m.input = nil
		return m, nil

	case key.Matches(msg, m.keys.Select):
		m.submit()
		return m, nil
	}

	var runes []rune
	switch msg.Type {
	case tea.KeySpace:
		runes = []rune{' '}
	case tea.KeyRunes:
		runes = msg.Runes
	default:
		return m, nil
	}

	for _, r := range runes {
		if m.mode == ModeReverse {
			m.input = append(m.input, r)
			continue
		}
		m.typeKey(string(r))
		if m.popup != nil {
			break
		}
	}
	return m, nil
}

// typeKey feeds one keystroke token to the coordinator as its symbol.
func (m *Model) typeKey(token string) {
	sym, ok := m.coord.Compose().Codec().Symbol(token)
	if !ok {
		if token != cin.Space {
			m.log("undeclared key %q", token)
			m.setError("%q is not a key of %s", token, tableName(m.coord.Compose()))
			return
		}
		sym = cin.Space
	}
	m.feed(sym)
}

// feed hands one symbol to the coordinator and acts on a commit.
func (m *Model) feed(sym string) {
	step, err := m.coord.OnSymbol(m.buffer, sym)
	if err != nil {
		m.buffer = nil
		m.setError("%v", err)
		return
	}
	if !step.Committed {
		m.buffer = step.Buffer
		m.status = ""
		return
	}

	label := strings.Join(step.Buffer, "")
	if sym != cin.Space {
		label += sym
	}
	m.buffer = nil

	switch len(step.Results) {
	case 0:
		if len(step.Buffer) > 0 {
			m.setError("no characters for %s", label)
		}
	case 1:
		m.accept(step.Results[0])
	default:
		m.popup = NewCandidatePopup(label, step.Results)
	}
}

func (m *Model) accept(a cin.Annotation) {
	m.composed += a.Char
	m.history = append(m.history, a.String())
	m.scroll = 0
	m.status = ""
	m.log("commit %s", a)
}

// handlePopupKey drives the candidate popup. It reports false for keys the
// popup does not use; the current candidate is then accepted and the key
// handled as usual.
func (m *Model) handlePopupKey(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.popup.CyclePrev()
		return true
	case key.Matches(msg, m.keys.Down), msg.Type == tea.KeySpace:
		m.popup.CycleNext()
		return true
	case key.Matches(msg, m.keys.Select):
		m.acceptPopup()
		return true
	case key.Matches(msg, m.keys.Erase):
		m.popup = nil
		return true
	}
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r <= '9' && m.popup.Pick(int(r-'0')) {
			m.acceptPopup()
			return true
		}
	}
	m.acceptPopup()
	return false
}

func (m *Model) acceptPopup() {
	if a, ok := m.popup.SelectedOption(); ok {
		m.accept(a)
	}
	m.popup = nil
}

func (m *Model) erase() {
	switch {
	case m.mode == ModeReverse:
		if n := len(m.input); n > 0 {
			m.input = m.input[:n-1]
		}
	case len(m.buffer) > 0:
		m.buffer = m.coord.OnErase(m.buffer)
	case m.composed != "":
		r := []rune(m.composed)
		m.composed = string(r[:len(r)-1])
	}
}

// submit finishes the current line: the composed text in compose mode, or
// the annotation of the typed text in reverse mode.
func (m *Model) submit() {
	if m.mode == ModeCompose {
		if len(m.buffer) > 0 {
			m.feed(cin.Space)
			return
		}
		if m.composed == "" {
			return
		}
		m.history = append(m.history, "» "+m.composed)
		m.composed = ""
		m.scroll = 0
		return
	}

	text := string(m.input)
	if strings.TrimSpace(text) == "" {
		return
	}
	anns, err := m.coord.Annotate(text)
	if err != nil {
		m.setError("%v", err)
		return
	}
	m.history = append(m.history, "« "+text)
	for _, a := range anns {
		m.history = append(m.history, a.String())
	}
	m.input = nil
	m.scroll = 0
	m.status = ""
}

// paneHeight is the height available to panes below the top border.
func (m *Model) paneHeight() int {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 4
	}
	h := m.height - helpHeight - 2 - 2
	if h < 10 {
		h = 10
	}
	return h
}

func (m *Model) openPane(id string, content PaneContent, x, w int) {
	if x+w > m.width {
		x = m.width - w - 2
	}
	if x < 0 {
		x = 0
	}
	m.panes.Add(NewPane(id, content, x, 1, w, m.paneHeight()))
	m.panes.Focus(id)
}

func (m *Model) replacePane(id string, content PaneContent) {
	if p := m.panes.Get(id); p != nil {
		p.Content = content
	}
}

func (m *Model) closePane(id string) {
	m.panes.Remove(id)
	switch id {
	case "keynames":
		m.keynamePane = nil
	case "info":
		m.infoPane = nil
	case "commands":
		m.palette = nil
	}
}

func (m *Model) toggleDebugPane() {
	if m.panes.Get("debug") != nil {
		m.closePane("debug")
		return
	}
	m.openPane("debug", NewDebugPane(logger.History()), m.width-52, 50)
}

func (m *Model) toggleKeynamePane() {
	if m.panes.Get("keynames") != nil {
		m.closePane("keynames")
		return
	}
	m.keynamePane = NewKeynamePane(m.coord.Compose().Codec())
	m.openPane("keynames", m.keynamePane, m.width-26, 24)
}

func (m *Model) toggleInfoPane() {
	if m.panes.Get("info") != nil {
		m.closePane("info")
		return
	}
	m.infoPane = NewInfoPane(tableInfoMarkdown(m.coord, m.paths))
	m.openPane("info", m.infoPane, (m.width-60)/2, 60)
}

func (m *Model) togglePalette() {
	if m.panes.Get("commands") != nil {
		m.closePane("commands")
		return
	}
	m.palette = NewCommandPalette(paletteCommands(m.keys))
	m.openPane("commands", m.palette, (m.width-50)/2, 50)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Check if any pane is being dragged
	for _, id := range m.panes.zOrder {
		pane := m.panes.panes[id]
		if pane != nil && pane.dragging {
			switch msg.Type {
			case tea.MouseMotion:
				pane.UpdateDrag(msg.X, msg.Y, m.panes.screenW, m.panes.screenH)
				return m, nil
			case tea.MouseRelease:
				pane.StopDrag()
				return m, nil
			}
		}
	}

	pane := m.panes.PaneAt(msg.X, msg.Y)

	switch msg.Type {
	case tea.MouseLeft:
		if pane == nil {
			// Click on session - unfocus panes
			if fp := m.panes.FocusedPane(); fp != nil {
				fp.Focused = false
				m.panes.focusedID = ""
			}
			return m, nil
		}
		zone := pane.HitZone(msg.X, msg.Y)
		m.panes.Focus(pane.ID)
		switch zone {
		case ZoneTitleBar:
			pane.StartDrag(DragMove, msg.X, msg.Y)
		case ZoneEdgeN, ZoneEdgeS, ZoneEdgeE, ZoneEdgeW,
			ZoneCornerNE, ZoneCornerNW, ZoneCornerSE, ZoneCornerSW:
			pane.StartDrag(zoneToDragMode(zone), msg.X, msg.Y)
		case ZoneContent:
			if pane.Content != nil && pane.Content.HandleMouse(msg.X-pane.X-1, msg.Y-pane.Y-1, msg) {
				return m.checkPaneActions()
			}
		}
		return m, nil

	case tea.MouseWheelUp, tea.MouseWheelDown:
		if pane != nil && pane.Content != nil {
			pane.Content.HandleMouse(msg.X-pane.X-1, msg.Y-pane.Y-1, msg)
			return m, nil
		}
		if msg.Type == tea.MouseWheelUp {
			m.scroll = min(m.scroll+3, max(len(m.history)-1, 0))
		} else {
			m.scroll = max(m.scroll-3, 0)
		}
		return m, nil
	}

	return m, nil
}

func tableName(t *cin.Table) string {
	if name, ok := t.Name(); ok {
		return name
	}
	return "table"
}

func (m Model) title() string {
	compose, reference := m.coord.Compose(), m.coord.Reference()
	if compose == reference {
		return tableName(compose)
	}
	return tableName(compose) + " → " + tableName(reference)
}

func (m Model) View() string {
	w, h := m.width, m.height
	if w < 20 {
		w = 80
	}
	if h < 8 {
		h = 24
	}

	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 4
	}
	mainH := h - helpHeight

	base := m.viewSession(w, mainH)

	if m.popup != nil {
		contentH := mainH - 2
		promptY := 1 + contentH - 2
		block := m.popup.Render(w-4, contentH-2)
		y := promptY - m.popup.Height(contentH-2)
		if y < 1 {
			y = 1
		}
		x := 1 + ansi.StringWidth(m.promptPrefix()) + runewidth.StringWidth(m.composed)
		if x+m.popup.Width() > w {
			x = w - m.popup.Width()
		}
		base = Overlay(base, block, x, y, w)
	}

	// Composite floating panes over session
	if m.panes.HasPanes() {
		base = m.panes.Render(base)
	}

	m.help.Width = w
	helpView := m.help.View(m.keys)

	return base + "\n" + helpView
}

func (m Model) viewSession(w, h int) string {
	contentW := w - 2
	contentH := h - 2

	content := m.renderSession(contentW, contentH)
	return m.renderBox("cinlook: "+m.title(), content, contentW, contentH, AccentColor)
}

func (m Model) renderBox(title, content string, w, h int, borderColor color.Color) string {
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(borderColor).Bold(true)

	fill := w - runewidth.StringWidth(title) - 3
	if fill < 0 {
		fill = 0
	}
	topBorder := borderStyle.Render("╭─ ") + titleStyle.Render(title) + borderStyle.Render(" "+strings.Repeat("─", fill)+"╮")
	bottomBorder := "╰" + strings.Repeat("─", w) + "╯"

	contentLines := strings.Split(content, "\n")

	var sb strings.Builder
	sb.WriteString(topBorder)
	sb.WriteString("\n")
	for i := 0; i < h; i++ {
		line := ""
		if i < len(contentLines) {
			line = contentLines[i]
		}
		sb.WriteString(borderStyle.Render("│"))
		sb.WriteString(fitWidth(line, w))
		sb.WriteString(borderStyle.Render("│"))
		sb.WriteString("\n")
	}
	sb.WriteString(borderStyle.Render(bottomBorder))

	return sb.String()
}

func (m Model) promptPrefix() string {
	if m.mode == ModeReverse {
		return " reverse › "
	}
	return " " + tableName(m.coord.Compose()) + " › "
}

// renderSession lays out the history above a separator, the prompt line and
// the status line.
func (m Model) renderSession(w, h int) string {
	histH := h - 3
	if histH < 0 {
		histH = 0
	}

	end := len(m.history) - m.scroll
	start := end - histH
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, h)
	for _, l := range m.history[start:end] {
		lines = append(lines, " "+l)
	}
	for len(lines) < histH {
		lines = append([]string{""}, lines...)
	}

	lines = append(lines, dimStyle.Render(strings.Repeat("─", w)))

	promptStyle := lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	prompt := promptStyle.Render(m.promptPrefix())
	if m.mode == ModeReverse {
		prompt += string(m.input)
	} else {
		prompt += m.composed + bufferStyle.Render(strings.Join(m.buffer, ""))
	}
	prompt += cursorStyle.Render(" ")
	lines = append(lines, prompt)

	switch {
	case m.leader:
		lines = append(lines, dimStyle.Render(" "+m.keys.Leader.Help().Key+" …"))
	case m.status != "" && m.statusErr:
		lines = append(lines, errStyle.Render(" "+m.status))
	case m.status != "":
		lines = append(lines, dimStyle.Render(" "+m.status))
	default:
		var terms []string
		for _, t := range m.coord.Compose().Terminators() {
			terms = append(terms, displayToken(t))
		}
		lines = append(lines, dimStyle.Render(fmt.Sprintf(" %s mode · terminators %s", m.mode, strings.Join(terms, " "))))
	}

	return strings.Join(lines, "\n")
}
