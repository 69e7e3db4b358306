package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for cinlook
type KeyMap struct {
	Leader key.Binding
	Quit   key.Binding

	// After the leader
	ToggleDebug    key.Binding
	ToggleMode     key.Binding
	CommandPalette key.Binding
	Keynames       key.Binding
	Info           key.Binding
	Help           key.Binding

	// Panes
	CyclePane     key.Binding
	CyclePanePrev key.Binding
	ClosePane     key.Binding

	// Composition
	Erase  key.Binding
	Clear  key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

// DefaultKeyMap provides the default keybindings
var DefaultKeyMap = func() KeyMap {
	cfg := DefaultConfig()
	return cfg.ToKeyMap()
}()

// ShortHelp returns keybindings for the short help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleMode, k.Keynames, k.CommandPalette, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleMode, k.Keynames, k.Info, k.ToggleDebug},
		{k.CommandPalette, k.CyclePane, k.CyclePanePrev, k.ClosePane},
		{k.Erase, k.Clear, k.Select, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}
