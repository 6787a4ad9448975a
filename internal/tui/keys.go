package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	FilterPair key.Binding
	Down       key.Binding
	Up         key.Binding
}

var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	FilterPair: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle pair")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "scroll down")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "scroll up")),
}
