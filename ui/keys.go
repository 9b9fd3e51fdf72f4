package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the client TUI.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	// View switching.
	TabQueue   key.Binding
	TabNetwork key.Binding
	TabRanking key.Binding
	TabConnect key.Binding

	// Queue mutations.
	Claim   key.Binding
	Unclaim key.Binding
	Resolve key.Binding

	// Network view.
	ZoomIn  key.Binding
	ZoomOut key.Binding

	Logout key.Binding
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// alongside the arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	TabQueue: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "queue"),
	),
	TabNetwork: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "network"),
	),
	TabRanking: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "ranking"),
	),
	TabConnect: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "connect"),
	),
	Claim: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "claim"),
	),
	Unclaim: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "unclaim"),
	),
	Resolve: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resolve"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logout"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
