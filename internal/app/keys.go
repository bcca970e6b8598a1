package app

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Cancel key.Binding
	Quit   key.Binding
}

var GlobalKeys = KeyMap{
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("ctrl+c", "abort"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "enter"),
		key.WithHelp("q", "quit"),
	),
}
