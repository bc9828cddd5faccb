package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next     key.Binding
	prev     key.Binding
	group    key.Binding
	retry    key.Binding
	chapters key.Binding
	open     key.Binding
	enter    key.Binding
	back     key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:     key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/n", "next")),
		prev:     key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "previous")),
		group:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		chapters: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chapters")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.chapters, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.group},
		{k.chapters, k.open, k.retry},
		{k.help, k.quit},
	}
}
