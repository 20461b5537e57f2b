package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Open      key.Binding
	Back      key.Binding
	Search    key.Binding
	Clear     key.Binding
	Retry     key.Binding
	Refresh   key.Binding
	Favorites key.Binding
	Favorite  key.Binding
	Theme     key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "nav")),
		Top:       key.NewBinding(key.WithKeys("g", "home")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "open")),
		Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("Esc", "back")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Favorites: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites")),
		Favorite:  key.NewBinding(key.WithKeys(" "), key.WithHelp("Space", "favorite")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
