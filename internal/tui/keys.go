package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Info       key.Binding
	Close      key.Binding
	Search     key.Binding
	NextFilter key.Binding
	PrevFilter key.Binding
	Filter     key.Binding
	SortCap    key.Binding
	SortVolume key.Binding
	SortChange key.Binding
	SortPrice  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	),
	Info: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "more info"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc", "x"),
		key.WithHelp("esc", "close"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	NextFilter: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next filter"),
	),
	PrevFilter: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev filter"),
	),
	Filter: key.NewBinding(
		key.WithKeys("0", "1", "2", "3"),
		key.WithHelp("0-3", "filter"),
	),
	SortCap: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "sort mkt cap"),
	),
	SortVolume: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "sort volume"),
	),
	SortChange: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "sort change"),
	),
	SortPrice: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "sort price"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextFilter, k.SortCap, k.Open, k.Info, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Info, k.Close},
		{k.Search, k.NextFilter, k.PrevFilter, k.Filter},
		{k.SortCap, k.SortVolume, k.SortChange, k.SortPrice},
		{k.Help, k.Quit},
	}
}
