package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Top      key.Binding
	Middle   key.Binding
	Bottom   key.Binding
	Unassign key.Binding
	Clear    key.Binding
	Suggest  key.Binding
	Submit   key.Binding
	Next     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous card"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next card"),
		),
		Top: key.NewBinding(
			key.WithKeys("t", "1"),
			key.WithHelp("t", "to top"),
		),
		Middle: key.NewBinding(
			key.WithKeys("m", "2"),
			key.WithHelp("m", "to middle"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("b", "3"),
			key.WithHelp("b", "to bottom"),
		),
		Unassign: key.NewBinding(
			key.WithKeys("u", "backspace"),
			key.WithHelp("u", "unassign"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear lanes"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next round"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Top, k.Middle, k.Bottom, k.Submit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Unassign, k.Clear},
		{k.Top, k.Middle, k.Bottom, k.Suggest},
		{k.Submit, k.Next, k.Help, k.Quit},
	}
}
