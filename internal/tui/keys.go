package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines Raygun's keybindings, per spec.md §6.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	Expand       key.Binding
	Collapse     key.Binding
	ToggleNode   key.Binding
	Tab          key.Binding
	ColorFilter  key.Binding
	CycleLayout  key.Binding
	ClearTimeline key.Binding
	RawOverlay   key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns Raygun's default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		End:      key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
		Expand:   key.NewBinding(key.WithKeys("right", "enter"), key.WithHelp("→/enter", "expand")),
		Collapse: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "collapse")),
		ToggleNode: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		ColorFilter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "color filter")),
		CycleLayout: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "layout")),
		ClearTimeline: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "clear")),
		RawOverlay: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "raw payload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Collapse, k.Tab, k.ColorFilter, k.CycleLayout, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Expand, k.Collapse, k.ToggleNode, k.Tab},
		{k.ColorFilter, k.CycleLayout, k.ClearTimeline, k.RawOverlay},
		{k.Help, k.Quit},
	}
}
