package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the list view bindings.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	ToggleViewed key.Binding
	RateUp       key.Binding
	RateDown     key.Binding
	NextMusical  key.Binding
	PrevMusical  key.Binding
	MoveUp       key.Binding
	MoveDown     key.Binding
	Add          key.Binding
	Delete       key.Binding
	Rename       key.Binding

	ToggleEdit key.Binding
	Undo       key.Binding
	Redo       key.Binding
	New        key.Binding
	Share      key.Binding
	Preview    key.Binding
	Users      key.Binding

	Help key.Binding
	Quit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	ToggleViewed: key.NewBinding(
		key.WithKeys("x", " "),
		key.WithHelp("x", "viewed"),
	),
	RateUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "rate up"),
	),
	RateDown: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "rate down"),
	),
	NextMusical: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next musical"),
	),
	PrevMusical: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "prev musical"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "move down"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	ToggleEdit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit/view"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u", "ctrl+z"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r", "U"),
		key.WithHelp("C-r", "redo"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new list"),
	),
	Share: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "share link"),
	),
	Preview: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "preview"),
	),
	Users: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "users"),
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

// ShortHelp and FullHelp satisfy help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ToggleEdit, k.Undo, k.Redo, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.ToggleViewed, k.RateUp, k.RateDown, k.NextMusical, k.PrevMusical},
		{k.Add, k.Delete, k.Rename},
		{k.ToggleEdit, k.Undo, k.Redo, k.New, k.Share, k.Preview, k.Users, k.Quit},
	}
}
