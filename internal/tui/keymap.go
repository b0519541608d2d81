package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the workspace view.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Actions
	NextView   key.Binding
	Move       key.Binding
	Promote    key.Binding
	Demote     key.Binding
	NewTicket  key.Binding
	Edit       key.Binding
	Delete     key.Binding
	GroupEpics key.Binding
	Consult    key.Binding
	Filter     key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Structure management
	NewEpic      key.Binding
	NewColumn    key.Binding
	Rename       key.Binding
	DeleteStruct key.Binding
	EditGoal     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous ticket"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next ticket"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle board/backlog/timeline"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move ticket"),
		),
		Promote: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "move to board"),
		),
		Demote: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "move to stasis"),
		),
		NewTicket: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new ticket"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit ticket"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete ticket"),
		),
		GroupEpics: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "group by epic"),
		),
		Consult: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "consult the Mother"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter tickets"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		NewEpic: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "new epic"),
		),
		NewColumn: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "new column"),
		),
		Rename: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename column/epic"),
		),
		DeleteStruct: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "delete column/epic"),
		),
		EditGoal: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "edit project goal"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextView, k.Move, k.Promote, k.Demote},
		{k.NewTicket, k.Edit, k.Delete, k.GroupEpics},
		{k.Consult, k.Filter, k.Refresh, k.Quit},
		{k.NewEpic, k.NewColumn, k.Rename, k.DeleteStruct, k.EditGoal},
	}
}
