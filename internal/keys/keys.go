package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Element actions
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Move   key.Binding

	// Group actions
	AddGroup    key.Binding
	RenameGroup key.Binding
	ColorGroup  key.Binding
	DeleteGroup key.Binding

	// Taxes
	AddTax key.Binding

	// Catalog search
	Catalog key.Binding

	// Project-level actions
	Reprice key.Binding
	Wspreg  key.Binding
	Export  key.Binding
	Refresh key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add item"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit item"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete item"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move item"),
		),
		AddGroup: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "add group"),
		),
		RenameGroup: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "rename group"),
		),
		ColorGroup: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "group color"),
		),
		DeleteGroup: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete group"),
		),
		AddTax: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add tax"),
		),
		Catalog: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "catalog search"),
		),
		Reprice: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "reprice"),
		),
		Wspreg: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "regional factor"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Add, k.Edit, k.Move,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Add, k.Edit, k.Delete, k.Move, k.AddTax},
		{k.AddGroup, k.RenameGroup, k.ColorGroup, k.DeleteGroup},
		{k.Catalog, k.Reprice, k.Wspreg, k.Export, k.Refresh, k.Help},
	}
}
