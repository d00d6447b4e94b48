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

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Recompute next occurrences
	Refresh key.Binding

	// Task actions
	New            key.Binding
	Edit           key.Binding
	Done           key.Binding
	Delete         key.Binding
	Archive        key.Binding
	ClearCompleted key.Binding
	Groups         key.Binding

	// Occurrence actions in the detail view
	Complete key.Binding
	Exclude  key.Binding
	CutOff   key.Binding

	// Display
	CycleSort      key.Binding
	ToggleLanguage key.Binding
	CycleDashboard key.Binding
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
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "done / undone"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		ClearCompleted: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear completed"),
		),
		Groups: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "groups"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete occurrence"),
		),
		Exclude: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "skip occurrence"),
		),
		CutOff: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "end series here"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s", "tab"),
			key.WithHelp("s", "cycle sort"),
		),
		ToggleLanguage: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "english / deutsch"),
		),
		CycleDashboard: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "dashboard mode"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.New, k.Edit, k.Done, k.Delete, k.Archive, k.ClearCompleted},
		{k.Complete, k.Exclude, k.CutOff},
		{k.Search, k.CycleSort, k.Groups, k.Command, k.Help, k.Refresh},
		{k.ToggleLanguage, k.CycleDashboard},
	}
}
