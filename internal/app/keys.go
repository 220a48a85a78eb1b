package app

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit     key.Binding
	Help     key.Binding
	Playlist key.Binding

	// Catalog
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Play        key.Binding
	PlayArticle key.Binding
	Enqueue     key.Binding

	// Playlist
	Remove   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Clear    key.Binding

	// Player
	Toggle       key.Binding
	SeekForward  key.Binding
	SeekBackward key.Binding
	Next         key.Binding
	Previous     key.Binding
	Dismiss      key.Binding
	Expand       key.Binding
	SpeedUp      key.Binding
	SpeedDown    key.Binding
	AutoPlayNext key.Binding

	// Error popup
	Acknowledge key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Playlist: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Catalog/playlist"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Play from here"),
		),
		PlayArticle: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Play article alone"),
		),
		Enqueue: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Add article to playlist"),
		),

		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove from playlist"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move up in playlist"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move down in playlist"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Clear playlist"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Play/pause"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "Seek forward"),
		),
		SeekBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "Seek backward"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "Next article"),
		),
		Previous: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "Previous article"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Close player"),
		),
		Expand: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Expand player"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Faster"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Slower"),
		),
		AutoPlayNext: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Toggle auto-play"),
		),

		Acknowledge: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter", "Close message"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Toggle, k.Playlist, k.Expand, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Play, k.PlayArticle, k.Enqueue},
		{k.Playlist, k.Remove, k.MoveUp, k.MoveDown, k.Clear},
		{k.Toggle, k.SeekBackward, k.SeekForward, k.Previous, k.Next},
		{k.SpeedDown, k.SpeedUp, k.AutoPlayNext, k.Expand, k.Dismiss},
		{k.Help, k.Quit},
	}
}
