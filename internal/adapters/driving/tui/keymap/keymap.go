// Package keymap holds the TUI key bindings and the hint sets each view
// shows in the status bar.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap groups every binding the views react to.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Back      key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	NextField key.Binding
	Refresh   key.Binding
	Clear     key.Binding
	Confirm   key.Binding
	Deny      key.Binding
}

func bind(help string, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:      bind("q", "salir", "q", "ctrl+c"),
		Help:      bind("?", "ayuda", "?"),
		Back:      bind("esc", "volver", "esc"),
		Up:        bind("↑/k", "subir", "up", "k"),
		Down:      bind("↓/j", "bajar", "down", "j"),
		Select:    bind("enter", "aceptar", "enter"),
		NextField: bind("tab", "siguiente campo", "tab", "shift+tab"),
		Refresh:   bind("r", "recargar", "r"),
		Clear:     bind("x", "borrar registros", "x"),
		// "s" for sí.
		Confirm: bind("y/s", "confirmar", "y", "s"),
		Deny:    bind("n", "cancelar", "n", "esc"),
	}
}

// ShortHelp is shown when a view has no hints of its own.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

func (k *KeyMap) RunHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Select, k.Back}
}

func (k *KeyMap) LedgerHelp() []key.Binding {
	return []key.Binding{k.Up, k.Refresh, k.Clear, k.Back}
}

func (k *KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny}
}

// FullHelp lists every binding, grouped for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.NextField},
		{k.Refresh, k.Clear, k.Confirm, k.Deny},
		{k.Back, k.Help, k.Quit},
	}
}
