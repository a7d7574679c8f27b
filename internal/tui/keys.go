package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the bindings shown by the help view.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Path     key.Binding
	Submit   key.Binding
	Clear    key.Binding
	Cancel   key.Binding
	Write    key.Binding
	Reload   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "inspect")),
		Path:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "edit path")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open folder")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear path")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Write:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write modified copy")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "scroll metadata up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "scroll metadata down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Path, k.Select, k.Write, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Reload},
		{k.Path, k.Submit, k.Clear, k.Cancel},
		{k.Write, k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}
