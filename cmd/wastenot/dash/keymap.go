package dash

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	ForceQuit     key.Binding
	NextTab       key.Binding
	PrevTab       key.Binding
	Refresh       key.Binding
	Filter        key.Binding
	ClearFilter   key.Binding
	Export        key.Binding
	Up            key.Binding
	Down          key.Binding
	Confirm       key.Binding
	Toggle        key.Binding
	Cancel        key.Binding
	NewListing    key.Binding
	UpdateClaim   key.Binding
	DeleteListing key.Binding
	RunQuery      key.Binding
	ExportQuery   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextTab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Filter:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		ClearFilter:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Export:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Confirm:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Toggle:        key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NewListing:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new listing")),
		UpdateClaim:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update claim")),
		DeleteListing: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete listing")),
		RunQuery:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "run query")),
		ExportQuery:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export csv")),
	}
}
