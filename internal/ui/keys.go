package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down    key.Binding
	Toggle      key.Binding
	Edit        key.Binding
	Delete      key.Binding
	ShowAll     key.Binding
	ShowActive  key.Binding
	ShowDone    key.Binding
	NextFilter  key.Binding
	Clear       key.Binding
	NewTask     key.Binding
	SwitchFocus key.Binding
	Submit      key.Binding
	Commit      key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Edit:        key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		ShowAll:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		ShowActive:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		ShowDone:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "done")),
		NextFilter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "next filter")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
		NewTask:     key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		SwitchFocus: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),
		Submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add task")),
		Commit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// bindings adapts a flat set of keys to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (k keyMap) listHelp() bindings {
	return bindings{k.Toggle, k.Edit, k.Delete, k.ShowAll, k.ShowActive, k.ShowDone, k.Clear, k.NewTask, k.Quit}
}

func (k keyMap) inputHelp() bindings {
	return bindings{k.Submit, k.SwitchFocus, k.ForceQuit}
}

func (k keyMap) editHelp() bindings {
	return bindings{k.Commit, k.Cancel}
}
