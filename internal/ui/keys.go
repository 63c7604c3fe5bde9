package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyMap struct {
	Quit     key.Binding
	Back     key.Binding
	Focus    key.Binding
	Select   key.Binding
	NextUser key.Binding
	Refresh  key.Binding
	Filter   key.Binding
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Focus:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "comments")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	NextUser: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next user")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
}

// listHint is the status bar hint while the post list has focus.
func listHint() string {
	return hint(Keys.Select, Keys.NextUser, Keys.Refresh, Keys.Filter, Keys.Quit)
}

func hint(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+":"+h.Desc)
	}
	return strings.Join(parts, "  ")
}
