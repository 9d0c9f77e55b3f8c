package session

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/sketchquiz/internal/ui/layout"
)

type keyMap struct {
	Submit  key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter", "s"),
		key.WithHelp("Enter", "Submit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "Quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("Y", "End game"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("N", "Keep drawing"),
	),
}

func hint(b key.Binding) layout.KeyHint {
	h := b.Help()
	return layout.KeyHint{Key: h.Key, Description: h.Desc}
}
