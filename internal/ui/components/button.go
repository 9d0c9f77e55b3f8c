package components

import (
	tea "charm.land/bubbletea/v2"
)

// Button is a focusable arcade button. Only the active button reacts to
// Enter.
type Button struct {
	Label   string
	Active  bool
	Width   int
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, width int, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Width:   width,
		OnPress: onPress,
	}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Active {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "space", " ":
			if b.OnPress != nil {
				return b, b.OnPress()
			}
		}
	}

	return b, nil
}

func (b Button) View() string {
	state := ButtonNormal
	if b.Active {
		state = ButtonSelected
	}
	return ArcadeButton(b.Label, state, b.Width)
}
