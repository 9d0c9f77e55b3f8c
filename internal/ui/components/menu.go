package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// MenuItem is one entry of a Menu. Disabled items are drawn dimmed and
// skipped by navigation.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of arcade buttons.
type Menu struct {
	Items       []MenuItem
	Selected    int
	ButtonWidth int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem, buttonWidth int) Menu {
	m := Menu{Items: items, ButtonWidth: buttonWidth}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.Selected = m.next(-1)
	case "down", "j":
		m.Selected = m.next(1)
	case "enter", "space", " ":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}
	return m, nil
}

// next returns the nearest enabled item in direction step, or the current
// selection when there is none.
func (m Menu) next(step int) int {
	for i := m.Selected + step; i >= 0 && i < len(m.Items); i += step {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return m.Selected
}

func (m Menu) state(i int) ButtonState {
	switch {
	case m.Items[i].Disabled:
		return ButtonDisabled
	case i == m.Selected:
		return ButtonSelected
	}
	return ButtonNormal
}

// View renders the items centred in width. compact drops the button
// borders so the menu fits short terminals.
func (m Menu) View(width int, compact bool) string {
	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		if compact {
			lines = append(lines, ArcadeLine(item.Label, m.state(i)))
		} else {
			lines = append(lines, ArcadeButton(item.Label, m.state(i), m.ButtonWidth))
		}
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}
