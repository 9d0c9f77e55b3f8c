package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// ContentWidth is the width of the sections stacked inside the cabinet: the
// frame minus its border and padding, clamped to 20..60.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 60)
}

// CabinetFrame centres content in a double-bordered frame filling the
// given area.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ButtonState selects how an arcade button is drawn.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonSelected
	ButtonDisabled
)

var (
	buttonBase = lipgloss.NewStyle().
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	buttonSelected = buttonBase.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow)

	buttonNormal = buttonBase.
			Foreground(theme.Text).
			BorderForeground(theme.Border)

	buttonDisabled = buttonNormal.
			Foreground(theme.TextDim).
			Strikethrough(true)
)

// ArcadeButton renders a bordered button. Only the selected state carries
// the ▸ marker.
func ArcadeButton(label string, state ButtonState, width int) string {
	switch state {
	case ButtonSelected:
		return buttonSelected.Width(width).Render("▸ " + label)
	case ButtonDisabled:
		return buttonDisabled.Width(width).Render(label)
	}
	return buttonNormal.Width(width).Render(label)
}

// ArcadeLine renders a borderless one-line button for short terminals.
func ArcadeLine(label string, state ButtonState) string {
	switch state {
	case ButtonSelected:
		return lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Bold(true).
			Render(" ▸ " + label + " ")
	case ButtonDisabled:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label + " ")
	}
	return lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label + " ")
}
