package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	// Fill overrides the filled segment colour.
	Fill color.Color
	// Suffix replaces the percentage text when set.
	Suffix string
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}
	if p.Suffix != "" {
		percentWidth = lipgloss.Width(p.Suffix) + 2
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	switch {
	case p.Suffix != "":
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + p.Suffix)
	case p.ShowPercent:
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// NewCountdownBar shows the time left on a question. The bar turns orange
// in the last third and red in the last five seconds.
func NewCountdownBar(remaining, limit, width int) ProgressBar {
	var pct float64
	if limit > 0 {
		pct = float64(remaining) / float64(limit)
	}
	fill := theme.Secondary
	switch {
	case remaining <= 5:
		fill = theme.Error
	case pct <= 1.0/3:
		fill = theme.Accent
	}
	return ProgressBar{
		Label:   "Time",
		Percent: pct,
		Width:   width,
		Fill:    fill,
		Suffix:  fmt.Sprintf("%2ds", remaining),
	}
}
