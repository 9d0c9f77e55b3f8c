package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

const arcadeTitleFull = ` ███████╗██╗  ██╗███████╗████████╗ ██████╗██╗  ██╗
 ██╔════╝██║ ██╔╝██╔════╝╚══██╔══╝██╔════╝██║  ██║
 ███████╗█████╔╝ █████╗     ██║   ██║     ███████║
 ╚════██║██╔═██╗ ██╔══╝     ██║   ██║     ██╔══██║
 ███████║██║  ██╗███████╗   ██║   ╚██████╗██║  ██║
 ╚══════╝╚═╝  ╚═╝╚══════╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
                    Q · U · I · Z`

const arcadeTitleCompact = "S · K · E · T · C · H   Q · U · I · Z"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(st Stats, cw int, compact bool) string {
	gamesStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	lastStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case st.Games == 0:
		stats = dimStyle.Render("NO GAMES YET")
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			gamesStyle.Render(fmt.Sprintf("▶%d", st.Games)),
			bestStyle.Render(fmt.Sprintf("★%.0f%%", st.BestAccuracy*100)),
			lastStyle.Render(fmt.Sprintf("↺%.0f%%", st.LastAccuracy*100)),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			gamesStyle.Render(fmt.Sprintf("▶ %d GAMES", st.Games)),
			bestStyle.Render(fmt.Sprintf("★ BEST %.0f%%", st.BestAccuracy*100)),
			lastStyle.Render(fmt.Sprintf("↺ LAST %.0f%%", st.LastAccuracy*100)),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
