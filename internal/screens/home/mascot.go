package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota
	MascotCelebrating               // last game scored 80% or better
	MascotSleepy                    // no games played yet
)

const mascotIdle = ` ┌──────┐
 │ ◉  ◉ │
 │  ◡   │ ✎
 └┬────┬┘
  ╱    ╲`

const mascotCelebrating = ` ┌──────┐
 │ ★  ★ │
 │  ◡   │ ✎
 └┬────┬┘
  ╱    ╲  ✦`

const mascotSleepy = ` ┌──────┐
 │ ─  ─ │ z
 │  ◦   │
 └┬────┬┘
  ╱    ╲`

// RenderMascot returns the easel mascot for the given variant.
func RenderMascot(variant MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch variant {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotSleepy:
		art = mascotSleepy
		fg = theme.TextDim
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
