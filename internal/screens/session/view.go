package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/quiz"
	"github.com/abhisek/sketchquiz/internal/ui/components"
	"github.com/abhisek/sketchquiz/internal/ui/layout"
	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// Rows above the canvas frame's top border: info line and countdown bar.
const canvasTopOffset = 2

func formatStatus(n, total, correct int) string {
	return fmt.Sprintf("Q %d/%d  ✓ %d", n, total, correct)
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return s.renderError(width, height)
	}
	if s.ctrl.State() == quiz.StateIdle || s.summarizing || s.ctrl.State() == quiz.StateSummary {
		msg := "\n\n  Getting ready..."
		if s.summarizing || s.ctrl.State() == quiz.StateSummary {
			msg = "\n\n  Tallying results..."
		}
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(msg)
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(s.renderCountdown(width))
	b.WriteString("\n")
	b.WriteString(s.renderCanvas(width))
	b.WriteString("\n")
	b.WriteString(s.renderStatusLine(width))
	return b.String()
}

func (s *SessionScreen) renderInfoLine(width int) string {
	left := "  Draw: " + theme.Prompt.Render(strings.ToUpper(s.ctrl.CurrentLabel()))

	brush := fmt.Sprintf("brush %d", s.canvas.StrokeWidth())
	swatch := lipgloss.NewStyle().Foreground(s.canvas.StrokeColor()).Render("●")
	if s.canvas.Eraser() {
		swatch = lipgloss.NewStyle().Foreground(theme.TextDim).Render("eraser")
	}
	right := swatch + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(brush) + "  "

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *SessionScreen) renderCountdown(width int) string {
	cd := s.ctrl.Countdown()
	barWidth := s.canvas.Cols() - 16
	if barWidth < 10 {
		barWidth = 10
	}
	bar := components.NewCountdownBar(cd.Remaining(), cd.Limit(), barWidth).View()
	return strings.Repeat(" ", s.canvasLeft(width)) + bar
}

// canvasLeft is the column of the frame's left border.
func (s *SessionScreen) canvasLeft(width int) int {
	left := (width - (s.canvas.Cols() + 2)) / 2
	if left < 0 {
		return 0
	}
	return left
}

func (s *SessionScreen) renderCanvas(width int) string {
	left := s.canvasLeft(width)
	// Mouse events arrive in terminal coordinates; the first canvas cell
	// sits inside the frame border, below the header and info rows.
	s.canvas.SetOrigin(left+1, layout.HeaderHeight+canvasTopOffset+1)

	frame := theme.CanvasFrame
	if s.ctrl.State() != quiz.StateAwaitingDrawing {
		frame = frame.BorderForeground(theme.Border)
	} else if s.ctrl.TimedOut() {
		frame = frame.BorderForeground(theme.Error)
	}
	boxed := frame.Render(s.canvas.View())

	pad := strings.Repeat(" ", left)
	lines := strings.Split(boxed, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (s *SessionScreen) renderStatusLine(width int) string {
	center := func(text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
	}

	switch {
	case s.showingQuitConfirm:
		return center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render("End this game? (y/n)"))
	case s.ctrl.TimedOut():
		return center(theme.Incorrect.Render("Time's up! ") +
			theme.Hint.Render("Press any key to continue"))
	case s.notice != "":
		return center(lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice))
	case s.spinner.Active():
		return center(s.spinner.View())
	}

	last, ok := s.ctrl.LastResolved()
	if !ok {
		return center(theme.Hint.Render("Draw with the mouse, then press Enter"))
	}
	return center(renderVerdict(last))
}

func renderVerdict(a quiz.QuestionAttempt) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch a.Outcome {
	case quiz.OutcomeCorrect:
		return theme.Correct.Render("✓ "+a.Label) + dim.Render(" was recognized")
	case quiz.OutcomeIncorrect:
		guess := "something else"
		if a.Record != nil && a.Record.PredictedClass != "" {
			guess = a.Record.PredictedClass
		}
		return theme.Incorrect.Render("✗ "+a.Label) + dim.Render(" looked like "+guess)
	case quiz.OutcomeUnresolved:
		return theme.Unresolved.Render("? "+a.Label) + dim.Render(" got no verdict")
	}
	return ""
}

func (s *SessionScreen) renderError(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Cannot start the game"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width - 8).Render(s.errMsg))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press any key to go back"))
	return lipgloss.NewStyle().Width(width).Height(height).Align(lipgloss.Center).Render(b.String())
}
