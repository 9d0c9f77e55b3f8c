package components

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// Spinner is a labelled activity indicator.
type Spinner struct {
	Label   string
	spinner spinner.Model
	active  bool
}

// NewSpinner creates a stopped spinner.
func NewSpinner(label string) Spinner {
	return Spinner{
		Label: label,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.ArcadeCyan)),
		),
	}
}

// Start begins animating and returns the first tick.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	return s.spinner.Tick
}

// Stop halts the animation; pending ticks are dropped by Update.
func (s *Spinner) Stop() {
	s.active = false
}

func (s Spinner) Active() bool { return s.active }

// Update advances the animation while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner and its label, or nothing when stopped.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return s.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(s.Label)
}
