package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/router"
	"github.com/abhisek/sketchquiz/internal/screen"
	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 800 * time.Millisecond
	phase2End    = 1200 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

// doodle is revealed one line per tick during the first phase, as if drawn.
var doodle = []string{
	`      /\       `,
	`     /  \      `,
	`    /____\  ✎  `,
	`    | [] |     `,
	`    |  _ |     `,
	`    |_| ||     `,
	`~~~~~~~~~~~~~~~`,
}

type tickMsg time.Time

// WelcomeScreen shows a splash animation before transitioning to the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	workspace    string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory. workspace is the directory shared with the classifier.
func New(homeFactory func() screen.Screen, workspace string) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		workspace:   workspace,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		// Skipping is allowed once the doodle is finished.
		if w.elapsed >= phase1End {
			return w, w.transition()
		}
		return w, nil
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// drawnLines is how much of the doodle is visible.
func (w *WelcomeScreen) drawnLines() int {
	n := int(w.elapsed/tickInterval) + 1
	if n > len(doodle) {
		n = len(doodle)
	}
	return n
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	lines := make([]string, len(doodle))
	for i := range doodle {
		if i < w.drawnLines() {
			lines[i] = doodle[i]
		} else {
			lines[i] = strings.Repeat(" ", lipgloss.Width(doodle[i]))
		}
	}
	sections = append(sections, lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Render(strings.Join(lines, "\n")))

	if w.elapsed >= phase1End {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Draw it before the clock runs out!"))
	}

	if w.elapsed >= phase2End {
		if w.workspace != "" {
			sections = append(sections, "", lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("Classifier workspace: "+w.workspace))
		}
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
