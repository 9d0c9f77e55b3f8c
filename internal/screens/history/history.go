package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sketchquiz/internal/router"
	"github.com/abhisek/sketchquiz/internal/screen"
	"github.com/abhisek/sketchquiz/internal/store"
	"github.com/abhisek/sketchquiz/internal/ui/layout"
	"github.com/abhisek/sketchquiz/internal/ui/theme"
)

// sessionLimit caps how many past games are listed.
const sessionLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type attemptsLoadedMsg struct {
	SessionID string
	Attempts  []store.AttemptRecord
	Err       error
}

// HistoryScreen displays past games and, on demand, their drawings.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummary
	attempts  map[string][]store.AttemptRecord // sessionID → attempts
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		attempts:  make(map[string][]store.AttemptRecord),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: sessionLimit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Drawings"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case attemptsLoadedMsg:
		if msg.Err == nil {
			s.attempts[msg.SessionID] = msg.Attempts
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected >= len(s.sessions) {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			if s.expanded[s.selected] {
				return s, s.loadAttempts(s.sessions[s.selected].SessionID)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadAttempts(sessionID string) tea.Cmd {
	if _, ok := s.attempts[sessionID]; ok {
		return nil
	}
	repo := s.eventRepo
	return func() tea.Msg {
		attempts, err := repo.QueryAttempts(context.Background(), sessionID)
		return attemptsLoadedMsg{SessionID: sessionID, Attempts: attempts, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No games yet. Start drawing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Format("Jan 02, 2006 15:04")
		durationStr := fmt.Sprintf("%d:%02d", sess.DurationSecs/60, sess.DurationSecs%60)

		quit := ""
		if sess.Action == store.ActionQuit {
			quit = "  (quit)"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %d/%d correct  %.0f%% accuracy%s",
			prefix, dateStr, durationStr, sess.Correct, sess.Questions, sess.Accuracy()*100, quit)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderAttempts(sess.SessionID, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAttempts(sessionID string, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	attempts, ok := s.attempts[sessionID]
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading...")) + "\n"
	}
	if len(attempts) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No drawings recorded")) + "\n"
	}

	var b strings.Builder
	for _, a := range attempts {
		predicted := a.PredictedClass
		if predicted == "" {
			predicted = "-"
		}
		timeout := ""
		if a.TimedOut {
			timeout = " ⏱"
		}
		line := fmt.Sprintf("    %d. %-12s → %-12s %s%s", a.Position+1, a.Label, predicted, a.Outcome, timeout)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(outcomeColor(a.Outcome)).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func outcomeColor(outcome string) color.Color {
	switch outcome {
	case "correct":
		return theme.Success
	case "incorrect":
		return theme.Error
	case "unresolved":
		return theme.Warning
	default:
		return theme.Text
	}
}
