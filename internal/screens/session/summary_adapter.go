package session

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/sketchquiz/internal/router"
	"github.com/abhisek/sketchquiz/internal/screen"
	summaryscreen "github.com/abhisek/sketchquiz/internal/screens/summary"
	"github.com/abhisek/sketchquiz/internal/summary"
)

// newSummaryScreenAdapter creates a summary screen whose buttons drive this
// session's controller.
func newSummaryScreenAdapter(s *SessionScreen, sum *summary.Summary) screen.Screen {
	return summaryscreen.New(sum, summaryscreen.Actions{
		PlayAgain: func() tea.Cmd {
			return tea.Sequence(
				func() tea.Msg { return router.PopScreenMsg{} },
				s.replay(),
			)
		},
		Exit: s.exit,
		Home: func() tea.Cmd {
			if _, err := s.ctrl.Reset(); err != nil {
				s.deps.Logger.Warn("reset", "err", err)
			}
			return func() tea.Msg { return router.PopToRootMsg{} }
		},
	})
}
