package onboarding

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/settings"
	"github.com/garrettladley/pulse/internal/tui/page/splash"
	"github.com/garrettladley/pulse/internal/tui/theme"
)

type Phase uint

const (
	PhaseWelcome Phase = iota
	PhaseAuthorizing
	PhaseFailed
)

// State mirrors the settings surface, which owns the authorization flow.
type State struct {
	Surface settings.State
	// Started is set when Enter was pressed and the surface has not yet
	// reported the authorization as running.
	Started bool
}

func (s *State) Apply(st settings.State) {
	s.Surface = st
	if st.IsAuthorizing {
		s.Started = false
	}
}

func (s State) Phase() Phase {
	switch {
	case s.Started || s.Surface.IsAuthorizing:
		return PhaseAuthorizing
	case s.failure() != nil:
		return PhaseFailed
	default:
		return PhaseWelcome
	}
}

// CanStart reports whether Enter should begin a new authorization.
func (s State) CanStart() bool {
	return s.Phase() != PhaseAuthorizing
}

func (s State) failure() *settings.OperationError {
	if e := s.Surface.LastError; e != nil && e.Operation == settings.OpAuthorize {
		return e
	}
	return nil
}

func View(t theme.Theme, state State, width, height int) string {
	var lines []string
	switch state.Phase() {
	case PhaseWelcome:
		lines = []string{
			t.Title().Render("Connect to WHOOP"),
			"",
			t.Text().Render("pulse reads your recoveries, sleeps and workouts to grade each day's readiness"),
			"",
			"",
			t.Button().Render("Press Enter to authorize"),
			"",
			t.Muted().Render("A browser window opens for the WHOOP login"),
		}
	case PhaseAuthorizing:
		lines = []string{
			t.Title().Render("Waiting for WHOOP..."),
			"",
			t.Text().Render("Finish the login in your browser"),
			"",
			t.Muted().Render("pulse continues as soon as the callback arrives"),
		}
	case PhaseFailed:
		lines = []string{
			t.Error().Bold(true).Render("Authorization failed"),
			"",
			t.Error().Render(state.failure().Err.Error()),
			"",
			t.Muted().Render("Press Enter to try again, or q to quit"),
		}
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		append([]string{splash.LogoView(t), "", ""}, lines...)...,
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
