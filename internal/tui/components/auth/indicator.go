package auth

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/tui/theme"
)

const statusDot = "●"

// Indicator shows whether pulse holds a WHOOP token. Authorizing wins over
// the stored state while a browser login is open.
type Indicator struct {
	Checked       bool
	Authenticated bool
	Authorizing   bool
}

func (a Indicator) Label() string {
	switch {
	case a.Authorizing:
		return "authorizing"
	case !a.Checked:
		return "checking"
	case a.Authenticated:
		return "whoop connected"
	default:
		return "whoop not connected"
	}
}

func (a Indicator) color() lipgloss.Style {
	switch {
	case a.Authorizing:
		return lipgloss.NewStyle().Foreground(theme.ColorSteady)
	case !a.Checked:
		return lipgloss.NewStyle().Foreground(theme.ColorTrack)
	case a.Authenticated:
		return lipgloss.NewStyle().Foreground(theme.ColorReady)
	default:
		return lipgloss.NewStyle().Foreground(theme.ColorDrained)
	}
}

func (a Indicator) Render() string {
	return a.color().Render(statusDot + " " + a.Label())
}
