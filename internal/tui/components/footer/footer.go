package footer

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/tui/theme"
)

const padding = 2

// Footer renders a status on the left and the build label on the right,
// spread across width.
type Footer struct {
	status string
	width  int
}

func New(status string, width int) Footer {
	return Footer{status: status, width: width}
}

func (f Footer) Render() string {
	right := lipgloss.NewStyle().Foreground(theme.ColorMuted).Render(buildLabel())

	gap := f.width - lipgloss.Width(f.status) - lipgloss.Width(right) - 2*padding
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Padding(0, padding, 1).
		Render(f.status + strings.Repeat(" ", gap) + right)
}
