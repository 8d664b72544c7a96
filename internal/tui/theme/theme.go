package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme holds the shared text styles of every pulse page.
type Theme struct {
	background color.Color
	title      lipgloss.Style
	text       lipgloss.Style
	muted      lipgloss.Style
	err        lipgloss.Style
	button     lipgloss.Style
}

func New() Theme {
	return Theme{
		background: ColorSurface,
		title:      lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
		text:       lipgloss.NewStyle().Foreground(ColorText),
		muted:      lipgloss.NewStyle().Foreground(ColorMuted),
		err:        lipgloss.NewStyle().Foreground(ColorDrained),
		button: lipgloss.NewStyle().
			Foreground(ColorSurface).
			Background(ColorAccent).
			Padding(0, 2).
			Bold(true),
	}
}

func (t Theme) Background() color.Color { return t.background }

func (t Theme) Title() lipgloss.Style { return t.title }

func (t Theme) Text() lipgloss.Style { return t.text }

// Muted styles hints, disabled items and key help.
func (t Theme) Muted() lipgloss.Style { return t.muted }

func (t Theme) Error() lipgloss.Style { return t.err }

func (t Theme) Button() lipgloss.Style { return t.button }

// Card frames a block of content with a rounded border in c.
func (t Theme) Card(c color.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(1, 2).
		Width(width)
}
