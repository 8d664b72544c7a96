package theme

import "charm.land/lipgloss/v2"

// neutrals
var (
	ColorInk     = lipgloss.Color("#07090C") // splash backdrop
	ColorSurface = lipgloss.Color("#11171D") // app background
	ColorTrack   = lipgloss.Color("#27323C") // unfilled gauge arc, borders
	ColorText    = lipgloss.Color("#E6ECF1")
	ColorMuted   = lipgloss.Color("#6E7B88")
)

// accents
var (
	ColorAccent = lipgloss.Color("#2FD8B0") // selection, titles, quality sessions
	ColorInfo   = lipgloss.Color("#58A6E0") // sync progress, easy sessions
	ColorRest   = lipgloss.Color("#9C8FD0") // rest days
)

// readiness buckets, each with the deeper end of its gauge gradient
var (
	ColorReady       = lipgloss.Color("#3BE26B") // score 80-100
	ColorSteady      = lipgloss.Color("#F6CF45") // score 60-79
	ColorSteadyDeep  = lipgloss.Color("#F08A24")
	ColorDrained     = lipgloss.Color("#F0435A") // score 0-59
	ColorDrainedDeep = lipgloss.Color("#8E1B2C")
)
