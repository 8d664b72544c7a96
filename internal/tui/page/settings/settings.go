// Package settings renders the settings tab and turns key presses into
// actions on the settings surface.
package settings

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/settings"
	"github.com/garrettladley/pulse/internal/tui/theme"
)

type Item int

const (
	ItemReauthorize Item = iota
	ItemWindow
	ItemClassify
	ItemClearCache
	ItemReset
	itemCount
)

func (i Item) Label() string {
	switch i {
	case ItemReauthorize:
		return "Reconnect WHOOP"
	case ItemWindow:
		return "Historical window"
	case ItemClassify:
		return "Classify workouts"
	case ItemClearCache:
		return "Clear analysis cache"
	case ItemReset:
		return "Reset all data"
	}
	panic(fmt.Sprintf("settings: unknown item %d", int(i)))
}

type Action int

const (
	ActionNone Action = iota
	ActionReauthorize
	ActionChangeWindow
	ActionClassify
	ActionClearCache
	ActionReset
	ActionConfirm
	ActionDecline
)

// Intent is what a key press asks the surface to do.
type Intent struct {
	Action Action
	Years  int
}

type State struct {
	Cursor       Item
	Window       int
	Surface      settings.State
	Confirmation *settings.Confirmation
	Notice       string

	windowTouched bool
}

// Apply takes a new surface snapshot. The window picker follows the stored
// value until the user moves it.
func (s *State) Apply(st settings.State) {
	s.Surface = st
	if !s.windowTouched {
		s.Window = st.HistoricalWindowYears
	}
}

// HandleKey moves the selection or returns the intent for key. Triggers are
// ignored while any operation is running.
func (s *State) HandleKey(key string) Intent {
	if s.Confirmation != nil {
		switch key {
		case "y", "enter":
			return Intent{Action: ActionConfirm}
		case "n", "esc":
			return Intent{Action: ActionDecline}
		}
		return Intent{}
	}

	switch key {
	case "up", "k":
		if s.Cursor > 0 {
			s.Cursor--
		}
	case "down", "j":
		if s.Cursor < itemCount-1 {
			s.Cursor++
		}
	case "left", "h":
		if s.Cursor == ItemWindow {
			s.stepWindow(-1)
		}
	case "right", "l":
		if s.Cursor == ItemWindow {
			s.stepWindow(1)
		}
	case "enter":
		if s.Surface.Busy() {
			s.Notice = "Wait for the current operation to finish"
			return Intent{}
		}
		s.Notice = ""
		return s.trigger()
	}
	return Intent{}
}

func (s *State) trigger() Intent {
	switch s.Cursor {
	case ItemReauthorize:
		return Intent{Action: ActionReauthorize}
	case ItemWindow:
		s.windowTouched = false
		return Intent{Action: ActionChangeWindow, Years: s.Window}
	case ItemClassify:
		return Intent{Action: ActionClassify}
	case ItemClearCache:
		return Intent{Action: ActionClearCache}
	case ItemReset:
		return Intent{Action: ActionReset}
	}
	return Intent{}
}

func (s *State) stepWindow(delta int) {
	opts := settings.WindowOptions()
	i := slices.Index(opts, s.Window)
	if i < 0 {
		i = 0
	}
	i = (i + delta + len(opts)) % len(opts)
	s.Window = opts[i]
	s.windowTouched = true
}

func View(t theme.Theme, state State, width, height int) string {
	var (
		titleStyle    = t.Title()
		itemStyle     = t.Text()
		selectedStyle = t.Title()
		disabledStyle = t.Muted()
		hintStyle     = t.Muted()
		errorStyle    = t.Error()
	)

	busy := state.Surface.Busy()

	lines := []string{titleStyle.Render("Settings"), ""}
	for i := range itemCount {
		label := i.Label()
		if i == ItemWindow {
			label = fmt.Sprintf("%s  ‹ %s ›", label, settings.WindowLabel(state.Window))
		}

		prefix := "  "
		style := itemStyle
		if i == state.Cursor {
			prefix = "› "
			style = selectedStyle
		}
		if busy {
			style = disabledStyle
		}
		lines = append(lines, style.Render(prefix+label))
	}

	lines = append(lines, "", hintStyle.Render(statusLine(state.Surface)))
	if state.Notice != "" {
		lines = append(lines, hintStyle.Render(state.Notice))
	}
	if e := state.Surface.LastError; e != nil {
		lines = append(lines, errorStyle.Render(e.Error()))
	}

	content := strings.Join(lines, "\n")
	if state.Confirmation != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", confirmView(t, state.Confirmation))
	}

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func confirmView(t theme.Theme, c *settings.Confirmation) string {
	return t.Card(theme.ColorSteady, 52).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		t.Text().Render(c.Message),
		"",
		t.Muted().Render("y confirm · n cancel"),
	))
}

func statusLine(st settings.State) string {
	switch {
	case st.IsAuthorizing:
		return "Waiting for authorization in the browser..."
	case st.IsResetting:
		if st.SyncProgress != "" {
			return "Reloading data: " + st.SyncProgress
		}
		return "Reloading data..."
	case st.IsClearingCache:
		return "Clearing analysis cache..."
	case st.IsClassifying:
		return "Classifying workouts..."
	case st.IsSyncing:
		if st.SyncProgress != "" {
			return "Syncing: " + st.SyncProgress
		}
		return "Syncing..."
	}
	return "Window: " + settings.WindowLabel(st.HistoricalWindowYears)
}
