package tui

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/settings"
)

type SettingsStateMsg struct {
	State settings.State
}

type DataChangedMsg struct {
	Topic events.Topic
}

type ConfirmationMsg struct {
	Confirmation *settings.Confirmation
	Err          error
}

type OperationDoneMsg struct {
	Operation settings.Operation
	Err       error
	// Confirmation is the confirmation that started the operation, if any.
	Confirmation *settings.Confirmation
}

type listenClosedMsg struct{}

// listenSettingsCmd waits for the next surface state. It is re-issued after
// every message to keep listening.
func listenSettingsCmd(ch <-chan settings.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return listenClosedMsg{}
		}
		return SettingsStateMsg{State: st}
	}
}

func listenEventsCmd(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return listenClosedMsg{}
		}
		return DataChangedMsg{Topic: e.Topic}
	}
}

func requestConfirmationCmd(request func() (*settings.Confirmation, error)) tea.Cmd {
	return func() tea.Msg {
		c, err := request()
		return ConfirmationMsg{Confirmation: c, Err: err}
	}
}

func updateWindowCmd(ctx context.Context, surface *settings.Surface, years int) tea.Cmd {
	return requestConfirmationCmd(func() (*settings.Confirmation, error) {
		return surface.UpdateHistoricalWindow(ctx, years)
	})
}

func operationCmd(op settings.Operation, run func() error) tea.Cmd {
	return func() tea.Msg {
		return OperationDoneMsg{Operation: op, Err: run()}
	}
}

func confirmCmd(ctx context.Context, surface *settings.Surface, c *settings.Confirmation) tea.Cmd {
	return func() tea.Msg {
		return OperationDoneMsg{Operation: c.Action, Err: surface.Confirm(ctx, c), Confirmation: c}
	}
}

// refused reports whether the surface turned an operation down without
// starting it.
func refused(err error) bool {
	return errors.Is(err, settings.ErrOperationInFlight) || errors.Is(err, settings.ErrSyncInProgress)
}

// operationNotice is the settings tab's one-line summary of a finished
// operation.
func operationNotice(msg OperationDoneMsg) string {
	switch {
	case errors.Is(msg.Err, settings.ErrOperationInFlight):
		return "Another operation is already running"
	case errors.Is(msg.Err, settings.ErrSyncInProgress):
		return "A sync is running, try again when it finishes"
	case msg.Err != nil:
		// the surface records the failure as its last error
		return ""
	}
	switch msg.Operation {
	case settings.OpAuthorize:
		return "Authorization finished"
	case settings.OpChangeWindow:
		return "Historical window applied"
	case settings.OpClearCache:
		return "Analysis cache cleared"
	case settings.OpReset:
		return "Data reset complete"
	case settings.OpClassify:
		return "Workouts classified"
	}
	return ""
}
