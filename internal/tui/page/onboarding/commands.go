package onboarding

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/pulse/internal/oauth"
)

const authCheckTimeout = 5 * time.Second

type AuthStatusMsg struct {
	HasToken bool
	Err      error
}

type AuthorizeResultMsg struct {
	Err error
}

// Authorizer is the part of the settings surface onboarding drives.
type Authorizer interface {
	RequestReauthorization(ctx context.Context) error
	ClearError(ctx context.Context)
}

func CheckAuthCmd(ctx context.Context, checker oauth.TokenChecker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, authCheckTimeout)
		defer cancel()
		hasToken, err := checker.HasToken(ctx)
		return AuthStatusMsg{HasToken: hasToken, Err: err}
	}
}

// AuthorizeCmd dismisses the previous failure and runs a new authorization.
func AuthorizeCmd(ctx context.Context, authorizer Authorizer) tea.Cmd {
	return func() tea.Msg {
		authorizer.ClearError(ctx)
		return AuthorizeResultMsg{Err: authorizer.RequestReauthorization(ctx)}
	}
}
