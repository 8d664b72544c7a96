package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/oauth"
	"github.com/garrettladley/pulse/internal/settings"
	"github.com/garrettladley/pulse/internal/tui/page/dashboard"
)

type Deps struct {
	Ctx          context.Context
	Logger       *slog.Logger
	TokenChecker oauth.TokenChecker
	Engine       dashboard.Evaluator
	Syncer       dashboard.Syncer
	Settings     *settings.Surface
	Events       events.Subscriber
	Now          func() time.Time
}
