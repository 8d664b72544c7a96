package dashboard

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/pulse/internal/readiness"
)

const evaluateTimeout = 10 * time.Second

type Evaluator interface {
	Evaluate(ctx context.Context, day time.Time) (*readiness.Evaluation, error)
}

type Syncer interface {
	PerformSmartSync(ctx context.Context) error
}

type EvaluationMsg struct {
	Evaluation *readiness.Evaluation
	Err        error
}

type SyncDoneMsg struct {
	Err error
}

func EvaluateCmd(ctx context.Context, engine Evaluator, day time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, evaluateTimeout)
		defer cancel()
		eval, err := engine.Evaluate(ctx, day)
		return EvaluationMsg{Evaluation: eval, Err: err}
	}
}

func SyncCmd(ctx context.Context, syncer Syncer) tea.Cmd {
	return func() tea.Msg {
		return SyncDoneMsg{Err: syncer.PerformSmartSync(ctx)}
	}
}
