package dashboard

import (
	"errors"
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/pulse/internal/readiness"
	"github.com/garrettladley/pulse/internal/tui/components/auth"
	"github.com/garrettladley/pulse/internal/tui/components/gauge"
	"github.com/garrettladley/pulse/internal/tui/theme"
)

const cardWidth = 44

type State struct {
	AuthIndicator auth.Indicator

	Loading    bool
	Syncing    bool
	Progress   string
	Evaluation *readiness.Evaluation
	Err        error
}

func View(state State, width, height int) string {
	var body string
	switch {
	case state.Evaluation != nil:
		body = lipgloss.JoinHorizontal(
			lipgloss.Center,
			readinessGauge(state.Evaluation.Snapshot),
			"    ",
			recommendationCard(state.Evaluation.Recommendation),
		)
	case errors.Is(state.Err, readiness.ErrNoData):
		body = emptyView("No scored recovery yet", "Press s to sync from WHOOP")
	case state.Err != nil:
		body = emptyView("Could not evaluate readiness", state.Err.Error())
	case state.Loading:
		body = emptyView("Evaluating readiness...", "")
	default:
		body = emptyView("No data", "Press s to sync from WHOOP")
	}

	if status := syncStatus(state); status != "" {
		body = lipgloss.JoinVertical(lipgloss.Center, body, "", status)
	}

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		body,
	)
}

func AuthIndicatorView(state State) string {
	return state.AuthIndicator.Render()
}

func readinessGauge(s readiness.Snapshot) string {
	p := readiness.Present(s)
	score := float64(p.Score)
	label := p.Emoji + " " + p.Label

	return gauge.New(
		&score,
		100,
		label,
		p.Start,
		gauge.WithGradient(p.End),
		gauge.WithFormat(func(v float64) string { return strconv.Itoa(int(v)) }),
	).Render()
}

func recommendationCard(r readiness.DailyRecommendation) string {
	card := readiness.PresentRecommendation(r)

	var (
		titleStyle = lipgloss.NewStyle().Foreground(card.Color).Bold(true)
		textStyle  = lipgloss.NewStyle().Foreground(theme.ColorText).Width(cardWidth)
		keyStyle   = lipgloss.NewStyle().Foreground(theme.ColorMuted)
		boxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(card.Color).
				Padding(1, 2)
	)

	row := func(key, value string) string {
		return keyStyle.Render(fmt.Sprintf("%-8s", key)) + textStyle.Width(cardWidth-8).Render(value)
	}

	return boxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(card.Title),
		"",
		textStyle.Bold(true).Render(card.Headline),
		textStyle.Render(card.Guidance),
		"",
		row("target", card.Target),
		row("avoid", card.Avoid),
		"",
		keyStyle.Render(card.Confidence),
		keyStyle.Width(cardWidth).Render(card.Reasoning),
	))
}

func emptyView(title, hint string) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorAccent).
		Bold(true)

	hintStyle := lipgloss.NewStyle().
		Foreground(theme.ColorMuted)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		titleStyle.Render(title),
		"",
		hintStyle.Render(hint),
	)
}

func syncStatus(state State) string {
	if !state.Syncing {
		return ""
	}
	msg := "Syncing..."
	if state.Progress != "" {
		msg = state.Progress
	}
	return lipgloss.NewStyle().Foreground(theme.ColorInfo).Render(msg)
}
