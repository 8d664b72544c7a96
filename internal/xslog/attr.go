package xslog

import (
	"log/slog"
	"time"

	"github.com/garrettladley/pulse/internal/version"
)

const keyError = "error"

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func Duration(duration time.Duration) slog.Attr {
	const durationKey = "duration"
	return slog.Duration(durationKey, duration)
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func CycleID(id int64) slog.Attr {
	const cycleIDKey = "cycle_id"
	return slog.Int64(cycleIDKey, id)
}

func WorkoutID(id string) slog.Attr {
	const workoutIDKey = "workout_id"
	return slog.String(workoutIDKey, id)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func End(t time.Time) slog.Attr {
	const endKey = "end"
	return slog.Time(endKey, t)
}

func Since(t time.Time) slog.Attr {
	const sinceKey = "since"
	return slog.Time(sinceKey, t)
}

func Operation(op string) slog.Attr {
	const operationKey = "operation"
	return slog.String(operationKey, op)
}

func Years(years int) slog.Attr {
	const yearsKey = "years"
	return slog.Int(yearsKey, years)
}

func Score(score int) slog.Attr {
	const scoreKey = "score"
	return slog.Int(scoreKey, score)
}

func Status(status string) slog.Attr {
	const statusKey = "status"
	return slog.String(statusKey, status)
}

func Intent(intent string) slog.Attr {
	const intentKey = "intent"
	return slog.String(intentKey, intent)
}

func Topic(topic string) slog.Attr {
	const topicKey = "topic"
	return slog.String(topicKey, topic)
}

func EventID(id string) slog.Attr {
	const eventIDKey = "event_id"
	return slog.String(eventIDKey, id)
}

func Phase(phase string) slog.Attr {
	const phaseKey = "phase"
	return slog.String(phaseKey, phase)
}

func Day(day string) slog.Attr {
	const dayKey = "day"
	return slog.String(dayKey, day)
}

func Scheme(scheme string) slog.Attr {
	const schemeKey = "scheme"
	return slog.String(schemeKey, scheme)
}

func Authorized(ok bool) slog.Attr {
	const authorizedKey = "authorized"
	return slog.Bool(authorizedKey, ok)
}
