// Package readiness turns recovery data into a daily readiness snapshot and
// training recommendation, and maps both onto display attributes.
package readiness

import (
	"fmt"
	"time"
)

type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelModerate  Level = "moderate"
	LevelPoor      Level = "poor"
)

type Status string

const (
	StatusGoHard   Status = "goHard"
	StatusQuality  Status = "quality"
	StatusModerate Status = "moderate"
	StatusEasy     Status = "easy"
	StatusRest     Status = "rest"
)

// Statuses lists every status from most to least demanding.
var Statuses = [...]Status{StatusGoHard, StatusQuality, StatusModerate, StatusEasy, StatusRest}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Snapshot is one evaluation's readiness result. It is never mutated after
// the engine builds it.
type Snapshot struct {
	Score          int       `json:"score"`
	Level          Level     `json:"level"`
	Recommendation string    `json:"recommendation"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

type DailyRecommendation struct {
	Status      Status     `json:"status"`
	Headline    string     `json:"headline"`
	Guidance    string     `json:"guidance"`
	TargetZones []string   `json:"target_zones"`
	AvoidZones  []string   `json:"avoid_zones"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning"`
}

func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelExcellent, LevelGood, LevelModerate, LevelPoor:
		return l, nil
	}
	return "", fmt.Errorf("unknown readiness level %q", s)
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown recommendation status %q", s)
}

func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(s); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, nil
	}
	return "", fmt.Errorf("unknown confidence %q", s)
}

// LevelForScore grades a clamped score on the recovery scale.
func LevelForScore(score int) Level {
	switch score = clampScore(score); {
	case score >= 80:
		return LevelExcellent
	case score >= 67:
		return LevelGood
	case score >= 34:
		return LevelModerate
	default:
		return LevelPoor
	}
}

func clampScore(score int) int {
	return max(0, min(100, score))
}
