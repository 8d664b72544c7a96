package readiness

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/garrettladley/pulse/internal/tui/theme"
)

type Bucket string

const (
	BucketGood    Bucket = "good"
	BucketCaution Bucket = "caution"
	BucketPoor    Bucket = "poor"
)

const (
	goodThreshold    = 80
	cautionThreshold = 60
)

// BucketForScore clamps score to 0-100 and grades it against the 80/60
// thresholds.
func BucketForScore(score int) Bucket {
	switch score = clampScore(score); {
	case score >= goodThreshold:
		return BucketGood
	case score >= cautionThreshold:
		return BucketCaution
	default:
		return BucketPoor
	}
}

func (b Bucket) Gradient() (start, end color.Color) {
	switch b {
	case BucketGood:
		return theme.ColorReady, theme.ColorAccent
	case BucketCaution:
		return theme.ColorSteady, theme.ColorSteadyDeep
	case BucketPoor:
		return theme.ColorDrained, theme.ColorDrainedDeep
	}
	panic(fmt.Sprintf("readiness: unknown bucket %q", string(b)))
}

func (b Bucket) Label() string {
	switch b {
	case BucketGood:
		return "Ready"
	case BucketCaution:
		return "Caution"
	case BucketPoor:
		return "Recover"
	}
	panic(fmt.Sprintf("readiness: unknown bucket %q", string(b)))
}

func (b Bucket) Emoji() string {
	switch b {
	case BucketGood:
		return "🟢"
	case BucketCaution:
		return "🟡"
	case BucketPoor:
		return "🔴"
	}
	panic(fmt.Sprintf("readiness: unknown bucket %q", string(b)))
}

// Color has one arm per status and no default. Values that did not come
// through ParseStatus or the constants panic.
func (s Status) Color() color.Color {
	switch s {
	case StatusGoHard:
		return theme.ColorReady
	case StatusQuality:
		return theme.ColorAccent
	case StatusModerate:
		return theme.ColorSteady
	case StatusEasy:
		return theme.ColorInfo
	case StatusRest:
		return theme.ColorRest
	}
	panic(fmt.Sprintf("readiness: unknown status %q", string(s)))
}

func (s Status) Label() string {
	switch s {
	case StatusGoHard:
		return "Go Hard"
	case StatusQuality:
		return "Quality Session"
	case StatusModerate:
		return "Moderate"
	case StatusEasy:
		return "Easy Day"
	case StatusRest:
		return "Rest"
	}
	panic(fmt.Sprintf("readiness: unknown status %q", string(s)))
}

func (s Status) Emoji() string {
	switch s {
	case StatusGoHard:
		return "🔥"
	case StatusQuality:
		return "💪"
	case StatusModerate:
		return "🏃"
	case StatusEasy:
		return "🚶"
	case StatusRest:
		return "😴"
	}
	panic(fmt.Sprintf("readiness: unknown status %q", string(s)))
}

func (l Level) Emoji() string {
	switch l {
	case LevelExcellent:
		return "⚡"
	case LevelGood:
		return "✅"
	case LevelModerate:
		return "⚠️"
	case LevelPoor:
		return "🛑"
	}
	panic(fmt.Sprintf("readiness: unknown level %q", string(l)))
}

type Presentation struct {
	Score          int
	Level          Level
	Bucket         Bucket
	Start, End     color.Color
	Emoji          string
	Label          string
	Recommendation string
}

func Present(s Snapshot) Presentation {
	b := BucketForScore(s.Score)
	start, end := b.Gradient()
	return Presentation{
		Score:          clampScore(s.Score),
		Level:          s.Level,
		Bucket:         b,
		Start:          start,
		End:            end,
		Emoji:          b.Emoji(),
		Label:          b.Label(),
		Recommendation: s.Recommendation,
	}
}

type RecommendationCard struct {
	Title      string
	Color      color.Color
	Headline   string
	Guidance   string
	Target     string
	Avoid      string
	Confidence string
	Reasoning  string
}

func PresentRecommendation(r DailyRecommendation) RecommendationCard {
	return RecommendationCard{
		Title:      r.Status.Emoji() + " " + r.Status.Label(),
		Color:      r.Status.Color(),
		Headline:   r.Headline,
		Guidance:   r.Guidance,
		Target:     joinZones(r.TargetZones),
		Avoid:      joinZones(r.AvoidZones),
		Confidence: string(r.Confidence) + " confidence",
		Reasoning:  r.Reasoning,
	}
}

func joinZones(zones []string) string {
	if len(zones) == 0 {
		return "none"
	}
	return strings.Join(zones, ", ")
}
