// Package classify infers the training intent of a workout from its sport
// and heart-rate zone distribution.
package classify

import (
	"strings"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

var (
	strengthSports = []string{"weightlifting", "powerlifting", "strength", "functional fitness", "crossfit", "pilates"}
	recoverySports = []string{"yoga", "stretching", "meditation", "walking", "massage", "sauna", "mobility"}
)

const (
	longSession = 45 * time.Minute

	intervalsHighShare = 0.30
	thresholdHighShare = 0.15
	thresholdZ4Share   = 0.20
	tempoZ3Share       = 0.30
	aerobicLowShare    = 0.70

	recoveryMaxStrain = 8.0
	easyMaxStrain     = 5.0
)

// Classify is pure: the same workout always yields the same intent.
func Classify(w whoop.Workout) Intent {
	sport := strings.ToLower(w.SportName)
	if matchesAny(sport, strengthSports) {
		return IntentStrength
	}
	if matchesAny(sport, recoverySports) {
		return IntentRecovery
	}

	if w.ScoreState != whoop.ScoreStateScored || w.Score == nil {
		return IntentUnknown
	}

	zones := w.Score.ZoneDurations.Milli()
	total := w.Score.ZoneDurations.TotalMilli()
	strain := w.Score.Strain
	if total == 0 {
		if strain < easyMaxStrain {
			return IntentRecovery
		}
		return IntentUnknown
	}

	share := func(ms ...int) float64 {
		var sum int
		for _, m := range ms {
			sum += m
		}
		return float64(sum) / float64(total)
	}

	low := share(zones[0], zones[1], zones[2])
	z3 := share(zones[3])
	z4 := share(zones[4])
	high := share(zones[4], zones[5])

	switch {
	case strain < easyMaxStrain && high < 0.05:
		return IntentRecovery
	case high >= intervalsHighShare:
		return IntentIntervals
	case z4 >= thresholdZ4Share || high >= thresholdHighShare:
		return IntentThreshold
	case z3 >= tempoZ3Share:
		return IntentTempo
	case low >= aerobicLowShare:
		if w.Duration() >= longSession || strain >= recoveryMaxStrain {
			return IntentEndurance
		}
		return IntentRecovery
	default:
		return IntentMixed
	}
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
