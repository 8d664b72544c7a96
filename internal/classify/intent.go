package classify

import "fmt"

type Intent string

const (
	IntentRecovery  Intent = "recovery"
	IntentEndurance Intent = "endurance"
	IntentTempo     Intent = "tempo"
	IntentThreshold Intent = "threshold"
	IntentIntervals Intent = "intervals"
	IntentStrength  Intent = "strength"
	IntentMixed     Intent = "mixed"
	IntentUnknown   Intent = "unknown"
)

var intents = []Intent{
	IntentRecovery,
	IntentEndurance,
	IntentTempo,
	IntentThreshold,
	IntentIntervals,
	IntentStrength,
	IntentMixed,
	IntentUnknown,
}

// Intents lists every intent in display order.
func Intents() []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	return out
}

func (i Intent) String() string { return string(i) }

func ParseIntent(s string) (Intent, error) {
	for _, i := range intents {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown workout intent %q", s)
}
