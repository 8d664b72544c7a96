package whoop

type ScoreState string

const (
	ScoreStateScored       ScoreState = "SCORED"
	ScoreStatePendingScore ScoreState = "PENDING_SCORE"
	ScoreStateUnscorable   ScoreState = "UNSCORABLE"
)

// IsFinal reports whether the state will not change on a later fetch.
func (s ScoreState) IsFinal() bool {
	return s == ScoreStateScored || s == ScoreStateUnscorable
}
