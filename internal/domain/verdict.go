package domain

// ActivitySignal classifies a record's observed online engagement against
// the expectation for its business category.
type ActivitySignal int

// Activity signal values. The numeric values are also the output encoding.
const (
	ActivityNormal ActivitySignal = 0
	ActivityLow    ActivitySignal = -1
)

func (s ActivitySignal) String() string {
	if s == ActivityLow {
		return "low_activity"
	}
	return "normal"
}

// MatchingResult is the terminal verdict for one input record. Exactly one
// is produced per record in a batch, candidates found or not.
type MatchingResult struct {
	Name           string
	ClassicalMatch bool
	SemanticMatch  bool
	Activity       ActivitySignal
	Keep           bool
}

// Fuse combines the three evidence signals into the final keep decision.
// Registry matching is the primary identity signal: classical and semantic
// results are ORed. A low activity signal vetoes a provisional keep but
// never promotes a drop to a keep.
func Fuse(classical, semantic bool, activity ActivitySignal) bool {
	if activity == ActivityLow {
		return false
	}
	return classical || semantic
}
