package review

// Judgment categorizes a played move by how much evaluation it gave up
// compared to the engine's preference.
type Judgment string

const (
	JudgmentBest       Judgment = "best"
	JudgmentExcellent  Judgment = "excellent"
	JudgmentGood       Judgment = "good"
	JudgmentInaccuracy Judgment = "inaccuracy"
	JudgmentMistake    Judgment = "mistake"
	JudgmentBlunder    Judgment = "blunder"
)

// Centipawn-loss thresholds, inclusive upper bounds.
const (
	bestLoss       = 10
	excellentLoss  = 25
	goodLoss       = 50
	inaccuracyLoss = 100
	mistakeLoss    = 300
)

// Classify judges a move from its centipawn loss (mover's perspective,
// canonicalized so mate swings land beyond every threshold) and whether it
// matched the engine's preferred move.
func Classify(loss int, matchedBest bool) Judgment {
	if matchedBest || loss <= bestLoss {
		return JudgmentBest
	}
	switch {
	case loss <= excellentLoss:
		return JudgmentExcellent
	case loss <= goodLoss:
		return JudgmentGood
	case loss <= inaccuracyLoss:
		return JudgmentInaccuracy
	case loss <= mistakeLoss:
		return JudgmentMistake
	default:
		return JudgmentBlunder
	}
}
