package engine

import "strconv"

// MateScore is the centipawn sentinel substituted for mate evaluations when
// comparing on a single linear scale. Large enough that no real centipawn
// score reaches it.
const MateScore = 100000

// NullMove is the UCI null-move sentinel, used when the engine has no move
// to offer (and as the best move of the fallback result).
const NullMove = "0000"

// Eval is a tagged engine evaluation: either a centipawn score or a
// mate-in-N score, never both. Positive values favor the side the score is
// relative to; mate magnitude is moves to mate.
type Eval struct {
	Mate  bool
	Value int
}

// Centipawns canonicalizes the evaluation onto a single signed centipawn
// scale. Centipawn scores pass through; mate scores map to ±MateScore
// preserving sign. Mate in 0 maps to 0.
func (e Eval) Centipawns() int {
	if !e.Mate {
		return e.Value
	}
	switch {
	case e.Value > 0:
		return MateScore
	case e.Value < 0:
		return -MateScore
	default:
		return 0
	}
}

// Negate flips the evaluation's perspective (side to move vs opponent).
func (e Eval) Negate() Eval {
	return Eval{Mate: e.Mate, Value: -e.Value}
}

// String renders the evaluation the way analysis UIs do: "+0.23", "-1.50"
// for centipawns, "#3" / "#-5" for mates.
func (e Eval) String() string {
	if e.Mate {
		return "#" + strconv.Itoa(e.Value)
	}
	cp := e.Value
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := strconv.Itoa(cp / 100)
	frac := cp % 100
	if frac < 10 {
		return sign + whole + ".0" + strconv.Itoa(frac)
	}
	return sign + whole + "." + strconv.Itoa(frac)
}

// Result is the outcome of one analysis request. BestMove is in coordinate
// notation ("e2e4", "e7e8q"), NullMove when the engine had nothing to offer.
// PV is the principal variation as space-separated coordinate moves, empty
// when the engine never reported one.
type Result struct {
	Eval     Eval
	BestMove string
	PV       string
}

// Fallback is the result every request degrades to when the engine is
// unavailable: a dead-even evaluation and a null move. Callers never see an
// error from Analyze, only this.
func Fallback() Result {
	return Result{BestMove: NullMove}
}
