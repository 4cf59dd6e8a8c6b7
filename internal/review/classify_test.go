package review

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		loss        int
		matchedBest bool
		want        Judgment
	}{
		{"engine move is best regardless of loss", 500, true, JudgmentBest},
		{"tiny loss is best", 5, false, JudgmentBest},
		{"zero loss", 0, false, JudgmentBest},
		{"small loss is excellent", 20, false, JudgmentExcellent},
		{"moderate loss is good", 40, false, JudgmentGood},
		{"notable loss is inaccuracy", 90, false, JudgmentInaccuracy},
		{"large loss is mistake", 250, false, JudgmentMistake},
		{"huge loss is blunder", 350, false, JudgmentBlunder},
		{"missed mate is blunder", 100000, false, JudgmentBlunder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.loss, tt.matchedBest); got != tt.want {
				t.Errorf("Classify(%d, %v) = %s, want %s", tt.loss, tt.matchedBest, got, tt.want)
			}
		})
	}
}
