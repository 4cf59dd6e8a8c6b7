package engine

import "testing"

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  Info
		match bool
	}{
		{
			"cp with pv",
			"info depth 10 seldepth 14 score cp 23 nodes 4000 pv e2e4 e7e5",
			Info{Eval: Eval{Value: 23}, PV: "e2e4 e7e5"},
			true,
		},
		{
			"negative cp",
			"info depth 8 score cp -150 pv d7d5",
			Info{Eval: Eval{Value: -150}, PV: "d7d5"},
			true,
		},
		{
			"mate without pv",
			"info depth 12 score mate 3",
			Info{Eval: Eval{Mate: true, Value: 3}},
			true,
		},
		{
			"mate for the other side",
			"info depth 12 score mate -5 pv g8f6 b1c3",
			Info{Eval: Eval{Mate: true, Value: -5}, PV: "g8f6 b1c3"},
			true,
		},
		{
			"no score token",
			"info depth 10 nodes 12345 nps 100000",
			Info{},
			false,
		},
		{
			"score at end of line",
			"info depth 10 score",
			Info{},
			false,
		},
		{
			"unknown score kind",
			"info score lowerbound 10",
			Info{},
			false,
		},
		{
			"missing magnitude defaults to zero",
			"info score cp",
			Info{},
			true,
		},
		{
			"non-numeric magnitude defaults to zero",
			"info score cp abc pv e2e4",
			Info{PV: "e2e4"},
			true,
		},
		{
			"empty line",
			"",
			Info{},
			false,
		},
		{
			"pv token with nothing after it",
			"info score cp 5 pv",
			Info{Eval: Eval{Value: 5}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInfo(tt.line)
			if ok != tt.match {
				t.Fatalf("ParseInfo(%q) match = %v, want %v", tt.line, ok, tt.match)
			}
			if got != tt.want {
				t.Errorf("ParseInfo(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestEvalCentipawns(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want int
	}{
		{"cp passes through", Eval{Value: 23}, 23},
		{"negative cp passes through", Eval{Value: -400}, -400},
		{"zero cp", Eval{}, 0},
		{"mate maps to sentinel", Eval{Mate: true, Value: 3}, MateScore},
		{"negative mate maps to negative sentinel", Eval{Mate: true, Value: -7}, -MateScore},
		{"mate in zero maps to zero", Eval{Mate: true, Value: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eval.Centipawns(); got != tt.want {
				t.Errorf("Centipawns() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvalString(t *testing.T) {
	tests := []struct {
		eval Eval
		want string
	}{
		{Eval{Value: 23}, "+0.23"},
		{Eval{Value: -150}, "-1.50"},
		{Eval{Value: 5}, "+0.05"},
		{Eval{Value: 0}, "+0.00"},
		{Eval{Mate: true, Value: 3}, "#3"},
		{Eval{Mate: true, Value: -5}, "#-5"},
	}

	for _, tt := range tests {
		if got := tt.eval.String(); got != tt.want {
			t.Errorf("Eval%+v.String() = %q, want %q", tt.eval, got, tt.want)
		}
	}
}
