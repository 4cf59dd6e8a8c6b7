package httpapi

import "github.com/analysisboard/api/internal/engine"

// AnalyzeResponse is the JSON shape for a single-position analysis.
type AnalyzeResponse struct {
	FEN      string `json:"fen"`
	Depth    int    `json:"depth"`
	CP       int    `json:"cp,omitempty"`
	Mate     int    `json:"mate,omitempty"`
	BestMove string `json:"best_move"`
	PV       string `json:"pv,omitempty"`
	Score    string `json:"score"` // human-readable, e.g. "+0.23", "#3"
}

func toAnalyzeResponse(fen string, depth int, res engine.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		FEN:      fen,
		Depth:    depth,
		BestMove: res.BestMove,
		PV:       res.PV,
		Score:    res.Eval.String(),
	}
	if res.Eval.Mate {
		resp.Mate = res.Eval.Value
	} else {
		resp.CP = res.Eval.Value
	}
	return resp
}
