// Package review walks through a game move by move, evaluating every
// position with the engine and categorizing each played move.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/analysisboard/api/internal/engine"
	"github.com/analysisboard/api/internal/openings"
)

// Analyzer evaluates one position. Satisfied by the engine session and by
// the caching wrapper around it.
type Analyzer interface {
	Analyze(ctx context.Context, fen string, depth int) engine.Result
}

// Config configures a reviewer.
type Config struct {
	Depth  int // engine search depth per position (default 12)
	Logger zerolog.Logger
}

// Reviewer runs game reviews against an analyzer.
type Reviewer struct {
	cfg  Config
	an   Analyzer
	book *openings.Book
	log  zerolog.Logger
}

// NewReviewer creates a reviewer. book may be nil to skip opening names.
func NewReviewer(cfg Config, an Analyzer, book *openings.Book) *Reviewer {
	if cfg.Depth == 0 {
		cfg.Depth = 12
	}
	return &Reviewer{
		cfg:  cfg,
		an:   an,
		book: book,
		log:  cfg.Logger,
	}
}

// MoveReport is the review of one played move.
type MoveReport struct {
	Ply      int      `json:"ply"`
	SAN      string   `json:"san"`
	UCI      string   `json:"uci"`
	FEN      string   `json:"fen"`            // position after the move
	CP       int      `json:"cp"`             // white-perspective centipawns after the move
	Mate     int      `json:"mate,omitempty"` // white-perspective mate distance, 0 if none
	Best     string   `json:"best"`           // engine's preferred move in the prior position
	Loss     int      `json:"loss"`           // centipawn loss for the mover
	Judgment Judgment `json:"judgment"`
	Opening  string   `json:"opening,omitempty"`
}

// Report is a full game review.
type Report struct {
	Moves        []MoveReport     `json:"moves"`
	Judgments    map[Judgment]int `json:"judgments"`
	WhiteAvgLoss float64          `json:"white_avg_loss"`
	BlackAvgLoss float64          `json:"black_avg_loss"`
}

// ReviewMoves reviews a game given as SAN moves from the standard starting
// position. Check and mate suffixes are tolerated.
func (r *Reviewer) ReviewMoves(ctx context.Context, sans []string) (*Report, error) {
	pos := pgn.NewStartingPosition()
	moves := make([]pgn.Mv, 0, len(sans))
	labels := make([]string, 0, len(sans))

	// Parse the whole line up front so a bad move list fails before any
	// engine time is spent.
	probe := pgn.NewStartingPosition()
	for i, san := range sans {
		san = strings.TrimSpace(san)
		if san == "" {
			continue
		}
		trimmed := strings.TrimSuffix(strings.TrimSuffix(san, "#"), "+")
		mv, err := pgn.ParseSAN(probe, trimmed)
		if err != nil {
			return nil, fmt.Errorf("move %d (%q): %w", i+1, san, err)
		}
		if err := pgn.ApplyMove(probe, mv); err != nil {
			return nil, fmt.Errorf("move %d (%q): %w", i+1, san, err)
		}
		moves = append(moves, mv)
		labels = append(labels, san)
	}

	return r.reviewPlies(ctx, pos, moves, labels)
}

// ReviewGame reviews an already-parsed PGN game.
func (r *Reviewer) ReviewGame(ctx context.Context, game *pgn.Game) (*Report, error) {
	probe := pgn.NewStartingPosition()
	labels := make([]string, len(game.Moves))
	for i, mv := range game.Moves {
		labels[i] = moveToSAN(probe, mv)
		if err := pgn.ApplyMove(probe, mv); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return r.reviewPlies(ctx, pgn.NewStartingPosition(), game.Moves, labels)
}

// reviewPlies runs the position-by-position walk. Engine scores are relative
// to the side to move; values are flipped as needed so the report carries
// white-perspective evaluations and mover-perspective losses.
func (r *Reviewer) reviewPlies(ctx context.Context, pos *pgn.GameState, moves []pgn.Mv, labels []string) (*Report, error) {
	report := &Report{
		Moves:     make([]MoveReport, 0, len(moves)),
		Judgments: make(map[Judgment]int),
	}

	var whiteLoss, blackLoss int
	var whitePlies, blackPlies int

	before := r.an.Analyze(ctx, pos.ToFEN(), r.cfg.Depth)

	for i, mv := range moves {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		uci := moveToUCI(mv)
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return nil, fmt.Errorf("apply %q: %w", labels[i], err)
		}

		fen := pos.ToFEN()
		after := r.an.Analyze(ctx, fen, r.cfg.Depth)

		// before is mover-relative; after is opponent-relative.
		loss := before.Eval.Centipawns() + after.Eval.Centipawns()
		if loss < 0 {
			loss = 0
		}
		judgment := Classify(loss, uci == before.BestMove)

		ply := i + 1
		whiteMoved := ply%2 == 1
		if whiteMoved {
			whiteLoss += loss
			whitePlies++
		} else {
			blackLoss += loss
			blackPlies++
		}

		// Flip to white's perspective: after a white move black is to move.
		whiteEval := after.Eval
		if whiteMoved {
			whiteEval = whiteEval.Negate()
		}

		mr := MoveReport{
			Ply:      ply,
			SAN:      labels[i],
			UCI:      uci,
			FEN:      fen,
			CP:       whiteEval.Centipawns(),
			Best:     before.BestMove,
			Loss:     loss,
			Judgment: judgment,
		}
		if whiteEval.Mate {
			mr.Mate = whiteEval.Value
		}
		if r.book != nil {
			if name, ok := r.book.Lookup(pos.Pack()); ok {
				mr.Opening = name
			}
		}

		report.Moves = append(report.Moves, mr)
		report.Judgments[judgment]++

		r.log.Debug().
			Int("ply", ply).
			Str("san", labels[i]).
			Int("loss", loss).
			Str("judgment", string(judgment)).
			Msg("reviewed move")

		before = after
	}

	if whitePlies > 0 {
		report.WhiteAvgLoss = float64(whiteLoss) / float64(whitePlies)
	}
	if blackPlies > 0 {
		report.BlackAvgLoss = float64(blackLoss) / float64(blackPlies)
	}

	return report, nil
}
