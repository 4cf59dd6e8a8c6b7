package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/pgn/v3"

	"github.com/analysisboard/api/internal/cache"
	"github.com/analysisboard/api/internal/engine"
	"github.com/analysisboard/api/internal/logx"
	"github.com/analysisboard/api/internal/openings"
	"github.com/analysisboard/api/internal/review"
)

func main() {
	defaultStockfish := "stockfish"
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}

	var (
		pgnPath          = flag.String("pgn", "", "PGN file to review (required)")
		stockfishPath    = flag.String("stockfish", defaultStockfish, "path to a UCI engine executable")
		depth            = flag.Int("depth", 12, "search depth per position")
		handshakeTimeout = flag.Duration("handshake-timeout", 10*time.Second, "bound on engine startup acknowledgment waits")
		maxGames         = flag.Int("max-games", 0, "stop after N games (0 = all)")
		logLevel         = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logx.New(*logLevel)

	if *pgnPath == "" {
		fmt.Fprintln(os.Stderr, "usage: review -pgn games.pgn [-depth N]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := engine.NewSession(engine.Config{
		EnginePath:       *stockfishPath,
		Logger:           logger.With().Str("component", "engine").Logger(),
		HandshakeTimeout: *handshakeTimeout,
	})
	go func() { _ = session.Run(ctx) }()

	// Positions repeat across games (openings especially); cache within the run.
	analyzer := cache.NewCachingAnalyzer(cache.New(), session)
	reviewer := review.NewReviewer(review.Config{
		Depth:  *depth,
		Logger: logger.With().Str("component", "review").Logger(),
	}, analyzer, openings.NewBook())

	parser := pgn.Games(*pgnPath)
	games := 0
	stopped := false

gameLoop:
	for game := range parser.Games {
		select {
		case <-ctx.Done():
			if !stopped {
				parser.Stop()
				stopped = true
			}
			break gameLoop
		default:
		}

		games++
		white := game.Tags["White"]
		black := game.Tags["Black"]
		logger.Info().
			Int("game", games).
			Str("white", white).
			Str("black", black).
			Int("moves", len(game.Moves)).
			Msg("reviewing game")

		report, err := reviewer.ReviewGame(ctx, game)
		if err != nil {
			logger.Warn().Err(err).Int("game", games).Msg("review failed")
			continue
		}
		printReport(white, black, report)

		if *maxGames > 0 && games >= *maxGames {
			parser.Stop()
			break
		}
	}

	if err := parser.Err(); err != nil {
		logger.Error().Err(err).Msg("pgn parse error")
		os.Exit(1)
	}

	st := session.GetStatus()
	logger.Info().
		Int("games", games).
		Int64("analyzed", st.Analyzed).
		Int64("fallbacks", st.Fallbacks).
		Msg("review complete")
}

func printReport(white, black string, report *review.Report) {
	fmt.Printf("\n%s vs %s\n", white, black)
	for _, m := range report.Moves {
		side := "w"
		if m.Ply%2 == 0 {
			side = "b"
		}
		eval := fmt.Sprintf("%+.2f", float64(m.CP)/100)
		if m.Mate != 0 {
			eval = fmt.Sprintf("#%d", m.Mate)
		}
		line := fmt.Sprintf("%3d.%s %-8s %8s  loss=%-4d %s", (m.Ply+1)/2, side, m.SAN, eval, m.Loss, m.Judgment)
		if m.Opening != "" {
			line += "  (" + m.Opening + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("avg cp loss: white %.1f, black %.1f\n", report.WhiteAvgLoss, report.BlackAvgLoss)
	for _, j := range []review.Judgment{review.JudgmentBest, review.JudgmentExcellent, review.JudgmentGood, review.JudgmentInaccuracy, review.JudgmentMistake, review.JudgmentBlunder} {
		if n := report.Judgments[j]; n > 0 {
			fmt.Printf("  %-10s %d\n", j, n)
		}
	}
}
