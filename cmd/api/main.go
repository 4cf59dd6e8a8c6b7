package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/analysisboard/api/internal/cache"
	"github.com/analysisboard/api/internal/engine"
	"github.com/analysisboard/api/internal/httpapi"
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
		// Server
		addr = flag.String("addr", ":8017", "listen address")

		// Engine
		stockfishPath    = flag.String("stockfish", defaultStockfish, "path to a UCI engine executable")
		handshakeTimeout = flag.Duration("handshake-timeout", 10*time.Second, "bound on engine startup acknowledgment waits")
		analyzeDepth     = flag.Int("depth", 14, "default search depth for /v1/analyze")
		reviewDepth      = flag.Int("review-depth", 12, "search depth per position during review")
		engineHash       = flag.Int("engine-hash", 128, "engine hash table MB")
		engineThreads    = flag.Int("engine-threads", 1, "engine search threads")

		// Cache
		cacheFile = flag.String("cache-file", "", "eval cache snapshot path (.csv, .csv.zst, .csv.gz; empty = no persistence)")

		// Logging
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logx.New(*logLevel)

	evalCache := cache.New()
	if *cacheFile != "" {
		if n, err := evalCache.LoadFromFile(*cacheFile); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn().Err(err).Str("path", *cacheFile).Msg("failed to load cache snapshot")
			}
		} else {
			logger.Info().Int("entries", n).Str("path", *cacheFile).Msg("loaded cache snapshot")
		}
	}

	session := engine.NewSession(engine.Config{
		EnginePath:       *stockfishPath,
		Logger:           logger.With().Str("component", "engine").Logger(),
		HandshakeTimeout: *handshakeTimeout,
		HashMB:           *engineHash,
		Threads:          *engineThreads,
	})

	analyzer := cache.NewCachingAnalyzer(evalCache, session)

	book := openings.NewBook()
	logger.Info().Int("positions", book.Count()).Msg("opening book loaded")

	reviewer := review.NewReviewer(review.Config{
		Depth:  *reviewDepth,
		Logger: logger.With().Str("component", "review").Logger(),
	}, analyzer, book)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      httpapi.NewRouter(logger, analyzer, reviewer, evalCache, session, *analyzeDepth),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // reviews analyze many positions per request
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return session.Run(ctx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("service stopped")
	}

	if *cacheFile != "" {
		if err := evalCache.SaveToFile(*cacheFile); err != nil {
			logger.Error().Err(err).Str("path", *cacheFile).Msg("cache snapshot save failed")
		} else {
			logger.Info().Int("entries", evalCache.Len()).Str("path", *cacheFile).Msg("cache snapshot saved")
		}
	}

	logger.Info().Msg("shutdown complete")
}
