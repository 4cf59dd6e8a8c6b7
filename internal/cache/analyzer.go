package cache

import (
	"context"

	"github.com/analysisboard/api/internal/engine"
)

// Analyzer is anything that can evaluate a position (the engine session, or
// another wrapper around it).
type Analyzer interface {
	Analyze(ctx context.Context, fen string, depth int) engine.Result
}

// CachingAnalyzer consults the cache before delegating to the underlying
// analyzer, and remembers what comes back.
type CachingAnalyzer struct {
	cache *Cache
	next  Analyzer
}

// NewCachingAnalyzer wraps an analyzer with the cache.
func NewCachingAnalyzer(c *Cache, next Analyzer) *CachingAnalyzer {
	return &CachingAnalyzer{cache: c, next: next}
}

// Analyze returns a cached result when available, otherwise asks the
// underlying analyzer and stores the answer.
func (a *CachingAnalyzer) Analyze(ctx context.Context, fen string, depth int) engine.Result {
	if res, ok := a.cache.Get(fen, depth); ok {
		return res
	}
	res := a.next.Analyze(ctx, fen, depth)
	a.cache.Put(fen, depth, res)
	return res
}
