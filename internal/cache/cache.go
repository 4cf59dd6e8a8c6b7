// Package cache holds analysis results in memory so repeat visits to a
// position skip the engine, with optional compressed snapshot persistence.
package cache

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/analysisboard/api/internal/engine"
)

type key struct {
	fen   string
	depth int
}

// Cache is a concurrency-safe map of (position, depth) to analysis results.
type Cache struct {
	mu    sync.RWMutex
	evals map[key]engine.Result

	hits   int64
	misses int64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		evals: make(map[key]engine.Result),
	}
}

// Get returns the cached result for a position at (at least) the requested
// depth.
func (c *Cache) Get(fen string, depth int) (engine.Result, bool) {
	c.mu.RLock()
	res, ok := c.evals[key{fen: fen, depth: depth}]
	c.mu.RUnlock()
	if ok {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	return res, ok
}

// Put stores a result. Fallback results (null best move) are not worth
// remembering: they mean the engine was unavailable, not that the position
// is balanced.
func (c *Cache) Put(fen string, depth int, res engine.Result) {
	if res.BestMove == engine.NullMove {
		return
	}
	c.mu.Lock()
	c.evals[key{fen: fen, depth: depth}] = res
	c.mu.Unlock()
}

// Len returns the number of cached positions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.evals)
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
	}
}

// SaveToFile writes the cache as CSV, compressed according to the file
// extension (.zst for zstd, .gz for gzip, anything else plain).
func (c *Cache) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	var writer io.Writer = f
	var closers []io.Closer

	if strings.HasSuffix(path, ".zst") {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		writer = zw
		closers = append(closers, zw)
	} else if strings.HasSuffix(path, ".gz") {
		gw := gzip.NewWriter(f)
		writer = gw
		closers = append(closers, gw)
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write([]string{"fen", "depth", "mate", "value", "best_move", "pv"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	c.mu.RLock()
	for k, res := range c.evals {
		mate := "0"
		if res.Eval.Mate {
			mate = "1"
		}
		row := []string{
			k.fen,
			strconv.Itoa(k.depth),
			mate,
			strconv.Itoa(res.Eval.Value),
			res.BestMove,
			res.PV,
		}
		if err := csvWriter.Write(row); err != nil {
			c.mu.RUnlock()
			return fmt.Errorf("write row: %w", err)
		}
	}
	c.mu.RUnlock()

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return err
	}
	for _, cl := range closers {
		if err := cl.Close(); err != nil {
			return err
		}
	}
	return nil
}

// LoadFromFile merges a snapshot into the cache (supports .zst and .gz
// compression). Malformed rows are skipped; a truncated compressed stream
// returns what was read so far rather than failing the load.
func (c *Cache) LoadFromFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return 0, err
		}
		defer zr.Close()
		reader = zr
	} else if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, err
		}
		defer gr.Close()
		reader = gr
	}

	csvReader := csv.NewReader(reader)

	// Skip header
	if _, err := csvReader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if strings.Contains(err.Error(), "EOF") || strings.Contains(err.Error(), "unexpected") {
				break
			}
			continue
		}

		// Columns: fen, depth, mate, value, best_move, pv
		if len(row) < 6 || row[0] == "" {
			continue
		}
		depth, err := strconv.Atoi(row[1])
		if err != nil || depth <= 0 {
			continue
		}
		value, err := strconv.Atoi(row[3])
		if err != nil {
			continue
		}
		best := row[4]
		if best == "" || best == engine.NullMove {
			continue
		}

		res := engine.Result{
			Eval:     engine.Eval{Mate: row[2] == "1", Value: value},
			BestMove: best,
			PV:       row[5],
		}

		c.mu.Lock()
		c.evals[key{fen: row[0], depth: depth}] = res
		c.mu.Unlock()
		count++
	}

	return count, nil
}
