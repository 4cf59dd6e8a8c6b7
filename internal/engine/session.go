package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Session states, in lifecycle order.
const (
	StateUninitialized int32 = iota
	StateHandshaking
	StateReady
	StateBusy
	StateFailed
)

// Config configures an engine session.
type Config struct {
	EnginePath string
	Logger     zerolog.Logger

	// Transport overrides EnginePath when set; tests inject a fake here.
	Transport Transport

	HandshakeTimeout time.Duration // bound on uciok/readyok waits (default 10s)
	HashMB           int           // engine hash table size
	Threads          int           // engine search threads
}

// Session owns one long-lived engine process and serializes analysis
// requests against it. The engine can only run one position+search cycle at
// a time; interleaving two searches corrupts reply attribution, so requests
// are executed strictly one at a time in submission order by a single worker
// loop. Analyze never returns an error: when the engine cannot be
// established or dies, every request resolves to the fallback result.
type Session struct {
	cfg Config
	log zerolog.Logger

	queue *requestQueue
	tr    Transport

	state int32 // atomic, one of the State* values

	// Stats
	analyzed  int64
	fallbacks int64
}

// NewSession creates a session. The engine process is not spawned until Run.
func NewSession(cfg Config) *Session {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 128
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
	return &Session{
		cfg:   cfg,
		log:   cfg.Logger,
		queue: newRequestQueue(),
	}
}

// Analyze submits a position for evaluation at the given depth and blocks
// until the request resolves. Safe to call before Run has reached readiness;
// the request is queued and executed in submission order. If ctx is
// cancelled while waiting, the fallback result is returned immediately (the
// request itself still resolves internally, preserving ordering).
func (s *Session) Analyze(ctx context.Context, fen string, depth int) Result {
	if depth <= 0 {
		depth = 1
	}
	req := &request{
		fen:   fen,
		depth: depth,
		done:  make(chan Result, 1),
	}
	if !s.queue.enqueue(req) {
		// Worker already gone; degrade immediately.
		atomic.AddInt64(&s.fallbacks, 1)
		return Fallback()
	}
	select {
	case res := <-req.done:
		return res
	case <-ctx.Done():
		atomic.AddInt64(&s.fallbacks, 1)
		return Fallback()
	}
}

// State returns the current lifecycle state.
func (s *Session) State() int32 {
	return atomic.LoadInt32(&s.state)
}

// Status is a point-in-time snapshot of the session for reporting.
type Status struct {
	State     string `json:"state"`
	QueueLen  int    `json:"queue_len"`
	Analyzed  int64  `json:"analyzed"`
	Fallbacks int64  `json:"fallbacks"`
}

// GetStatus returns the session status snapshot.
func (s *Session) GetStatus() Status {
	return Status{
		State:     stateString(s.State()),
		QueueLen:  s.queue.len(),
		Analyzed:  atomic.LoadInt64(&s.analyzed),
		Fallbacks: atomic.LoadInt64(&s.fallbacks),
	}
}

func stateString(st int32) string {
	switch st {
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Run is the session worker loop. It performs the startup handshake once,
// then pulls requests from the queue one at a time, each executed to
// completion before the next begins. On handshake failure the loop stays
// alive resolving every request to the fallback result; there is no retry.
// Run returns when ctx is cancelled, after resolving anything still queued.
func (s *Session) Run(ctx context.Context) error {
	defer s.shutdown()

	if err := s.connect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("engine unavailable, serving fallback results")
		atomic.StoreInt32(&s.state, StateFailed)
	} else {
		s.log.Info().
			Str("engine", s.cfg.EnginePath).
			Int("hash_mb", s.cfg.HashMB).
			Int("threads", s.cfg.Threads).
			Msg("engine session ready")
		atomic.StoreInt32(&s.state, StateReady)
	}

	for {
		req, err := s.queue.dequeue(ctx)
		if err != nil {
			return err
		}

		if atomic.LoadInt32(&s.state) == StateFailed {
			atomic.AddInt64(&s.fallbacks, 1)
			req.resolve(Fallback())
			continue
		}

		atomic.StoreInt32(&s.state, StateBusy)
		res, err := s.execute(req)
		if err != nil {
			// Transport died mid-request. Degrade this and everything after.
			s.log.Warn().Err(err).Str("fen", req.fen).Msg("engine lost, degrading session")
			atomic.StoreInt32(&s.state, StateFailed)
			atomic.AddInt64(&s.fallbacks, 1)
			req.resolve(Fallback())
			continue
		}
		atomic.StoreInt32(&s.state, StateReady)
		atomic.AddInt64(&s.analyzed, 1)
		req.resolve(res)
	}
}

// shutdown resolves all pending work to the fallback result and releases
// the transport. No request ever hangs across Run's exit.
func (s *Session) shutdown() {
	for _, req := range s.queue.close() {
		atomic.AddInt64(&s.fallbacks, 1)
		req.resolve(Fallback())
	}
	if s.tr != nil {
		_ = s.tr.Close()
	}
}

// connect establishes the transport and performs the UCI handshake:
// identification, option setup, readiness probe. Each wait is bounded by
// HandshakeTimeout; the single setup attempt either succeeds or fails the
// session for its lifetime.
func (s *Session) connect(ctx context.Context) error {
	atomic.StoreInt32(&s.state, StateHandshaking)

	if s.cfg.Transport != nil {
		s.tr = s.cfg.Transport
	} else {
		p, err := StartProcess(s.cfg.EnginePath)
		if err != nil {
			return fmt.Errorf("start engine: %w", err)
		}
		s.tr = p
	}

	if err := s.tr.Send("uci"); err != nil {
		return fmt.Errorf("identify: %w", err)
	}
	if err := s.awaitLine(ctx, "uciok"); err != nil {
		return fmt.Errorf("await uciok: %w", err)
	}

	if err := s.tr.Send(fmt.Sprintf("setoption name Hash value %d", s.cfg.HashMB)); err != nil {
		return fmt.Errorf("set hash: %w", err)
	}
	if err := s.tr.Send(fmt.Sprintf("setoption name Threads value %d", s.cfg.Threads)); err != nil {
		return fmt.Errorf("set threads: %w", err)
	}
	if err := s.tr.Send("setoption name MultiPV value 1"); err != nil {
		return fmt.Errorf("set multipv: %w", err)
	}

	if err := s.tr.Send("isready"); err != nil {
		return fmt.Errorf("ready check: %w", err)
	}
	if err := s.awaitLine(ctx, "readyok"); err != nil {
		return fmt.Errorf("await readyok: %w", err)
	}
	return nil
}

// awaitLine consumes engine output until a line containing the marker
// arrives, the handshake timeout expires, or the transport closes.
func (s *Session) awaitLine(ctx context.Context, marker string) error {
	timer := time.NewTimer(s.cfg.HandshakeTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("timed out after %s waiting for %q", s.cfg.HandshakeTimeout, marker)
		case line, ok := <-s.tr.Lines():
			if !ok {
				return fmt.Errorf("transport closed waiting for %q", marker)
			}
			if strings.Contains(line, marker) {
				return nil
			}
		}
	}
}

// execute runs one full position+search cycle. The readiness probe after
// ucinewgame doubles as a drain of any stale output left over from the
// previous search, so lines cannot be attributed to the wrong request.
func (s *Session) execute(req *request) (Result, error) {
	if err := s.tr.Send("ucinewgame"); err != nil {
		return Result{}, err
	}
	if err := s.tr.Send("isready"); err != nil {
		return Result{}, err
	}
	if err := s.awaitLine(context.Background(), "readyok"); err != nil {
		return Result{}, err
	}

	if err := s.tr.Send("position fen " + req.fen); err != nil {
		return Result{}, err
	}
	if err := s.tr.Send(fmt.Sprintf("go depth %d", req.depth)); err != nil {
		return Result{}, err
	}

	// Last parsed info line wins; the zero Eval is the documented default
	// when no info line arrives before bestmove.
	res := Result{BestMove: NullMove}
	for line := range s.tr.Lines() {
		switch {
		case strings.HasPrefix(line, "info"):
			info, ok := ParseInfo(line)
			if !ok {
				continue
			}
			res.Eval = info.Eval
			if info.PV != "" {
				res.PV = info.PV
			}
			s.log.Debug().
				Str("fen", req.fen).
				Bool("mate", info.Eval.Mate).
				Int("value", info.Eval.Value).
				Msg("info line")
		case strings.HasPrefix(line, "bestmove"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				res.BestMove = fields[1]
			}
			return res, nil
		}
	}
	return Result{}, fmt.Errorf("transport closed during search")
}
