package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/analysisboard/api/internal/cache"
	"github.com/analysisboard/api/internal/engine"
	"github.com/analysisboard/api/internal/review"
)

// SessionInfo exposes the engine session's lifecycle snapshot.
type SessionInfo interface {
	GetStatus() engine.Status
}

// Handler serves the analysis API.
type Handler struct {
	an           cache.Analyzer
	reviewer     *review.Reviewer
	cache        *cache.Cache
	session      SessionInfo
	defaultDepth int
	maxDepth     int
	log          zerolog.Logger
}

// NewRouter builds the HTTP handler. cache and session are optional; the
// corresponding endpoints degrade gracefully when absent.
func NewRouter(log zerolog.Logger, an cache.Analyzer, reviewer *review.Reviewer, c *cache.Cache, session SessionInfo, defaultDepth int) http.Handler {
	if defaultDepth <= 0 {
		defaultDepth = 14
	}
	h := &Handler{
		an:           an,
		reviewer:     reviewer,
		cache:        c,
		session:      session,
		defaultDepth: defaultDepth,
		maxDepth:     30,
		log:          log,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.ready))
	mux.Handle("/v1/analyze", http.HandlerFunc(h.analyze))
	mux.Handle("/v1/review", http.HandlerFunc(h.review))
	mux.Handle("/v1/cache/stats", http.HandlerFunc(h.cacheStats))
	mux.Handle("/v1/session/status", http.HandlerFunc(h.sessionStatus))

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return CORS(RequestID(AccessLog(log, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.session != nil {
		st := h.session.GetStatus()
		if st.State != "ready" && st.State != "busy" {
			http.Error(w, "engine "+st.State, http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		http.Error(w, "missing fen parameter", http.StatusBadRequest)
		return
	}

	depth, ok := h.depthParam(r)
	if !ok {
		http.Error(w, "invalid depth parameter", http.StatusBadRequest)
		return
	}

	res := h.an.Analyze(r.Context(), fen, depth)
	writeJSON(w, toAnalyzeResponse(fen, depth, res))
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	if h.reviewer == nil {
		http.Error(w, "review disabled", http.StatusNotFound)
		return
	}

	movesParam := r.URL.Query().Get("moves")
	if movesParam == "" {
		http.Error(w, "missing moves parameter", http.StatusBadRequest)
		return
	}
	var sans []string
	for _, san := range strings.Split(movesParam, ",") {
		if san = strings.TrimSpace(san); san != "" {
			sans = append(sans, san)
		}
	}
	if len(sans) == 0 {
		http.Error(w, "empty move list", http.StatusBadRequest)
		return
	}

	report, err := h.reviewer.ReviewMoves(r.Context(), sans)
	if err != nil {
		http.Error(w, "invalid move list: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		http.Error(w, "cache disabled", http.StatusNotFound)
		return
	}
	writeJSON(w, h.cache.GetStats())
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	if h.session == nil {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}
	writeJSON(w, h.session.GetStatus())
}

// depthParam parses the depth query parameter, clamped to the configured
// maximum; absent means the default.
func (h *Handler) depthParam(r *http.Request) (int, bool) {
	d := r.URL.Query().Get("depth")
	if d == "" {
		return h.defaultDepth, true
	}
	v, err := strconv.Atoi(d)
	if err != nil || v < 1 {
		return 0, false
	}
	if v > h.maxDepth {
		v = h.maxDepth
	}
	return v, true
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
