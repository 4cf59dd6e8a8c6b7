package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/analysisboard/api/internal/cache"
	"github.com/analysisboard/api/internal/engine"
	"github.com/analysisboard/api/internal/review"
)

type stubAnalyzer struct {
	res       engine.Result
	lastFEN   string
	lastDepth int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, fen string, depth int) engine.Result {
	a.lastFEN = fen
	a.lastDepth = depth
	return a.res
}

type stubSession struct {
	status engine.Status
}

func (s *stubSession) GetStatus() engine.Status { return s.status }

const testFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestRouter(an *stubAnalyzer, sess *stubSession) http.Handler {
	reviewer := review.NewReviewer(review.Config{Depth: 10, Logger: zerolog.Nop()}, an, nil)
	return NewRouter(zerolog.Nop(), an, reviewer, cache.New(), sess, 14)
}

func TestAnalyzeEndpoint(t *testing.T) {
	an := &stubAnalyzer{res: engine.Result{
		Eval:     engine.Eval{Value: 23},
		BestMove: "e2e4",
		PV:       "e2e4 e7e5",
	}}
	router := newTestRouter(an, &stubSession{status: engine.Status{State: "ready"}})

	req := httptest.NewRequest(http.MethodGet, "/v1/analyze?fen="+url.QueryEscape(testFEN)+"&depth=16", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CP != 23 || resp.BestMove != "e2e4" || resp.PV != "e2e4 e7e5" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Score != "+0.23" {
		t.Errorf("score = %q, want +0.23", resp.Score)
	}
	if an.lastDepth != 16 {
		t.Errorf("depth passed to analyzer = %d, want 16", an.lastDepth)
	}
}

func TestAnalyzeEndpoint_Validation(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, nil)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing fen", "/v1/analyze", http.StatusBadRequest},
		{"bad depth", "/v1/analyze?fen=" + url.QueryEscape(testFEN) + "&depth=x", http.StatusBadRequest},
		{"zero depth", "/v1/analyze?fen=" + url.QueryEscape(testFEN) + "&depth=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAnalyzeEndpoint_DepthDefaultsAndClamps(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyze?fen="+url.QueryEscape(testFEN), nil))
	if an.lastDepth != 14 {
		t.Errorf("default depth = %d, want 14", an.lastDepth)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyze?fen="+url.QueryEscape(testFEN)+"&depth=99", nil))
	if an.lastDepth != 30 {
		t.Errorf("clamped depth = %d, want 30", an.lastDepth)
	}
}

func TestReviewEndpoint(t *testing.T) {
	an := &stubAnalyzer{res: engine.Result{Eval: engine.Eval{Value: 10}, BestMove: "e2e4"}}
	router := newTestRouter(an, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/review?moves=e4,e5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	var report review.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Moves) != 2 {
		t.Errorf("reviewed %d moves, want 2", len(report.Moves))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/review?moves=notamove", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for invalid moves = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/review", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status for missing moves = %d, want 400", rec.Code)
	}
}

func TestReadyzReflectsSessionState(t *testing.T) {
	an := &stubAnalyzer{}

	router := newTestRouter(an, &stubSession{status: engine.Status{State: "ready"}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready session: status = %d, want 200", rec.Code)
	}

	router = newTestRouter(an, &stubSession{status: engine.Status{State: "failed"}})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failed session: status = %d, want 503", rec.Code)
	}
}

func TestSessionStatusEndpoint(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, &stubSession{status: engine.Status{State: "busy", Analyzed: 7}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session/status", nil))
	var st engine.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.State != "busy" || st.Analyzed != 7 {
		t.Errorf("status = %+v", st)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var stats cache.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abcd1234")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abcd1234" {
		t.Errorf("X-Request-ID = %q, want abcd1234", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := rec.Header().Get("X-Request-ID"); len(got) != 8 {
		t.Errorf("generated X-Request-ID = %q, want 8 characters", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	an := &stubAnalyzer{}
	router := newTestRouter(an, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}
