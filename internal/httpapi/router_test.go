package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
)

func newTestRouter() http.Handler {
	return NewRouter(Config{Depth: 2, Logger: zerolog.Nop()})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestBestMoveFindsMate(t *testing.T) {
	fen := "6k1/5ppp/8/8/8/8/8/R6K w - - 0 1"
	rec := get(t, newTestRouter(), "/v1/bestmove?depth=3&fen="+url.QueryEscape(fen))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp BestMoveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BestMove != "a1a8" {
		t.Errorf("best_move = %q, want a1a8", resp.BestMove)
	}
	if resp.Mate != 1 {
		t.Errorf("mate = %d, want 1", resp.Mate)
	}
	if resp.Nodes == 0 {
		t.Error("nodes = 0")
	}
}

func TestBestMoveOnFinishedPosition(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		status string
	}{
		{"checkmate", "R5k1/5ppp/8/8/8/8/8/7K b - - 0 1", "checkmate"},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", "stalemate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestRouter(), "/v1/bestmove?fen="+url.QueryEscape(tt.fen))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var resp BestMoveResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.BestMove != "" {
				t.Errorf("best_move = %q, want empty", resp.BestMove)
			}
			if resp.Status != tt.status {
				t.Errorf("status = %q, want %q", resp.Status, tt.status)
			}
		})
	}
}

func TestBestMoveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing fen", "/v1/bestmove"},
		{"garbage fen", "/v1/bestmove?fen=" + url.QueryEscape("not a position")},
		{"bad depth", "/v1/bestmove?depth=x&fen=" + url.QueryEscape("8/8/8/8/8/8/8/K6k w - - 0 1")},
		{"negative movetime", "/v1/bestmove?movetime_ms=-5&fen=" + url.QueryEscape("8/8/8/8/8/8/8/K6k w - - 0 1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestRouter(), tt.path)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestEval(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	rec := get(t, newTestRouter(), "/v1/eval?fen="+url.QueryEscape(fen))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp EvalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Score != 0 {
		t.Errorf("starting position score = %d, want 0", resp.Score)
	}
	if resp.SideToMove != "w" {
		t.Errorf("side_to_move = %q, want w", resp.SideToMove)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/eval", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}
