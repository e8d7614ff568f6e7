// Package httpapi exposes the searcher and evaluator over HTTP for
// analysis queries. The server holds no game state; every request
// carries its position as a FEN string.
package httpapi

import (
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/engine"
	"github.com/freeeve/minnow/internal/eval"
)

// Config configures the analysis handler.
type Config struct {
	Depth       int           // default search depth (0 uses the engine default)
	MaxDepth    int           // cap on client-requested depth, default 6
	MaxMoveTime time.Duration // cap on client-requested budgets, default 10s
	Weights     *eval.Weights // nil uses default weights
	Logger      zerolog.Logger
}

// Handler serves analysis queries.
type Handler struct {
	cfg  Config
	eval *eval.Evaluator
	log  zerolog.Logger
}

// NewRouter builds the HTTP handler tree with request-ID, access-log,
// and CORS middleware applied.
func NewRouter(cfg Config) http.Handler {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 6
	}
	if cfg.MaxMoveTime <= 0 {
		cfg.MaxMoveTime = 10 * time.Second
	}
	h := &Handler{
		cfg:  cfg,
		eval: eval.New(cfg.Weights),
		log:  cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(h.health))
	mux.Handle("/readyz", http.HandlerFunc(h.health))
	mux.Handle("/v1/bestmove", http.HandlerFunc(h.bestMove))
	mux.Handle("/v1/eval", http.HandlerFunc(h.evaluate))

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return CORS(RequestID(AccessLog(cfg.Logger, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) bestMove(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromQuery(w, r)
	if !ok {
		return
	}

	limits := engine.Limits{Depth: h.cfg.Depth}
	if d := r.URL.Query().Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			http.Error(w, "invalid depth parameter", http.StatusBadRequest)
			return
		}
		if n > h.cfg.MaxDepth {
			n = h.cfg.MaxDepth
		}
		limits.Depth = n
	}
	if mt := r.URL.Query().Get("movetime_ms"); mt != "" {
		n, err := strconv.Atoi(mt)
		if err != nil || n < 1 {
			http.Error(w, "invalid movetime_ms parameter", http.StatusBadRequest)
			return
		}
		limits.MoveTime = time.Duration(n) * time.Millisecond
		if limits.MoveTime > h.cfg.MaxMoveTime {
			limits.MoveTime = h.cfg.MaxMoveTime
		}
	}

	// Searchers keep per-search state, so each request gets its own.
	s := engine.New(engine.Config{
		Evaluator: h.eval,
		Logger:    h.log.With().Str("rid", GetRequestID(r.Context())).Logger(),
	})
	res := s.FindBestMove(b, limits)

	resp := BestMoveResponse{
		FEN:       b.FEN(),
		Score:     res.Score,
		Depth:     res.Stats.Depth,
		Nodes:     res.Stats.Nodes,
		QNodes:    res.Stats.QNodes,
		ElapsedMS: res.Stats.Elapsed.Milliseconds(),
	}
	if res.Move != nil {
		resp.BestMove = chess.UCINotation{}.Encode(b.Position(), res.Move)
	} else if b.InCheck() {
		resp.Status = "checkmate"
	} else {
		resp.Status = "stalemate"
	}
	if engine.IsMateScore(res.Score) {
		resp.Mate = engine.MateIn(res.Score)
	}
	writeJSON(w, resp)
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boardFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, EvalResponse{
		FEN:        b.FEN(),
		Score:      h.eval.Evaluate(b),
		SideToMove: b.SideToMove().String(),
	})
}

func (h *Handler) boardFromQuery(w http.ResponseWriter, r *http.Request) (*board.Board, bool) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		http.Error(w, "missing fen parameter", http.StatusBadRequest)
		return nil, false
	}
	b, err := board.FromFEN(fen)
	if err != nil {
		http.Error(w, "invalid FEN: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return b, true
}
