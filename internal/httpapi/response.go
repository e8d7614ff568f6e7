package httpapi

import (
	"encoding/json"
	"net/http"
)

// BestMoveResponse is the JSON result of a /v1/bestmove search.
type BestMoveResponse struct {
	FEN       string `json:"fen"`
	BestMove  string `json:"best_move,omitempty"`
	Score     int    `json:"score"`
	Mate      int    `json:"mate,omitempty"` // plies to mate when Score encodes one
	Status    string `json:"status,omitempty"`
	Depth     int    `json:"depth"`
	Nodes     int64  `json:"nodes"`
	QNodes    int64  `json:"qnodes"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// EvalResponse is the JSON result of a /v1/eval static evaluation.
// Score is centipawns from White's perspective.
type EvalResponse struct {
	FEN        string `json:"fen"`
	Score      int    `json:"score"`
	SideToMove string `json:"side_to_move"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
	// Don't call http.Error after setting headers - it causes "superfluous WriteHeader"
}
