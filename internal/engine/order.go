package engine

import (
	"sort"

	"github.com/notnil/chess"
)

// Ordering bonuses. These are fixed and intentionally independent of
// the evaluator's tunable weights; ordering only needs a consistent
// ranking, not calibrated centipawns.
const (
	promoBonus  = 800
	castleBonus = 60
	checkBonus  = 50
	centerBonus = 20
)

// orderValue ranks piece types for MVV-LVA scoring. The king's large
// value keeps king captures of defended pieces at the back.
func orderValue(t chess.PieceType) int {
	switch t {
	case chess.Pawn:
		return 100
	case chess.Knight:
		return 320
	case chess.Bishop:
		return 330
	case chess.Rook:
		return 500
	case chess.Queen:
		return 900
	case chess.King:
		return 20000
	default:
		return 0
	}
}

// moveScore ranks m for search ordering: captures by most valuable
// victim / least valuable attacker, then promotions, castling,
// checking moves, and central destinations.
func moveScore(pos *chess.Position, m *chess.Move) int {
	score := 0
	if victim := pos.Board().Piece(m.S2()); victim != chess.NoPiece {
		score += 10*orderValue(victim.Type()) - orderValue(pos.Board().Piece(m.S1()).Type())
	} else if m.HasTag(chess.EnPassant) {
		score += 10*orderValue(chess.Pawn) - orderValue(chess.Pawn)
	}
	if m.Promo() != chess.NoPieceType {
		score += promoBonus
	}
	if m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle) {
		score += castleBonus
	}
	if m.HasTag(chess.Check) {
		score += checkBonus
	}
	switch m.S2() {
	case chess.D4, chess.E4, chess.D5, chess.E5:
		score += centerBonus
	}
	return score
}

// orderMoves returns moves sorted best-first by moveScore. The sort
// is stable so equally scored moves keep the generator's order and
// searches stay reproducible.
func orderMoves(pos *chess.Position, moves []*chess.Move) []*chess.Move {
	type scored struct {
		m     *chess.Move
		score int
	}
	ranked := make([]scored, len(moves))
	for i, m := range moves {
		ranked[i] = scored{m: m, score: moveScore(pos, m)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	out := make([]*chess.Move, len(moves))
	for i, r := range ranked {
		out[i] = r.m
	}
	return out
}
