// Package eval scores chess positions. The score is a deterministic integer
// in centipawns from White's point of view; the searcher negates it for
// Black-to-move framing. All arithmetic is integer so scores compare exactly,
// which alpha-beta pruning depends on.
package eval

import (
	"github.com/notnil/chess"

	"github.com/freeeve/minnow/internal/board"
)

// maxNonPawnMaterial is the non-pawn material one side starts with; king
// safety scales against it so safety stops mattering as the board empties.
const maxNonPawnMaterial = 2*320 + 2*330 + 2*500 + 900

var centerSquares = []chess.Square{chess.D4, chess.E4, chess.D5, chess.E5}

// Evaluator scores positions against a fixed weight table.
type Evaluator struct {
	w *Weights
}

// New returns an evaluator using the given weights, or the defaults when
// weights is nil.
func New(w *Weights) *Evaluator {
	if w == nil {
		w = DefaultWeights()
	}
	return &Evaluator{w: w}
}

// Weights exposes the evaluator's weight table (read-only by convention).
func (e *Evaluator) Weights() *Weights {
	return e.w
}

// Evaluate returns the position's score in centipawns, positive favoring
// White. It is a pure function of the current position: no history, no
// retained state, identical input gives identical output.
func (e *Evaluator) Evaluate(b *board.Board) int {
	pos := b.Position()
	squares := pos.Board()

	score := e.materialAndPlacement(squares)
	score += e.kingSafety(b, chess.White) - e.kingSafety(b, chess.Black)
	score += e.pawnStructure(squares)
	score += e.w.Mobility * (board.MobilityCount(squares, chess.White) - board.MobilityCount(squares, chess.Black))
	score += e.tactical(squares)
	return score
}

// materialAndPlacement walks the board once, summing piece values and
// piece-square bonuses as a White-minus-Black difference.
func (e *Evaluator) materialAndPlacement(squares *chess.Board) int {
	score := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := squares.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		v := e.w.PieceValue(p.Type()) + pstBonus(p.Type(), sq, p.Color())
		if p.Color() == chess.White {
			score += v
		} else {
			score -= v
		}
	}
	return score
}

// nonPawnMaterial sums side's material excluding pawns and the king.
func (e *Evaluator) nonPawnMaterial(squares *chess.Board, side chess.Color) int {
	total := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := squares.Piece(sq)
		if p == chess.NoPiece || p.Color() != side {
			continue
		}
		if t := p.Type(); t != chess.Pawn && t != chess.King {
			total += e.w.PieceValue(t)
		}
	}
	return total
}

// kingSafety scores castling rights, the pawn shield in front of the king,
// and an in-check penalty for the side to move. The whole term is scaled by
// the opponent's remaining non-pawn material: with the queens and rooks off,
// an exposed king is an active piece, not a liability.
func (e *Evaluator) kingSafety(b *board.Board, side chess.Color) int {
	pos := b.Position()
	squares := pos.Board()

	raw := 0
	rights := pos.CastleRights()
	if rights.CanCastle(side, chess.KingSide) {
		raw += e.w.CastleKingside
	}
	if rights.CanCastle(side, chess.QueenSide) {
		raw += e.w.CastleQueenside
	}

	king := board.KingSquare(squares, side)
	if king != chess.NoSquare {
		raw += e.w.PawnShield * shieldPawns(squares, king, side)
	}

	if side == pos.Turn() && b.InCheck() {
		raw -= e.w.CheckPenalty
	}

	enemy := e.nonPawnMaterial(squares, side.Other())
	return raw * enemy / maxNonPawnMaterial
}

// shieldPawns counts friendly pawns on the three files around the king, one
// rank ahead of it.
func shieldPawns(squares *chess.Board, king chess.Square, side chess.Color) int {
	kf := int(king.File())
	kr := int(king.Rank())
	ahead := kr + 1
	if side == chess.Black {
		ahead = kr - 1
	}
	if ahead < 0 || ahead > 7 {
		return 0
	}

	count := 0
	for df := -1; df <= 1; df++ {
		f := kf + df
		if f < 0 || f > 7 {
			continue
		}
		p := squares.Piece(chess.NewSquare(chess.File(f), chess.Rank(ahead)))
		if p.Type() == chess.Pawn && p.Color() == side {
			count++
		}
	}
	return count
}

// pawnStructure penalizes doubled and isolated pawns and rewards passed
// pawns scaled by how far they have advanced.
func (e *Evaluator) pawnStructure(squares *chess.Board) int {
	var pawns [2][]chess.Square // indexed by color, White=0
	var files [2][8]int

	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := squares.Piece(sq)
		if p.Type() != chess.Pawn {
			continue
		}
		c := colorIndex(p.Color())
		pawns[c] = append(pawns[c], sq)
		files[c][int(sq.File())]++
	}

	score := 0
	for _, color := range []chess.Color{chess.White, chess.Black} {
		c := colorIndex(color)
		sign := 1
		if color == chess.Black {
			sign = -1
		}

		for f := 0; f < 8; f++ {
			n := files[c][f]
			if n > 1 {
				score -= sign * e.w.DoubledPawn * (n - 1)
			}
			if n > 0 && !hasNeighborPawn(files[c], f) {
				score -= sign * e.w.IsolatedPawn * n
			}
		}

		for _, sq := range pawns[c] {
			if isPassed(squares, sq, color) {
				score += sign * e.w.PassedPawnStep * advancement(sq, color)
			}
		}
	}
	return score
}

func colorIndex(c chess.Color) int {
	if c == chess.White {
		return 0
	}
	return 1
}

func hasNeighborPawn(files [8]int, f int) bool {
	if f > 0 && files[f-1] > 0 {
		return true
	}
	return f < 7 && files[f+1] > 0
}

// isPassed reports whether no enemy pawn stands ahead of sq on the same or
// an adjacent file.
func isPassed(squares *chess.Board, sq chess.Square, side chess.Color) bool {
	file := int(sq.File())
	rank := int(sq.Rank())

	step := 1
	if side == chess.Black {
		step = -1
	}
	for r := rank + step; r >= 0 && r <= 7; r += step {
		for df := -1; df <= 1; df++ {
			f := file + df
			if f < 0 || f > 7 {
				continue
			}
			p := squares.Piece(chess.NewSquare(chess.File(f), chess.Rank(r)))
			if p.Type() == chess.Pawn && p.Color() == side.Other() {
				return false
			}
		}
	}
	return true
}

// advancement counts ranks advanced beyond the pawn's starting rank.
func advancement(sq chess.Square, side chess.Color) int {
	if side == chess.White {
		return int(sq.Rank()) - 1
	}
	return 6 - int(sq.Rank())
}

// tactical adds the small terms: control of the four central squares and the
// bishop pair.
func (e *Evaluator) tactical(squares *chess.Board) int {
	score := 0
	for _, sq := range centerSquares {
		if board.SquareAttacked(squares, sq, chess.White) {
			score += e.w.CenterControl
		}
		if board.SquareAttacked(squares, sq, chess.Black) {
			score -= e.w.CenterControl
		}
	}

	var bishops [2]int
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := squares.Piece(sq)
		if p.Type() == chess.Bishop {
			bishops[colorIndex(p.Color())]++
		}
	}
	if bishops[0] >= 2 {
		score += e.w.BishopPair
	}
	if bishops[1] >= 2 {
		score -= e.w.BishopPair
	}
	return score
}
