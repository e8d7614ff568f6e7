package engine

import (
	"github.com/notnil/chess"

	"github.com/freeeve/minnow/internal/board"
)

// quiesce extends the search past the nominal horizon along noisy
// lines (captures, promotions, checks) until the position is quiet,
// so the horizon never lands in the middle of an exchange. When the
// side to move is in check every legal move is searched, since
// standing pat is not an option.
func (s *Searcher) quiesce(b *board.Board, depth, ply, alpha, beta int) int {
	s.qnodes++
	if s.qnodes&deadlinePollMask == 0 {
		s.pollDeadline()
	}
	if s.aborted {
		return alpha
	}

	if b.IsDraw() {
		return 0
	}
	moves := b.LegalMoves()
	inCheck := b.InCheck()
	if len(moves) == 0 {
		if inCheck {
			return -(MateValue - ply)
		}
		return 0
	}

	if depth <= 0 {
		return s.relativeEval(b)
	}

	if !inCheck {
		standPat := s.relativeEval(b)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		moves = noisy(b.Position(), moves)
		if len(moves) == 0 {
			return alpha
		}
	}

	for _, m := range orderMoves(b.Position(), moves) {
		b.Push(m)
		score := -s.quiesce(b, depth-1, ply+1, -beta, -alpha)
		b.Pop()
		if s.aborted {
			return alpha
		}
		if score >= beta {
			s.cutoffs++
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// noisy filters moves down to captures, promotions, and checks.
func noisy(pos *chess.Position, moves []*chess.Move) []*chess.Move {
	out := moves[:0:0]
	for _, m := range moves {
		if pos.Board().Piece(m.S2()) != chess.NoPiece ||
			m.HasTag(chess.EnPassant) ||
			m.Promo() != chess.NoPieceType ||
			m.HasTag(chess.Check) {
			out = append(out, m)
		}
	}
	return out
}
