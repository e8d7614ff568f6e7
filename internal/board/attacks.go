package board

import "github.com/notnil/chess"

// Attack detection over the 8x8 occupancy. The rules engine tags checks on
// the moves it generates but offers no "is this square attacked" query, and
// the evaluator needs one for king safety, center control, and mobility.

type offset struct{ df, dr int }

var (
	knightOffsets = []offset{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	kingOffsets = []offset{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1},
		{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}
	bishopDirs = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func squareAt(file, rank int) chess.Square {
	return chess.NewSquare(chess.File(file), chess.Rank(rank))
}

func onBoard(file, rank int) bool {
	return file >= 0 && file <= 7 && rank >= 0 && rank <= 7
}

// SquareAttacked reports whether sq is attacked by any piece of color by.
func SquareAttacked(b *chess.Board, sq chess.Square, by chess.Color) bool {
	file := int(sq.File())
	rank := int(sq.Rank())

	// Pawn attacks: a white pawn attacks from one rank below, black from above.
	pawnRank := rank - 1
	if by == chess.Black {
		pawnRank = rank + 1
	}
	for _, df := range []int{-1, 1} {
		if onBoard(file+df, pawnRank) {
			p := b.Piece(squareAt(file+df, pawnRank))
			if p.Type() == chess.Pawn && p.Color() == by {
				return true
			}
		}
	}

	for _, o := range knightOffsets {
		if onBoard(file+o.df, rank+o.dr) {
			p := b.Piece(squareAt(file+o.df, rank+o.dr))
			if p.Type() == chess.Knight && p.Color() == by {
				return true
			}
		}
	}

	for _, o := range kingOffsets {
		if onBoard(file+o.df, rank+o.dr) {
			p := b.Piece(squareAt(file+o.df, rank+o.dr))
			if p.Type() == chess.King && p.Color() == by {
				return true
			}
		}
	}

	if slidingAttack(b, file, rank, by, bishopDirs, chess.Bishop) {
		return true
	}
	return slidingAttack(b, file, rank, by, rookDirs, chess.Rook)
}

// slidingAttack walks rays from (file, rank) looking for a slider of color by
// moving along dirs; queens count on both bishop and rook rays.
func slidingAttack(b *chess.Board, file, rank int, by chess.Color, dirs []offset, kind chess.PieceType) bool {
	for _, d := range dirs {
		f, r := file+d.df, rank+d.dr
		for onBoard(f, r) {
			p := b.Piece(squareAt(f, r))
			if p != chess.NoPiece {
				if p.Color() == by && (p.Type() == kind || p.Type() == chess.Queen) {
					return true
				}
				break
			}
			f += d.df
			r += d.dr
		}
	}
	return false
}

// MobilityCount returns the number of squares the given side's knights,
// bishops, rooks, and queens can reach, not counting squares occupied by
// friendly pieces. Pawns and kings are excluded, as is conventional: pawn
// "mobility" says little about piece activity, and king mobility rewards
// exactly the exposure king safety penalizes.
func MobilityCount(b *chess.Board, side chess.Color) int {
	count := 0
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece || p.Color() != side {
			continue
		}
		file := int(sq.File())
		rank := int(sq.Rank())
		switch p.Type() {
		case chess.Knight:
			count += stepMobility(b, file, rank, side, knightOffsets)
		case chess.Bishop:
			count += rayMobility(b, file, rank, side, bishopDirs)
		case chess.Rook:
			count += rayMobility(b, file, rank, side, rookDirs)
		case chess.Queen:
			count += rayMobility(b, file, rank, side, bishopDirs)
			count += rayMobility(b, file, rank, side, rookDirs)
		}
	}
	return count
}

func stepMobility(b *chess.Board, file, rank int, side chess.Color, offs []offset) int {
	count := 0
	for _, o := range offs {
		if !onBoard(file+o.df, rank+o.dr) {
			continue
		}
		p := b.Piece(squareAt(file+o.df, rank+o.dr))
		if p == chess.NoPiece || p.Color() != side {
			count++
		}
	}
	return count
}

func rayMobility(b *chess.Board, file, rank int, side chess.Color, dirs []offset) int {
	count := 0
	for _, d := range dirs {
		f, r := file+d.df, rank+d.dr
		for onBoard(f, r) {
			p := b.Piece(squareAt(f, r))
			if p == chess.NoPiece {
				count++
				f += d.df
				r += d.dr
				continue
			}
			if p.Color() != side {
				count++
			}
			break
		}
	}
	return count
}

// KingSquare returns the square of side's king, or NoSquare if absent
// (possible only in malformed test positions).
func KingSquare(b *chess.Board, side chess.Color) chess.Square {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p.Type() == chess.King && p.Color() == side {
			return sq
		}
	}
	return chess.NoSquare
}
