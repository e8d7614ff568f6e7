// Package board adapts the notnil/chess rules engine to the make/unmake
// discipline the searcher needs. Positions in notnil/chess are immutable
// values, so Push/Pop maintain a stack of positions; the root position is
// never touched, which makes restoration after a search structural rather
// than something each caller has to get right.
package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// Board is the shared mutable search state: the current position plus the
// bookkeeping the library doesn't expose (repetition counts, fifty-move
// clock). It is not safe for concurrent use; the search is single-threaded.
type Board struct {
	stack  []*chess.Position
	moves  []*chess.Move
	clocks []int // halfmove clock per stack level

	// seen counts repetition keys along game history plus the current
	// search path, for threefold-repetition detection.
	seen map[string]int
}

// repetitionKey identifies a position for repetition purposes: placement,
// side to move, castling rights, and en-passant square. Position.Hash covers
// the move counters too, so two occurrences of the same placement would
// never collide under it.
func repetitionKey(pos *chess.Position) string {
	fen := pos.String()
	for i, n := 0, 0; i < len(fen); i++ {
		if fen[i] == ' ' {
			n++
			if n == 4 {
				return fen[:i]
			}
		}
	}
	return fen
}

// New returns a board at the standard starting position.
func New() *Board {
	b, err := FromFEN(chess.NewGame().Position().String())
	if err != nil {
		// The starting position always parses.
		panic(err)
	}
	return b
}

// FromFEN returns a board rooted at the given FEN position.
func FromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	game := chess.NewGame(opt)
	pos := game.Position()

	b := &Board{
		stack:  []*chess.Position{pos},
		clocks: []int{halfMoveClock(pos)},
		seen:   map[string]int{repetitionKey(pos): 1},
	}
	return b, nil
}

// FromGame roots a board at the game's current position, seeding the
// repetition table from the game's full position history so that a
// threefold repetition spanning the game/search boundary is still seen.
func FromGame(g *chess.Game) *Board {
	pos := g.Position()
	b := &Board{
		stack:  []*chess.Position{pos},
		clocks: []int{halfMoveClock(pos)},
		seen:   make(map[string]int),
	}
	for _, p := range g.Positions() {
		b.seen[repetitionKey(p)]++
	}
	return b
}

// Position returns the current position. Callers must treat it as read-only.
func (b *Board) Position() *chess.Position {
	return b.stack[len(b.stack)-1]
}

// SideToMove returns the color to move in the current position.
func (b *Board) SideToMove() chess.Color {
	return b.Position().Turn()
}

// FEN returns the current position in FEN notation.
func (b *Board) FEN() string {
	return b.Position().String()
}

// Hash returns the current position's hash.
func (b *Board) Hash() [16]byte {
	return b.Position().Hash()
}

// Depth returns how many moves are currently pushed. The searcher asserts
// this returns to its pre-search value after every search.
func (b *Board) Depth() int {
	return len(b.stack) - 1
}

// LegalMoves returns the legal moves for the side to move, in the order the
// rules engine generates them. The searcher re-sorts them.
func (b *Board) LegalMoves() []*chess.Move {
	return b.Position().ValidMoves()
}

// Push applies a legal move. Every Push must be paired with a Pop before the
// owning call returns.
func (b *Board) Push(m *chess.Move) {
	pos := b.Position()

	clock := b.clocks[len(b.clocks)-1] + 1
	if isCapture(pos, m) || pos.Board().Piece(m.S1()).Type() == chess.Pawn {
		clock = 0
	}

	next := pos.Update(m)
	b.stack = append(b.stack, next)
	b.moves = append(b.moves, m)
	b.clocks = append(b.clocks, clock)
	b.seen[repetitionKey(next)]++
}

// Pop undoes the most recent Push. Popping the root position indicates a
// make/unmake mismatch in the caller and panics: a drifted position would
// silently corrupt every node searched afterwards.
func (b *Board) Pop() {
	if len(b.stack) == 1 {
		panic("board: Pop without matching Push")
	}
	key := repetitionKey(b.Position())
	b.seen[key]--
	if b.seen[key] <= 0 {
		delete(b.seen, key)
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.moves = b.moves[:len(b.moves)-1]
	b.clocks = b.clocks[:len(b.clocks)-1]
}

// ResolveUCI decodes a move in UCI coordinates and resolves it to the
// matching move from the generator. UCINotation.Decode performs no legality
// check and Position.Update applies anything, so external moves (PGN replay,
// UCI engines, human input) must pass through here before Push.
func (b *Board) ResolveUCI(uci string) (*chess.Move, error) {
	m, err := chess.UCINotation{}.Decode(b.Position(), uci)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", uci, err)
	}
	for _, legal := range b.LegalMoves() {
		if legal.S1() == m.S1() && legal.S2() == m.S2() && legal.Promo() == m.Promo() {
			return legal, nil
		}
	}
	return nil, fmt.Errorf("illegal move %q in %s", uci, b.FEN())
}

// LastMove returns the most recently pushed move, or nil at the root.
func (b *Board) LastMove() *chess.Move {
	if len(b.moves) == 0 {
		return nil
	}
	return b.moves[len(b.moves)-1]
}

// InCheck reports whether the side to move is in check.
func (b *Board) InCheck() bool {
	pos := b.Position()
	king := KingSquare(pos.Board(), pos.Turn())
	if king == chess.NoSquare {
		return false
	}
	return SquareAttacked(pos.Board(), king, pos.Turn().Other())
}

// IsCheckmate reports whether the side to move is checkmated. Position.Status
// trusts the applied move's Check tag, which moves decoded from UCI strings
// never carry, so both terminal tests are derived from the move list and the
// attack scan instead.
func (b *Board) IsCheckmate() bool {
	return len(b.LegalMoves()) == 0 && b.InCheck()
}

// IsStalemate reports whether the side to move is stalemated.
func (b *Board) IsStalemate() bool {
	return len(b.LegalMoves()) == 0 && !b.InCheck()
}

// IsDraw reports whether the current position is drawn by threefold
// repetition, the fifty-move rule, or insufficient material.
func (b *Board) IsDraw() bool {
	if b.seen[repetitionKey(b.Position())] >= 3 {
		return true
	}
	if b.clocks[len(b.clocks)-1] >= 100 {
		return true
	}
	return b.insufficientMaterial()
}

// HalfMoveClock returns the number of half-moves since the last capture or
// pawn move.
func (b *Board) HalfMoveClock() int {
	return b.clocks[len(b.clocks)-1]
}

// Repetitions returns how often the current position has occurred across the
// game history and the current search path.
func (b *Board) Repetitions() int {
	return b.seen[repetitionKey(b.Position())]
}

// insufficientMaterial covers the dead positions the fifty-move clock never
// reaches: K vs K, K+minor vs K, and K+B vs K+B with same-colored bishops.
func (b *Board) insufficientMaterial() bool {
	var knights, bishops, other int
	var bishopSquares []chess.Square

	squares := b.Position().Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := squares.Piece(sq)
		if p == chess.NoPiece || p.Type() == chess.King {
			continue
		}
		switch p.Type() {
		case chess.Knight:
			knights++
		case chess.Bishop:
			bishops++
			bishopSquares = append(bishopSquares, sq)
		default:
			other++
		}
	}

	if other > 0 {
		return false
	}
	if knights+bishops <= 1 {
		return true
	}
	if knights == 0 && bishops == 2 && len(bishopSquares) == 2 {
		return squareColor(bishopSquares[0]) == squareColor(bishopSquares[1])
	}
	return false
}

func squareColor(sq chess.Square) int {
	return (int(sq.File()) + int(sq.Rank())) % 2
}

func isCapture(pos *chess.Position, m *chess.Move) bool {
	return pos.Board().Piece(m.S2()) != chess.NoPiece || m.HasTag(chess.EnPassant)
}

// halfMoveClock reads the clock from the position's FEN; the library tracks
// it but does not expose an accessor.
func halfMoveClock(pos *chess.Position) int {
	fields := strings.Fields(pos.String())
	if len(fields) < 5 {
		return 0
	}
	n, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0
	}
	return n
}
