package engine

import (
	"testing"
	"time"

	"github.com/notnil/chess"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/eval"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func mustBoard(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

func uciMove(b *board.Board, m *chess.Move) string {
	if m == nil {
		return ""
	}
	return chess.UCINotation{}.Encode(b.Position(), m)
}

func TestFindsMateInOne(t *testing.T) {
	b := mustBoard(t, "6k1/5ppp/8/8/8/8/8/R6K w - - 0 1")
	s := New(Config{})

	res := s.FindBestMove(b, Limits{Depth: 3})
	if got := uciMove(b, res.Move); got != "a1a8" {
		t.Fatalf("best move = %q, want a1a8", got)
	}
	if res.Score != MateValue-1 {
		t.Errorf("score = %d, want %d", res.Score, MateValue-1)
	}
	if !IsMateScore(res.Score) {
		t.Error("IsMateScore(score) = false")
	}
	if MateIn(res.Score) != 1 {
		t.Errorf("MateIn(score) = %d, want 1", MateIn(res.Score))
	}
}

func TestNoLegalMoves(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		score int
	}{
		{"checkmated", "R5k1/5ppp/8/8/8/8/8/7K b - - 0 1", -MateValue},
		{"stalemated", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.fen)
			res := New(Config{}).FindBestMove(b, Limits{Depth: 3})
			if res.Move != nil {
				t.Errorf("move = %q, want nil", uciMove(b, res.Move))
			}
			if res.Score != tt.score {
				t.Errorf("score = %d, want %d", res.Score, tt.score)
			}
		})
	}
}

// plainNegamax searches every move with no pruning and no quiescence.
// It mirrors the searcher's terminal rules so scores are comparable.
func plainNegamax(b *board.Board, e *eval.Evaluator, depth, ply int) int {
	if b.IsDraw() {
		return 0
	}
	moves := b.LegalMoves()
	if len(moves) == 0 {
		if b.InCheck() {
			return -(MateValue - ply)
		}
		return 0
	}
	if depth <= 0 {
		v := e.Evaluate(b)
		if b.SideToMove() == chess.Black {
			return -v
		}
		return v
	}
	best := -infinity
	for _, m := range moves {
		b.Push(m)
		v := -plainNegamax(b, e, depth-1, ply+1)
		b.Pop()
		if v > best {
			best = v
		}
	}
	return best
}

func plainRoot(b *board.Board, e *eval.Evaluator, depth int) int {
	best := -infinity
	for _, m := range b.LegalMoves() {
		b.Push(m)
		v := -plainNegamax(b, e, depth-1, 1)
		b.Pop()
		if v > best {
			best = v
		}
	}
	return best
}

func TestAlphaBetaMatchesPlainSearch(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"initial position", startFEN, 3},
		{"italian opening", "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4", 2},
		{"pawn endgame", "8/3k4/8/8/3PK3/8/8/8 w - - 0 1", 3},
		{"tactical", "k7/8/2p5/3q4/8/8/3Q4/K7 w - - 0 1", 2},
	}
	e := eval.New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.fen)
			s := New(Config{Evaluator: e, QuiescenceDepth: -1})
			res := s.FindBestMove(b, Limits{Depth: tt.depth})

			want := plainRoot(b, e, tt.depth)
			if res.Score != want {
				t.Errorf("alpha-beta score = %d, plain search = %d", res.Score, want)
			}

			// The returned move must attain the optimal score, even if a
			// differently ordered search could tie-break to another move.
			b.Push(res.Move)
			attained := -plainNegamax(b, e, tt.depth-1, 1)
			b.Pop()
			if attained != want {
				t.Errorf("returned move %s scores %d, optimum is %d", uciMove(b, res.Move), attained, want)
			}
			if res.Stats.Cutoffs == 0 {
				t.Error("search produced no cutoffs")
			}
			if res.Stats.Nodes >= int64(countNodes(b, tt.depth)) {
				t.Errorf("alpha-beta visited %d nodes, plain tree has %d", res.Stats.Nodes, countNodes(b, tt.depth))
			}
		})
	}
}

func countNodes(b *board.Board, depth int) int {
	if depth <= 0 {
		return 1
	}
	n := 1
	for _, m := range b.LegalMoves() {
		b.Push(m)
		n += countNodes(b, depth-1)
		b.Pop()
	}
	return n
}

func TestWinsFreeQueenAtEveryDepth(t *testing.T) {
	for depth := 1; depth <= 4; depth++ {
		b := mustBoard(t, "k7/8/8/3q4/8/8/3R4/K7 w - - 0 1")
		res := New(Config{}).FindBestMove(b, Limits{Depth: depth})
		if got := uciMove(b, res.Move); got != "d2d5" {
			t.Errorf("depth %d: best move = %q, want d2d5", depth, got)
		}
	}
}

// With the queen on d5 defended by the c6 pawn, a bare depth-1 search
// sees Qxd5 as winning a queen; quiescence resolves the recapture.
func TestQuiescenceResolvesDefendedCapture(t *testing.T) {
	const fen = "k7/8/2p5/3q4/8/8/3Q4/K7 w - - 0 1"

	b := mustBoard(t, fen)
	static := New(Config{QuiescenceDepth: -1}).FindBestMove(b, Limits{Depth: 1})

	b = mustBoard(t, fen)
	quiesced := New(Config{}).FindBestMove(b, Limits{Depth: 1})

	if static.Score-quiesced.Score < 400 {
		t.Errorf("static score %d vs quiesced %d: quiescence did not resolve the exchange",
			static.Score, quiesced.Score)
	}
	if quiesced.Stats.QNodes == 0 {
		t.Error("quiescence search visited no nodes")
	}
}

func TestMoveTimeReturnsLegalFallback(t *testing.T) {
	b := mustBoard(t, startFEN)
	res := New(Config{}).FindBestMove(b, Limits{Depth: 20, MoveTime: time.Millisecond})

	if res.Move == nil {
		t.Fatal("no move returned under time pressure")
	}
	legal := false
	got := uciMove(b, res.Move)
	for _, m := range b.LegalMoves() {
		if uciMove(b, m) == got {
			legal = true
			break
		}
	}
	if !legal {
		t.Errorf("returned move %q is not legal", got)
	}
	if res.Stats.Depth >= 20 {
		t.Errorf("completed depth = %d, expected the deadline to cut deepening short", res.Stats.Depth)
	}
}

func TestBoardRestoredAfterSearch(t *testing.T) {
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	b := mustBoard(t, fen)

	res := New(Config{}).FindBestMove(b, Limits{Depth: 3})
	if res.Move == nil {
		t.Fatal("no move returned")
	}
	if got := b.FEN(); got != fen {
		t.Errorf("FEN after search = %q, want %q", got, fen)
	}
	if b.Depth() != 0 {
		t.Errorf("stack depth after search = %d, want 0", b.Depth())
	}
	if res.Stats.Nodes == 0 || res.Stats.Elapsed <= 0 {
		t.Errorf("stats not populated: %+v", res.Stats)
	}
}

func TestDeeperSearchAvoidsShallowBlunder(t *testing.T) {
	// Rxd5 looks quiet at depth 1 once quiescence is disabled, but
	// c6xd5 wins the rook; depth 2 must see the recapture.
	b := mustBoard(t, "k7/8/2p5/3q4/8/8/3R4/K7 w - - 0 1")
	s := New(Config{QuiescenceDepth: -1})

	shallow := s.FindBestMove(b, Limits{Depth: 1})
	if got := uciMove(b, shallow.Move); got != "d2d5" {
		t.Fatalf("depth 1 best move = %q, want the greedy d2d5", got)
	}

	deep := s.FindBestMove(b, Limits{Depth: 2})
	if deep.Score >= shallow.Score {
		t.Errorf("depth 2 score %d not below greedy depth 1 score %d", deep.Score, shallow.Score)
	}
}
