package eval

import (
	"strings"
	"testing"
	"unicode"

	"github.com/freeeve/minnow/internal/board"
)

func mustBoard(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return b
}

// mirrorFEN flips a position across colors: ranks reversed, piece case
// swapped, side to move, castling rights, and en passant rank mirrored.
// A correct evaluator must negate under this transformation.
func mirrorFEN(t *testing.T, fen string) string {
	t.Helper()
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		t.Fatalf("bad fen %q", fen)
	}

	swapCase := func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			switch {
			case unicode.IsUpper(r):
				sb.WriteRune(unicode.ToLower(r))
			case unicode.IsLower(r):
				sb.WriteRune(unicode.ToUpper(r))
			default:
				sb.WriteRune(r)
			}
		}
		return sb.String()
	}

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	placement := swapCase(strings.Join(ranks, "/"))

	turn := "w"
	if fields[1] == "w" {
		turn = "b"
	}

	castling := fields[2]
	if castling != "-" {
		swapped := swapCase(castling)
		var sb strings.Builder
		for _, r := range "KQkq" {
			if strings.ContainsRune(swapped, r) {
				sb.WriteRune(r)
			}
		}
		castling = sb.String()
	}

	ep := fields[3]
	if ep != "-" {
		rank := ep[1]
		if rank == '3' {
			rank = '6'
		} else {
			rank = '3'
		}
		ep = string(ep[0]) + string(rank)
	}

	return strings.Join([]string{placement, turn, castling, ep, fields[4], fields[5]}, " ")
}

var evalTestFENs = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"rnbqkb1r/pp1ppppp/5n2/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r1bq1rk1/pppp1ppp/2n2n2/2b1p3/2B1P3/2N2N2/PPPP1PPP/R1BQ1RK1 w - - 6 6",
	"8/2k5/3p4/p2P1p2/P2P1P2/8/2K5/8 w - - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"4k3/8/8/3q4/8/8/3Q4/4K3 w - - 0 1",
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := New(nil)
	for _, fen := range evalTestFENs {
		b := mustBoard(t, fen)
		first := e.Evaluate(b)
		for i := 0; i < 3; i++ {
			if got := e.Evaluate(b); got != first {
				t.Errorf("Evaluate(%s) unstable: %d then %d", fen, first, got)
			}
		}
	}
}

func TestEvaluateNegatesUnderColorMirror(t *testing.T) {
	e := New(nil)
	for _, fen := range evalTestFENs {
		b := mustBoard(t, fen)
		m := mustBoard(t, mirrorFEN(t, fen))
		if got, want := e.Evaluate(m), -e.Evaluate(b); got != want {
			t.Errorf("Evaluate(mirror(%s)) = %d, want %d", fen, got, want)
		}
	}
}

func TestStartingPositionIsBalanced(t *testing.T) {
	e := New(nil)
	b := mustBoard(t, evalTestFENs[0])
	if got := e.Evaluate(b); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
}

func TestMaterialAdvantage(t *testing.T) {
	e := New(nil)
	tests := []struct {
		name string
		fen  string
		// score bounds from White's point of view
		min, max int
	}{
		{"white up a queen", "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", 500, 1300},
		{"black up a rook", "3rk3/8/8/8/8/8/8/4K3 w - - 0 1", -900, -200},
		{"white up knight for pawn", "4k3/4p3/8/8/8/8/8/1N2K3 w - - 0 1", 100, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(mustBoard(t, tt.fen))
			if got < tt.min || got > tt.max {
				t.Errorf("Evaluate(%s) = %d, want in [%d, %d]", tt.fen, got, tt.min, tt.max)
			}
		})
	}
}

func TestPawnStructureTerms(t *testing.T) {
	e := New(nil)

	// Doubled + isolated white pawns on e-file vs healthy black e+f pawns.
	weak := e.Evaluate(mustBoard(t, "4k3/4pp2/8/8/8/4P3/4P3/4K3 w - - 0 1"))
	// Same material, healthy white e+f pawns vs healthy black pawns.
	healthy := e.Evaluate(mustBoard(t, "4k3/4pp2/8/8/8/8/4PP2/4K3 w - - 0 1"))
	if weak >= healthy {
		t.Errorf("doubled+isolated pawns score %d, healthy pawns %d; want weak < healthy", weak, healthy)
	}

	// A far-advanced passed pawn beats the same pawn at home.
	advanced := e.Evaluate(mustBoard(t, "4k3/8/8/8/8/8/1P6/4K3 w - - 0 1"))
	far := e.Evaluate(mustBoard(t, "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1"))
	if far <= advanced {
		t.Errorf("passed pawn on b7 scores %d, on b2 %d; want b7 > b2", far, advanced)
	}
}

func TestBishopPairBonus(t *testing.T) {
	e := New(nil)
	pair := e.Evaluate(mustBoard(t, "4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1"))
	bishopKnight := e.Evaluate(mustBoard(t, "4k3/8/8/8/8/8/8/2N1KB2 w - - 0 1"))
	// Bishop pair should outscore bishop+knight by more than the raw
	// bishop-minus-knight material difference.
	materialDiff := DefaultWeights().Material.Bishop - DefaultWeights().Material.Knight
	if pair-bishopKnight <= materialDiff {
		t.Errorf("pair bonus not applied: pair=%d bishop+knight=%d", pair, bishopKnight)
	}
}

func TestPSTPrefersCentralKnight(t *testing.T) {
	e := New(nil)
	rim := e.Evaluate(mustBoard(t, "4k3/8/8/8/8/8/8/N3K3 w - - 0 1"))
	central := e.Evaluate(mustBoard(t, "4k3/8/8/8/3N4/8/8/4K3 w - - 0 1"))
	if central <= rim {
		t.Errorf("central knight %d not preferred over rim knight %d", central, rim)
	}
}

func TestKingSafetyScalesWithEnemyMaterial(t *testing.T) {
	e := New(nil)

	// Exposed white king with heavy black material on the board.
	middlegame := mustBoard(t, "rnbq1rk1/ppp2ppp/8/8/8/8/PPP2PPP/RNBQ1RK1 w - - 0 1")
	// Identical shield situation after stripping both sides to king+pawns.
	endgame := mustBoard(t, "6k1/ppp2ppp/8/8/8/8/PPP2PPP/6K1 w - - 0 1")

	// In the pure pawn endgame, the king-safety term should vanish: scores
	// must be exactly symmetric (both positions are mirrored, so 0).
	if got := e.Evaluate(endgame); got != 0 {
		t.Errorf("symmetric endgame evaluates to %d, want 0", got)
	}
	if got := e.Evaluate(middlegame); got != 0 {
		t.Errorf("symmetric middlegame evaluates to %d, want 0", got)
	}
}
