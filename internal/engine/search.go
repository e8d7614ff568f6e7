// Package engine implements a negamax alpha-beta searcher with
// quiescence search and iterative deepening on top of the board
// adapter and the static evaluator.
package engine

import (
	"fmt"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/eval"
)

const (
	// MateValue is the score of delivering checkmate at the root.
	// Mates found deeper in the tree score MateValue minus the ply
	// they occur at, so shorter mates are preferred.
	MateValue = 100000

	// maxPly bounds how deep a mate can be reported from; scores
	// within maxPly of MateValue are treated as forced mates.
	maxPly = 512

	infinity = MateValue + 1

	// DefaultDepth is the iterative deepening target when the
	// caller gives no depth limit.
	DefaultDepth = 4

	// DefaultQuiescenceDepth caps how many extra plies the
	// quiescence search may extend past the nominal horizon.
	DefaultQuiescenceDepth = 8

	// deadlinePollMask throttles wall-clock checks to every 1024
	// nodes so the hot path stays cheap.
	deadlinePollMask = 1023
)

// IsMateScore reports whether v encodes a forced mate for either side.
func IsMateScore(v int) bool {
	return v > MateValue-maxPly || v < -(MateValue-maxPly)
}

// MateIn returns the number of plies until mate encoded in a mate
// score. Positive scores are mates delivered, negative scores mates
// suffered. It must only be called when IsMateScore(v) is true.
func MateIn(v int) int {
	if v > 0 {
		return MateValue - v
	}
	return MateValue + v
}

// Config carries the searcher's collaborators and tuning knobs.
type Config struct {
	// Evaluator scores quiet positions. nil uses default weights.
	Evaluator *eval.Evaluator

	// Logger receives per-iteration search telemetry.
	Logger zerolog.Logger

	// QuiescenceDepth caps the quiescence extension. Zero selects
	// DefaultQuiescenceDepth; a negative value disables quiescence
	// so leaves are scored statically.
	QuiescenceDepth int
}

// Limits bounds a single search. A zero Depth selects DefaultDepth;
// a zero MoveTime searches without a wall-clock budget.
type Limits struct {
	Depth    int
	MoveTime time.Duration
}

// Stats summarizes the work done by one FindBestMove call.
type Stats struct {
	Nodes   int64
	QNodes  int64
	Cutoffs int64
	Depth   int
	Elapsed time.Duration
}

// Result is the outcome of a search. Move is nil only when the
// position has no legal moves, in which case Score is -MateValue
// for checkmate and 0 for stalemate.
type Result struct {
	Move  *chess.Move
	Score int
	Stats Stats
}

// Searcher runs fixed-depth and time-bounded searches. It keeps
// per-search counters, so a Searcher must not be shared across
// goroutines; create one per concurrent search instead.
type Searcher struct {
	eval         *eval.Evaluator
	log          zerolog.Logger
	quiesceDepth int

	deadline time.Time
	aborted  bool
	nodes    int64
	qnodes   int64
	cutoffs  int64
}

// New builds a Searcher from cfg, filling in defaults for the
// evaluator and quiescence depth.
func New(cfg Config) *Searcher {
	if cfg.Evaluator == nil {
		cfg.Evaluator = eval.New(nil)
	}
	qd := cfg.QuiescenceDepth
	if qd == 0 {
		qd = DefaultQuiescenceDepth
	} else if qd < 0 {
		qd = 0
	}
	return &Searcher{
		eval:         cfg.Evaluator,
		log:          cfg.Logger,
		quiesceDepth: qd,
	}
}

// FindBestMove runs an iterative deepening search on b and returns
// the best move found within the limits. The board is restored to
// its pre-search state before returning; a failure to restore it is
// a bug in make/unmake bookkeeping and panics.
func (s *Searcher) FindBestMove(b *board.Board, limits Limits) Result {
	start := time.Now()
	startDepth := b.Depth()
	startHash := b.Hash()

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
	}
	if limits.MoveTime > 0 {
		s.deadline = start.Add(limits.MoveTime)
	} else {
		s.deadline = time.Time{}
	}
	s.aborted = false
	s.nodes, s.qnodes, s.cutoffs = 0, 0, 0

	moves := orderMoves(b.Position(), b.LegalMoves())
	if len(moves) == 0 {
		score := 0
		if b.InCheck() {
			score = -MateValue
		}
		return Result{Score: score, Stats: s.stats(0, start)}
	}

	// The first ordered move is the fallback if the budget expires
	// before any iteration completes.
	best := moves[0]
	bestScore := 0
	completed := 0
	for d := 1; d <= maxDepth; d++ {
		move, score, ok := s.searchRoot(b, moves, d)
		if !ok {
			break
		}
		best, bestScore, completed = move, score, d
		s.log.Debug().
			Int("depth", d).
			Int("score", score).
			Str("move", chess.UCINotation{}.Encode(b.Position(), move)).
			Int64("nodes", s.nodes).
			Int64("qnodes", s.qnodes).
			Dur("elapsed", time.Since(start)).
			Msg("search iteration complete")
		if bestScore > MateValue-maxPly {
			// A forced mate was found; deeper iterations cannot
			// improve on it.
			break
		}
	}

	if b.Depth() != startDepth || b.Hash() != startHash {
		panic(fmt.Sprintf("engine: board not restored after search (depth %d -> %d)", startDepth, b.Depth()))
	}
	return Result{Move: best, Score: bestScore, Stats: s.stats(completed, start)}
}

func (s *Searcher) stats(depth int, start time.Time) Stats {
	return Stats{
		Nodes:   s.nodes,
		QNodes:  s.qnodes,
		Cutoffs: s.cutoffs,
		Depth:   depth,
		Elapsed: time.Since(start),
	}
}

// searchRoot searches every root move to the given depth. It reports
// ok=false when the deadline expired mid-iteration, in which case the
// partial result must be discarded.
func (s *Searcher) searchRoot(b *board.Board, moves []*chess.Move, depth int) (*chess.Move, int, bool) {
	alpha, beta := -infinity, infinity
	best := moves[0]
	for _, m := range moves {
		b.Push(m)
		score := -s.negamax(b, depth-1, 1, -beta, -alpha)
		b.Pop()
		if s.aborted {
			return nil, 0, false
		}
		if score > alpha {
			alpha = score
			best = m
		}
	}
	return best, alpha, true
}

func (s *Searcher) negamax(b *board.Board, depth, ply, alpha, beta int) int {
	s.nodes++
	if s.nodes&deadlinePollMask == 0 {
		s.pollDeadline()
	}
	if s.aborted {
		return alpha
	}

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
		if s.quiesceDepth == 0 {
			return s.relativeEval(b)
		}
		return s.quiesce(b, s.quiesceDepth, ply, alpha, beta)
	}

	for _, m := range orderMoves(b.Position(), moves) {
		b.Push(m)
		score := -s.negamax(b, depth-1, ply+1, -beta, -alpha)
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

// relativeEval converts the evaluator's White-perspective score into
// the side-to-move perspective negamax expects.
func (s *Searcher) relativeEval(b *board.Board) int {
	v := s.eval.Evaluate(b)
	if b.SideToMove() == chess.Black {
		return -v
	}
	return v
}

func (s *Searcher) pollDeadline() {
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
	}
}
