// Package spar plays complete games between the built-in searcher
// and an external UCI engine such as Stockfish.
package spar

import (
	"context"
	"fmt"
	"time"

	"github.com/freeeve/uci"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/engine"
)

// DefaultMaxPlies aborts games that refuse to finish.
const DefaultMaxPlies = 300

// Player produces a move for the side to move.
type Player interface {
	Name() string
	BestMove(b *board.Board) (*chess.Move, error)
}

// SearchPlayer drives the built-in searcher.
type SearchPlayer struct {
	name     string
	searcher *engine.Searcher
	limits   engine.Limits
}

// NewSearchPlayer wraps a searcher as a Player.
func NewSearchPlayer(name string, s *engine.Searcher, limits engine.Limits) *SearchPlayer {
	return &SearchPlayer{name: name, searcher: s, limits: limits}
}

func (p *SearchPlayer) Name() string { return p.name }

func (p *SearchPlayer) BestMove(b *board.Board) (*chess.Move, error) {
	res := p.searcher.FindBestMove(b, p.limits)
	if res.Move == nil {
		return nil, fmt.Errorf("%s: no legal moves", p.name)
	}
	return res.Move, nil
}

// UCIConfig configures the external engine process.
type UCIConfig struct {
	Path    string
	Depth   int
	HashMB  int
	Threads int
}

// UCIPlayer asks an external UCI engine for its best move.
type UCIPlayer struct {
	name  string
	eng   *uci.Engine
	depth int
}

// NewUCIPlayer starts the engine binary at cfg.Path.
func NewUCIPlayer(name string, cfg UCIConfig) (*UCIPlayer, error) {
	if cfg.Depth <= 0 {
		cfg.Depth = 10
	}
	if cfg.HashMB <= 0 {
		cfg.HashMB = 128
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}

	eng, err := uci.NewEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", cfg.Path, err)
	}
	opts := uci.Options{
		Hash:    cfg.HashMB,
		Threads: cfg.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("set engine options: %w", err)
	}
	return &UCIPlayer{name: name, eng: eng, depth: cfg.Depth}, nil
}

func (p *UCIPlayer) Name() string { return p.name }

func (p *UCIPlayer) BestMove(b *board.Board) (*chess.Move, error) {
	if err := p.eng.SetFEN(b.FEN()); err != nil {
		return nil, fmt.Errorf("set FEN: %w", err)
	}
	results, err := p.eng.GoDepth(p.depth, uci.HighestDepthOnly)
	if err != nil {
		return nil, fmt.Errorf("engine search: %w", err)
	}
	if results.BestMove == "" {
		return nil, fmt.Errorf("engine returned no best move for %s", b.FEN())
	}
	mv, err := b.ResolveUCI(results.BestMove)
	if err != nil {
		return nil, fmt.Errorf("engine move: %w", err)
	}
	return mv, nil
}

// Close stops the engine process.
func (p *UCIPlayer) Close() {
	p.eng.Close()
}

// GameResult summarizes a finished sparring game.
type GameResult struct {
	White   string
	Black   string
	Moves   []string
	Outcome string // 1-0, 0-1, 1/2-1/2, or * for aborted games
	Method  string
	Elapsed time.Duration
}

// Match runs games between two players.
type Match struct {
	MaxPlies int // 0 uses DefaultMaxPlies
	Logger   zerolog.Logger
}

// Play runs one game from b until mate, a draw, or the ply cap.
func (m *Match) Play(ctx context.Context, b *board.Board, white, black Player) (*GameResult, error) {
	maxPlies := m.MaxPlies
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	start := time.Now()
	result := &GameResult{White: white.Name(), Black: black.Name()}

	for len(result.Moves) < maxPlies {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if m.finished(b, result) {
			break
		}

		player := white
		if b.SideToMove() == chess.Black {
			player = black
		}
		mv, err := player.BestMove(b)
		if err != nil {
			return result, fmt.Errorf("ply %d: %w", len(result.Moves)+1, err)
		}

		uciStr := chess.UCINotation{}.Encode(b.Position(), mv)
		result.Moves = append(result.Moves, uciStr)
		b.Push(mv)

		m.Logger.Debug().
			Int("ply", len(result.Moves)).
			Str("player", player.Name()).
			Str("move", uciStr).
			Msg("move played")
	}

	if result.Outcome == "" {
		result.Outcome = "*"
		result.Method = "ply limit reached"
	}
	result.Elapsed = time.Since(start)

	m.Logger.Info().
		Str("white", result.White).
		Str("black", result.Black).
		Str("outcome", result.Outcome).
		Str("method", result.Method).
		Int("plies", len(result.Moves)).
		Dur("elapsed", result.Elapsed).
		Msg("game finished")
	return result, nil
}

// finished fills in the outcome when the position is terminal.
func (m *Match) finished(b *board.Board, result *GameResult) bool {
	switch {
	case b.IsCheckmate():
		if b.SideToMove() == chess.White {
			result.Outcome = "0-1"
		} else {
			result.Outcome = "1-0"
		}
		result.Method = "checkmate"
	case b.IsStalemate():
		result.Outcome = "1/2-1/2"
		result.Method = "stalemate"
	case b.IsDraw():
		result.Outcome = "1/2-1/2"
		result.Method = drawMethod(b)
	default:
		return false
	}
	return true
}

func drawMethod(b *board.Board) string {
	switch {
	case b.Repetitions() >= 3:
		return "threefold repetition"
	case b.HalfMoveClock() >= 100:
		return "fifty-move rule"
	default:
		return "insufficient material"
	}
}
