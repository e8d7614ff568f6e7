// Package analysis replays PGN games through the searcher and flags
// moves that lose significantly against the engine's preferred line.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/engine"
	"github.com/freeeve/minnow/internal/eval"
)

// DefaultBlunderThreshold is the centipawn drop at which a move is
// flagged, roughly a minor-piece-for-two-pawns mistake.
const DefaultBlunderThreshold = 150

// Config configures an Analyzer.
type Config struct {
	Depth            int            // search depth per position (0 uses the engine default)
	MoveTime         time.Duration  // optional per-position budget
	BlunderThreshold int            // centipawns; 0 uses DefaultBlunderThreshold
	Weights          *eval.Weights  // nil uses default weights
	Logger           zerolog.Logger // progress and per-game telemetry
}

// MoveReport scores one played move. Scores are centipawns from the
// perspective of the side that moved; Drop is how far the played move
// fell short of the engine's choice.
type MoveReport struct {
	Ply         int    `json:"ply"`
	Played      string `json:"played"`
	PlayedScore int    `json:"played_score"`
	Best        string `json:"best"`
	BestScore   int    `json:"best_score"`
	Drop        int    `json:"drop"`
	Blunder     bool   `json:"blunder,omitempty"`
}

// GameReport is the analysis of a single game.
type GameReport struct {
	White    string       `json:"white"`
	Black    string       `json:"black"`
	Event    string       `json:"event,omitempty"`
	Result   string       `json:"result"`
	Moves    []MoveReport `json:"moves"`
	Blunders int          `json:"blunders"`
}

// Analyzer replays games and produces GameReports. It is not safe
// for concurrent use; the searcher it drives keeps per-search state.
type Analyzer struct {
	cfg      Config
	searcher *engine.Searcher
	log      zerolog.Logger
}

// New builds an Analyzer from cfg.
func New(cfg Config) *Analyzer {
	if cfg.BlunderThreshold == 0 {
		cfg.BlunderThreshold = DefaultBlunderThreshold
	}
	return &Analyzer{
		cfg:      cfg,
		searcher: engine.New(engine.Config{Evaluator: eval.New(cfg.Weights), Logger: cfg.Logger}),
		log:      cfg.Logger,
	}
}

// AnalyzeFile replays every game in the PGN file at path, which may
// be zstd-compressed (.pgn.zst). Games that fail to replay are
// skipped with a warning; a parse error from the file itself aborts.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) ([]*GameReport, error) {
	parser := pgn.Games(path)

	var reports []*GameReport
	stopped := false
	start := time.Now()
gameLoop:
	for game := range parser.Games {
		select {
		case <-ctx.Done():
			if !stopped {
				parser.Stop()
				stopped = true
			}
			break gameLoop
		default:
		}

		report, err := a.AnalyzeGame(game)
		if err != nil {
			a.log.Warn().Err(err).
				Str("white", game.Tags["White"]).
				Str("black", game.Tags["Black"]).
				Msg("game skipped")
			continue
		}
		reports = append(reports, report)
		a.log.Info().
			Str("white", report.White).
			Str("black", report.Black).
			Int("moves", len(report.Moves)).
			Int("blunders", report.Blunders).
			Msg("game analyzed")
	}
	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return reports, err
	}

	a.log.Info().
		Int("games", len(reports)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")
	return reports, nil
}

// AnalyzeGame scores every move of one parsed game.
func (a *Analyzer) AnalyzeGame(game *pgn.Game) (*GameReport, error) {
	report := &GameReport{
		White:  game.Tags["White"],
		Black:  game.Tags["Black"],
		Event:  game.Tags["Event"],
		Result: game.Tags["Result"],
	}

	b := board.New()
	limits := engine.Limits{Depth: a.cfg.Depth, MoveTime: a.cfg.MoveTime}
	replyLimits := limits
	if replyLimits.Depth > 1 {
		replyLimits.Depth--
	}

	for ply, mv := range game.Moves {
		playedUCI := mvToUCI(mv)
		played, err := b.ResolveUCI(playedUCI)
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", ply+1, err)
		}

		best := a.searcher.FindBestMove(b, limits)
		if best.Move == nil {
			return nil, fmt.Errorf("ply %d: move %q played from a finished position", ply+1, playedUCI)
		}
		bestUCI := chess.UCINotation{}.Encode(b.Position(), best.Move)

		// Score the played move by searching the reply and negating
		// back to the mover's perspective.
		b.Push(played)
		reply := a.searcher.FindBestMove(b, replyLimits)
		playedScore := -reply.Score

		mr := MoveReport{
			Ply:         ply + 1,
			Played:      playedUCI,
			PlayedScore: playedScore,
			Best:        bestUCI,
			BestScore:   best.Score,
		}
		if playedUCI != bestUCI {
			mr.Drop = best.Score - playedScore
			if mr.Drop < 0 {
				mr.Drop = 0
			}
		}
		if mr.Drop >= a.cfg.BlunderThreshold {
			mr.Blunder = true
			report.Blunders++
		}
		report.Moves = append(report.Moves, mr)
	}

	return report, nil
}

// mvToUCI renders a parsed PGN move in UCI coordinates.
func mvToUCI(mv pgn.Mv) string {
	const files = "abcdefgh"
	const ranks = "12345678"

	uci := string(files[mv.From%8]) + string(ranks[mv.From/8]) +
		string(files[mv.To%8]) + string(ranks[mv.To/8])

	switch mv.Promo {
	case pgn.PromoQueen:
		uci += "q"
	case pgn.PromoRook:
		uci += "r"
	case pgn.PromoBishop:
		uci += "b"
	case pgn.PromoKnight:
		uci += "n"
	}
	return uci
}
