package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/engine"
	"github.com/freeeve/minnow/internal/eval"
	"github.com/freeeve/minnow/internal/logx"
	"github.com/freeeve/minnow/internal/spar"
)

func main() {
	defaultEngine := os.Getenv("STOCKFISH_PATH")

	var (
		enginePath  = flag.String("engine", defaultEngine, "path to the opposing UCI engine")
		engineDepth = flag.Int("engine-depth", 6, "opposing engine search depth")
		depth       = flag.Int("depth", 4, "minnow search depth")
		moveTime    = flag.Duration("movetime", 0, "minnow per-move budget (0 = depth only)")
		games       = flag.Int("games", 1, "games to play, alternating colors")
		maxPlies    = flag.Int("max-plies", spar.DefaultMaxPlies, "abort games longer than this")
		fen         = flag.String("fen", "", "starting position (empty = standard start)")
		hashMB      = flag.Int("engine-hash", 128, "opposing engine hash table MB")
		threads     = flag.Int("engine-threads", 1, "opposing engine threads")
		weightsPath = flag.String("weights", "", "evaluation weights YAML file")
	)
	flag.Parse()

	logger := logx.NewLogger()
	if *enginePath == "" {
		logger.Fatal().Msg("-engine is required (or set STOCKFISH_PATH)")
	}

	var weights *eval.Weights
	if *weightsPath != "" {
		var err error
		weights, err = eval.LoadWeights(*weightsPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *weightsPath).Msg("load weights")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	minnow := spar.NewSearchPlayer("minnow",
		engine.New(engine.Config{Evaluator: eval.New(weights), Logger: logger}),
		engine.Limits{Depth: *depth, MoveTime: *moveTime})

	opponent, err := spar.NewUCIPlayer("opponent", spar.UCIConfig{
		Path:    *enginePath,
		Depth:   *engineDepth,
		HashMB:  *hashMB,
		Threads: *threads,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("start opposing engine")
	}
	defer opponent.Close()

	match := &spar.Match{MaxPlies: *maxPlies, Logger: logger}

	var wins, losses, draws int
	start := time.Now()
	for i := 0; i < *games; i++ {
		b := board.New()
		if *fen != "" {
			b, err = board.FromFEN(*fen)
			if err != nil {
				logger.Fatal().Err(err).Msg("parse fen")
			}
		}

		var white, black spar.Player = minnow, opponent
		minnowIsWhite := i%2 == 0
		if !minnowIsWhite {
			white, black = opponent, minnow
		}

		result, err := match.Play(ctx, b, white, black)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("interrupted")
				break
			}
			logger.Fatal().Err(err).Int("game", i+1).Msg("game failed")
		}

		switch {
		case result.Outcome == "1/2-1/2" || result.Outcome == "*":
			draws++
		case (result.Outcome == "1-0") == minnowIsWhite:
			wins++
		default:
			losses++
		}

		fmt.Printf("game %d: %s vs %s  %s (%s, %d plies)\n",
			i+1, result.White, result.Black, result.Outcome, result.Method, len(result.Moves))
		fmt.Printf("  moves: %s\n", strings.Join(result.Moves, " "))
	}

	fmt.Printf("score for minnow: +%d =%d -%d in %v\n", wins, draws, losses, time.Since(start).Round(time.Second))
}
