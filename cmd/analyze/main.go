package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/minnow/internal/analysis"
	"github.com/freeeve/minnow/internal/eval"
	"github.com/freeeve/minnow/internal/logx"
)

func main() {
	var (
		pgnPath     = flag.String("pgn", "", "PGN file to analyze (.pgn or .pgn.zst)")
		out         = flag.String("out", "", "JSON report path (.json or .json.zst, empty = log only)")
		depth       = flag.Int("depth", 4, "search depth per position")
		moveTime    = flag.Duration("movetime", 0, "per-position time budget (0 = depth only)")
		threshold   = flag.Int("blunder-threshold", analysis.DefaultBlunderThreshold, "centipawn drop to flag a blunder")
		weightsPath = flag.String("weights", "", "evaluation weights YAML file")
	)
	flag.Parse()

	logger := logx.NewLogger()
	if *pgnPath == "" {
		logger.Fatal().Msg("-pgn is required")
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

	a := analysis.New(analysis.Config{
		Depth:            *depth,
		MoveTime:         *moveTime,
		BlunderThreshold: *threshold,
		Weights:          weights,
		Logger:           logger,
	})

	start := time.Now()
	reports, err := a.AnalyzeFile(ctx, *pgnPath)
	if err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Str("path", *pgnPath).Msg("analysis failed")
	}

	for _, r := range reports {
		fmt.Printf("%s - %s (%s): %d moves, %d blunders\n",
			r.White, r.Black, r.Result, len(r.Moves), r.Blunders)
		for _, m := range r.Moves {
			if m.Blunder {
				fmt.Printf("  ply %d: %s dropped %d cp (engine prefers %s)\n",
					m.Ply, m.Played, m.Drop, m.Best)
			}
		}
	}

	if *out != "" {
		if err := analysis.WriteReport(*out, reports); err != nil {
			logger.Fatal().Err(err).Str("path", *out).Msg("write report")
		}
		logger.Info().Str("path", *out).Msg("report written")
	}

	logger.Info().
		Int("games", len(reports)).
		Dur("elapsed", time.Since(start)).
		Msg("done")
}
