package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/minnow/internal/eval"
	"github.com/freeeve/minnow/internal/httpapi"
	"github.com/freeeve/minnow/internal/logx"
)

func main() {
	var (
		addr        = flag.String("addr", ":8008", "listen address")
		depth       = flag.Int("depth", 4, "default search depth for /v1/bestmove")
		maxDepth    = flag.Int("max-depth", 6, "cap on client-requested search depth")
		maxMoveTime = flag.Duration("max-movetime", 10*time.Second, "cap on client-requested move time")
		weightsPath = flag.String("weights", "", "evaluation weights YAML file (empty = built-in defaults)")
	)
	flag.Parse()

	logger := logx.NewLogger()

	var weights *eval.Weights
	if *weightsPath != "" {
		var err error
		weights, err = eval.LoadWeights(*weightsPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *weightsPath).Msg("load weights")
		}
		logger.Info().Str("path", *weightsPath).Msg("weights loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: *addr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Depth:       *depth,
			MaxDepth:    *maxDepth,
			MaxMoveTime: *maxMoveTime,
			Weights:     weights,
			Logger:      logger,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("analysis api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	logger.Info().Msg("shutdown complete")
}
