package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/notnil/chess"

	"github.com/freeeve/minnow/internal/board"
	"github.com/freeeve/minnow/internal/engine"
	"github.com/freeeve/minnow/internal/eval"
	"github.com/freeeve/minnow/internal/logx"
)

func main() {
	var (
		fen         = flag.String("fen", "", "starting position (empty = standard start)")
		depth       = flag.Int("depth", 4, "engine search depth")
		moveTime    = flag.Duration("movetime", 0, "engine move time budget (0 = depth only)")
		weightsPath = flag.String("weights", "", "evaluation weights YAML file")
		playBlack   = flag.Bool("black", false, "play Black (engine moves first)")
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
	}

	b := board.New()
	if *fen != "" {
		var err error
		b, err = board.FromFEN(*fen)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse fen")
		}
	}

	searcher := engine.New(engine.Config{
		Evaluator: eval.New(weights),
		Logger:    logger,
	})
	limits := engine.Limits{Depth: *depth, MoveTime: *moveTime}

	engineColor := chess.Black
	if *playBlack {
		engineColor = chess.White
	}

	fmt.Println("minnow - type a move in UCI (e2e4), or help / moves / quit")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println(b.Position().Board().Draw())

		if over, result := gameOver(b); over {
			fmt.Println(result)
			return
		}

		if b.SideToMove() == engineColor {
			start := time.Now()
			res := searcher.FindBestMove(b, limits)
			uciStr := chess.UCINotation{}.Encode(b.Position(), res.Move)
			fmt.Printf("engine plays %s  (score %s, depth %d, %d nodes, %v)\n",
				uciStr, formatScore(res.Score), res.Stats.Depth, res.Stats.Nodes,
				time.Since(start).Round(time.Millisecond))
			b.Push(res.Move)
			continue
		}

		mv := readMove(scanner, b)
		if mv == nil {
			return
		}
		b.Push(mv)
	}
}

// readMove prompts until it gets a legal move. It returns nil when
// the user quits or stdin closes.
func readMove(scanner *bufio.Scanner, b *board.Board) *chess.Move {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Println("enter a move in UCI (e2e4, e7e8q) or SAN (Nf3, O-O)")
			fmt.Println("commands: moves  - list legal moves")
			fmt.Println("          quit   - leave the game")
			continue
		case "moves":
			var ucis []string
			for _, m := range b.LegalMoves() {
				ucis = append(ucis, chess.UCINotation{}.Encode(b.Position(), m))
			}
			fmt.Println(strings.Join(ucis, " "))
			continue
		}

		mv, err := b.ResolveUCI(input)
		if err != nil {
			mv, err = chess.AlgebraicNotation{}.Decode(b.Position(), input)
		}
		if err != nil {
			fmt.Printf("%q is not a legal move here (try: moves)\n", input)
			continue
		}
		return mv
	}
}

func gameOver(b *board.Board) (bool, string) {
	switch {
	case b.IsCheckmate():
		if b.SideToMove() == chess.White {
			return true, "checkmate - Black wins (0-1)"
		}
		return true, "checkmate - White wins (1-0)"
	case b.IsStalemate():
		return true, "stalemate - draw (1/2-1/2)"
	case b.IsDraw():
		return true, "draw (1/2-1/2)"
	}
	return false, ""
}

func formatScore(score int) string {
	if engine.IsMateScore(score) {
		plies := engine.MateIn(score)
		if score > 0 {
			return fmt.Sprintf("mate in %d", (plies+1)/2)
		}
		return fmt.Sprintf("mated in %d", (plies+1)/2)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}
