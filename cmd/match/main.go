package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/logx"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/iamasit07/c4search/internal/service/match"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	cfg := config.LoadConfig()

	first := flag.String("first", "iterdeep_moveorder", "algorithm for player 1 (name or 0-6)")
	second := flag.String("second", "alphabeta", "algorithm for player 2 (name or 0-6)")
	depth := flag.Int("depth", cfg.Engine.MaxDepth, "maximum search depth")
	limit := flag.Duration("time", cfg.Engine.TimeLimit, "time limit per move, 0 for none")
	quiet := flag.Bool("quiet", false, "only print the result")
	debug := flag.Bool("debug", false, "log every engine move")
	flag.Parse()

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	logger := logx.NewLogger(level, cfg.LogFormat)

	managerFor := func(name string) *bot.Manager {
		alg, err := bot.ParseAlgorithm(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return bot.NewManager(bot.Settings{
			Algorithm: alg,
			MaxDepth:  *depth,
			TimeLimit: *limit,
			TTSize:    cfg.Engine.TTSize,
		}, logger)
	}
	p1, p2 := managerFor(*first), managerFor(*second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("%s (X) vs %s (O)\n", p1.Algorithm(), p2.Algorithm())
	onMove := func(g *domain.Game, m match.Move) {
		if *quiet {
			return
		}
		fmt.Printf("\nplayer %d -> column %d (score %d, %d nodes, depth %d, %s)\n",
			m.Player, m.Column, m.Score, m.Nodes, m.Depth, m.Elapsed.Round(time.Microsecond))
		fmt.Print(g)
	}

	res, err := match.Play(ctx, p1, p2, onMove, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch res.Winner {
	case domain.Player1:
		fmt.Printf("\nplayer 1 (%s) wins", p1.Algorithm())
	case domain.Player2:
		fmt.Printf("\nplayer 2 (%s) wins", p2.Algorithm())
	default:
		fmt.Print("\ndraw")
	}
	fmt.Printf(" after %d moves; nodes %d / %d\n",
		len(res.Moves), res.TotalNodes(domain.Player1), res.TotalNodes(domain.Player2))
}
