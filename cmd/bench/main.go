package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/logx"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/service/bench"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/iamasit07/c4search/pkg/auth"
	"github.com/iamasit07/c4search/pkg/uid"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	cfg := config.LoadConfig()

	states := flag.String("states", "", "file of move strings, one per line (.zst allowed)")
	limit := flag.Int("limit", 0, "read at most this many states, 0 for all")
	algs := flag.String("algorithms", "", "comma separated algorithms, default all search presets")
	depths := flag.String("depths", "1,2,3,4,5,6", "comma separated depths")
	timeLimit := flag.Duration("time", 0, "time limit per search, 0 searches every depth fully")
	workers := flag.Int("workers", 0, "concurrent searches, 0 for GOMAXPROCS")
	out := flag.String("out", "", "write the text report here (.zst compresses)")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	save := flag.Bool("save", false, "store results in DATABASE_URL")
	token := flag.String("token", "", "print an API token for this subject and exit")
	flag.Parse()

	logger := logx.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if *token != "" {
		t, err := auth.GenerateAPIToken(cfg.JWTSecret, *token, cfg.APITokenTTL)
		if err != nil {
			fail(err)
		}
		fmt.Println(t)
		return
	}
	if *states == "" {
		fail(fmt.Errorf("-states is required"))
	}

	loaded, err := bench.LoadStatesFile(*states, *limit)
	if err != nil {
		fail(err)
	}
	bcfg := bench.Config{TimeLimit: *timeLimit, TTSize: cfg.Engine.TTSize, Concurrency: *workers}
	if bcfg.Algorithms, err = parseAlgorithms(*algs); err != nil {
		fail(err)
	}
	if bcfg.Depths, err = parseInts(*depths); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	results, err := bench.NewRunner(bcfg, logx.Component(logger, "bench")).Run(ctx, loaded)
	if err != nil {
		fail(err)
	}
	logger.Info().Int("states", len(loaded)).Dur("took", time.Since(started)).Msg("benchmark done")

	if *out != "" {
		w, err := bench.CreateReport(*out)
		if err != nil {
			fail(err)
		}
		if err := bench.WriteReport(w, results); err != nil {
			w.Close()
			fail(err)
		}
		if err := w.Close(); err != nil {
			fail(err)
		}
	}

	if *save {
		if err := saveRun(ctx, cfg, results); err != nil {
			fail(err)
		}
	}

	summary := bench.Summarize(results)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(summary)
		return
	}
	fmt.Printf("%-20s %5s %5s %14s %12s %8s\n", "algorithm", "depth", "runs", "mean nodes", "mean ms", "prune%")
	for _, s := range summary {
		fmt.Printf("%-20s %5d %5d %14.1f %12.3f %8.2f\n", s.Algorithm, s.Depth, s.Runs, s.MeanNodes, s.MeanMs, s.MeanPrunePercent)
	}
}

func saveRun(ctx context.Context, cfg *config.Config, results []bench.Result) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("-save needs DATABASE_URL")
	}
	db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	runID := uid.GenerateGameID()
	if err := postgres.NewBenchRepo(db).SaveResults(ctx, runID, bench.Records(results)); err != nil {
		return err
	}
	fmt.Println("saved run", runID)
	return nil
}

func parseAlgorithms(s string) ([]bot.Algorithm, error) {
	var out []bot.Algorithm
	for _, name := range splitList(s) {
		alg, err := bot.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		out = append(out, alg)
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range splitList(s) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "bench:", err)
	os.Exit(1)
}
