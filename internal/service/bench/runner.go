package bench

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config selects what a run measures. A zero TimeLimit searches every depth
// to completion, which is what node counts need to be comparable.
type Config struct {
	Algorithms  []bot.Algorithm
	Depths      []int
	TimeLimit   time.Duration
	TTSize      int
	Concurrency int
}

// DefaultAlgorithms are the presets whose node counts are compared.
var DefaultAlgorithms = []bot.Algorithm{bot.Minimax, bot.AlphaBeta, bot.TTable, bot.IterDeepTT, bot.IterDeepMoveOrder}

type Result struct {
	State     string        `json:"state"`
	Algorithm string        `json:"algorithm"`
	Depth     int           `json:"depth"`
	Move      int           `json:"move"`
	Score     int           `json:"score"`
	Nodes     int64         `json:"nodes"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMs float64       `json:"elapsedMs"`
	// PrunePercent is the share of the Minimax node count that was not
	// searched, or zero when the run has no Minimax baseline.
	PrunePercent float64 `json:"prunePercent"`
}

type task struct {
	index int
	state string
	alg   bot.Algorithm
	depth int
}

type Runner struct {
	cfg Config
	log zerolog.Logger
}

func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = DefaultAlgorithms
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Runner{cfg: cfg, log: log}
}

// Run measures every (state, algorithm, depth) combination. Searches run in
// parallel, each with its own engine, and results come back in input order.
func (r *Runner) Run(ctx context.Context, states []string) ([]Result, error) {
	if len(r.cfg.Depths) == 0 {
		return nil, fmt.Errorf("no depths given: %w", domain.ErrBadRequest)
	}

	var tasks []task
	for _, s := range states {
		for _, d := range r.cfg.Depths {
			if d < 1 {
				return nil, fmt.Errorf("depth %d: %w", d, domain.ErrBadRequest)
			}
			for _, a := range r.cfg.Algorithms {
				tasks = append(tasks, task{index: len(tasks), state: s, alg: a, depth: d})
			}
		}
	}

	results := make([]Result, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.measure(t)
			if err != nil {
				return err
			}
			results[t.index] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	applyPrunePercent(results)
	r.log.Info().Int("states", len(states)).Int("searches", len(results)).Msg("bench run finished")
	return results, nil
}

func (r *Runner) measure(t task) (Result, error) {
	b, err := domain.FromMoves(t.state)
	if err != nil {
		return Result{}, fmt.Errorf("state %q: %w", t.state, err)
	}

	m := bot.NewManager(bot.Settings{
		Algorithm: t.alg,
		MaxDepth:  t.depth,
		TimeLimit: r.cfg.TimeLimit,
		TTSize:    r.cfg.TTSize,
		Seed:      int64(t.index + 1),
	}, r.log)
	move, score := m.MakeMove(b)
	stats := m.LastStats()

	return Result{
		State:     t.state,
		Algorithm: t.alg.String(),
		Depth:     t.depth,
		Move:      move,
		Score:     score,
		Nodes:     stats.Nodes,
		Elapsed:   stats.Elapsed,
		ElapsedMs: float64(stats.Elapsed.Microseconds()) / 1000,
	}, nil
}

func applyPrunePercent(results []Result) {
	type key struct {
		state string
		depth int
	}
	baseline := map[key]int64{}
	for _, res := range results {
		if res.Algorithm == bot.Minimax.String() {
			baseline[key{res.State, res.Depth}] = res.Nodes
		}
	}
	for i := range results {
		n, ok := baseline[key{results[i].State, results[i].Depth}]
		if ok && n > 0 {
			results[i].PrunePercent = (1 - float64(results[i].Nodes)/float64(n)) * 100
		}
	}
}
