package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/rs/zerolog"
)

// MaxTimeLimit bounds the deadline a caller may ask for.
const MaxTimeLimit = 10 * time.Second

// Cache memoises answers by key. Implemented by redis.MoveCache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Request describes a position either as a referee grid or as a move string.
// Zero values fall back to the configured engine defaults.
type Request struct {
	Grid        [][]int `json:"grid,omitempty"`
	Moves       string  `json:"moves,omitempty"`
	Algorithm   string  `json:"algorithm,omitempty"`
	Depth       int     `json:"depth,omitempty"`
	TimeLimitMs int     `json:"timeLimitMs,omitempty"`
}

type Result struct {
	Column    int     `json:"column"`
	Score     int     `json:"score"`
	Algorithm string  `json:"algorithm"`
	Nodes     int64   `json:"nodes"`
	Depth     int     `json:"depth"`
	ElapsedMs float64 `json:"elapsedMs"`
	TTHits    int64   `json:"ttHits"`
	TTMisses  int64   `json:"ttMisses"`
	Cached    bool    `json:"cached"`
}

type Service struct {
	engine config.EngineConfig
	cache  Cache
	log    zerolog.Logger
}

// NewService accepts a nil cache.
func NewService(engine config.EngineConfig, cache Cache, log zerolog.Logger) *Service {
	return &Service{engine: engine, cache: cache, log: log}
}

// BestMove answers for the side to move in the requested position.
func (s *Service) BestMove(ctx context.Context, req Request) (Result, error) {
	b, err := s.position(req)
	if err != nil {
		return Result{}, err
	}
	settings, err := s.settings(req)
	if err != nil {
		return Result{}, err
	}

	key := cacheKey(b, settings)
	if res, ok := s.lookup(ctx, key, settings); ok {
		return res, nil
	}

	m := bot.NewManager(settings, s.log)
	move, score := m.MakeMove(b)
	if move == domain.NoMove {
		return Result{}, fmt.Errorf("no legal column: %w", domain.ErrGameOver)
	}

	stats := m.LastStats()
	res := Result{
		Column:    move,
		Score:     score,
		Algorithm: settings.Algorithm.String(),
		Nodes:     stats.Nodes,
		Depth:     stats.Depth,
		ElapsedMs: float64(stats.Elapsed.Microseconds()) / 1000,
		TTHits:    stats.TT.Hits,
		TTMisses:  stats.TT.Misses,
	}
	s.store(ctx, key, settings, res)
	return res, nil
}

func (s *Service) position(req Request) (*domain.Board, error) {
	switch {
	case req.Grid != nil && req.Moves != "":
		return nil, fmt.Errorf("grid and moves are exclusive: %w", domain.ErrBadRequest)
	case req.Grid != nil:
		b, _, err := domain.FromCells(req.Grid)
		return b, err
	default:
		// the empty string is the opening position
		return domain.FromMoves(req.Moves)
	}
}

func (s *Service) settings(req Request) (bot.Settings, error) {
	name := req.Algorithm
	if name == "" {
		name = s.engine.DefaultAlgorithm
	}
	alg, err := bot.ParseAlgorithm(name)
	if err != nil {
		return bot.Settings{}, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	depth := req.Depth
	if depth == 0 {
		depth = s.engine.MaxDepth
	}
	if depth < 1 || depth > s.engine.MaxDepth {
		return bot.Settings{}, fmt.Errorf("depth %d outside 1..%d: %w", depth, s.engine.MaxDepth, domain.ErrBadRequest)
	}

	limit := s.engine.TimeLimit
	if req.TimeLimitMs != 0 {
		limit = time.Duration(req.TimeLimitMs) * time.Millisecond
	}
	if limit < 0 || limit > MaxTimeLimit {
		return bot.Settings{}, fmt.Errorf("time limit %s outside 0..%s: %w", limit, MaxTimeLimit, domain.ErrBadRequest)
	}

	return bot.Settings{Algorithm: alg, MaxDepth: depth, TimeLimit: limit, TTSize: s.engine.TTSize}, nil
}

func cacheKey(b *domain.Board, s bot.Settings) string {
	return fmt.Sprintf("%016x:%s:%d:%d", b.Fingerprint(), s.Algorithm, s.MaxDepth, s.TimeLimit.Milliseconds())
}

func cacheable(s bot.Settings) bool {
	return s.Algorithm != bot.Random
}

func (s *Service) lookup(ctx context.Context, key string, settings bot.Settings) (Result, bool) {
	if s.cache == nil || !cacheable(settings) {
		return Result{}, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("move cache read failed")
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		return Result{}, false
	}
	res.Cached = true
	return res, true
}

func (s *Service) store(ctx context.Context, key string, settings bot.Settings, res Result) {
	if s.cache == nil || !cacheable(settings) {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("move cache write failed")
	}
}
