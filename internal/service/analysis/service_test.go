package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/rs/zerolog"
)

type memCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.sets++
	c.data[key] = value
	return nil
}

var testEngine = config.EngineConfig{
	MaxDepth:         6,
	TimeLimit:        0,
	TTSize:           10000,
	DefaultAlgorithm: "iterdeep_moveorder",
}

func TestBestMoveTakesWin(t *testing.T) {
	svc := NewService(testEngine, nil, zerolog.Nop())
	// Player1 has three on the bottom row and is to move
	res, err := svc.BestMove(context.Background(), Request{Moves: "112233", Depth: 4})
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if res.Column != 3 || res.Score < 1000000 {
		t.Fatalf("got %+v, want the win in column 3", res)
	}
	if res.Algorithm != "iterdeep_moveorder" || res.Cached {
		t.Fatalf("unexpected metadata %+v", res)
	}
}

func TestBestMoveFromGrid(t *testing.T) {
	g, err := domain.ReplayMoves("445")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	svc := NewService(testEngine, nil, zerolog.Nop())
	res, err := svc.BestMove(context.Background(), Request{Grid: g.Cells(), Algorithm: "alphabeta", Depth: 3})
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if !g.LegalMask()[res.Column] || res.Nodes == 0 || res.Depth != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBestMoveUsesCache(t *testing.T) {
	cache := newMemCache()
	svc := NewService(testEngine, cache, zerolog.Nop())
	req := Request{Moves: "4453", Algorithm: "ttable", Depth: 4}

	first, err := svc.BestMove(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.BestMove(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached flags: %v %v", first.Cached, second.Cached)
	}
	if first.Column != second.Column || first.Score != second.Score || first.Nodes != second.Nodes {
		t.Fatalf("cache changed the answer: %+v vs %+v", first, second)
	}
	if cache.sets != 1 {
		t.Fatalf("sets = %d, want 1", cache.sets)
	}

	// a different depth is a different entry
	if res, _ := svc.BestMove(context.Background(), Request{Moves: "4453", Algorithm: "ttable", Depth: 3}); res.Cached {
		t.Fatalf("depth must be part of the key")
	}
}

func TestRandomIsNotCached(t *testing.T) {
	cache := newMemCache()
	svc := NewService(testEngine, cache, zerolog.Nop())
	if _, err := svc.BestMove(context.Background(), Request{Algorithm: "random"}); err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if cache.gets != 0 || cache.sets != 0 {
		t.Fatalf("random answers touched the cache: %d gets, %d sets", cache.gets, cache.sets)
	}
}

func TestBestMoveRejectsBadRequests(t *testing.T) {
	svc := NewService(testEngine, nil, zerolog.Nop())
	g, _ := domain.ReplayMoves("1")

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"unknown algorithm", Request{Algorithm: "negamax"}, domain.ErrBadRequest},
		{"too deep", Request{Depth: 7}, domain.ErrBadRequest},
		{"negative depth", Request{Depth: -1}, domain.ErrBadRequest},
		{"long deadline", Request{TimeLimitMs: int(2 * MaxTimeLimit / time.Millisecond)}, domain.ErrBadRequest},
		{"both inputs", Request{Moves: "1", Grid: g.Cells()}, domain.ErrBadRequest},
		{"bad moves", Request{Moves: "9"}, domain.ErrBadMoveString},
		{"finished", Request{Moves: "1212121"}, domain.ErrGameOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.BestMove(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
