package bot

import (
	"math/rand"

	"github.com/iamasit07/c4search/internal/domain"
)

// Player chooses a move for domain.Us on the given board.
type Player interface {
	MakeMove(b *domain.Board) (move int, score int)
	Stats() Stats
}

// RandomPlayer picks any legal column.
type RandomPlayer struct {
	rng *rand.Rand
}

func NewRandomPlayer(seed int64) *RandomPlayer {
	return &RandomPlayer{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer) MakeMove(b *domain.Board) (int, int) {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return domain.NoMove, DrawScore
	}
	return moves[p.rng.Intn(len(moves))], DrawScore
}

func (p *RandomPlayer) Stats() Stats {
	return Stats{}
}

// SearchPlayer runs the engine with a context it owns.
type SearchPlayer struct {
	engine *Engine
	ctx    *SearchContext
}

func NewSearchPlayer(ctx *SearchContext) *SearchPlayer {
	return &SearchPlayer{engine: NewEngine(), ctx: ctx}
}

func (p *SearchPlayer) MakeMove(b *domain.Board) (int, int) {
	return p.engine.ChooseMove(b, p.ctx)
}

func (p *SearchPlayer) Stats() Stats {
	return p.engine.Stats()
}

func (p *SearchPlayer) Context() *SearchContext {
	return p.ctx
}
