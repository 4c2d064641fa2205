package bot

import (
	"math"
	"time"

	"github.com/iamasit07/c4search/internal/domain"
)

const (
	negInf = math.MinInt32
	posInf = math.MaxInt32
)

// Stats describes the last ChooseMove call.
type Stats struct {
	Nodes   int64         `json:"nodes"`
	Depth   int           `json:"depth"`
	Elapsed time.Duration `json:"elapsed"`
	TT      TTStats       `json:"tt"`
}

// Engine runs minimax over a board it mutates in place. One engine serves
// one search at a time.
type Engine struct {
	nodes   int64
	depth   int
	aborted bool
	stats   Stats
}

func NewEngine() *Engine {
	return &Engine{}
}

// ChooseMove picks a column for domain.Us. It returns domain.NoMove and
// DrawScore only when the board has no legal column. The board is left
// exactly as it was received.
func (e *Engine) ChooseMove(b *domain.Board, ctx *SearchContext) (int, int) {
	e.nodes, e.depth, e.aborted = 0, 0, false
	if ctx.Eval == nil {
		ctx.Eval = Evaluate
	}
	if ctx.TT == nil {
		ctx.TT = NewTranspositionTable(DefaultTTSize)
	}
	ctx.StartTimer()
	defer e.finish(ctx)

	var move, score int
	if ctx.IterativeDeepening {
		move, score = e.iterativeDeepening(b, ctx)
	} else {
		var complete bool
		move, score, complete = e.searchRoot(b, ctx.MaxDepth, ctx)
		if complete {
			e.depth = ctx.MaxDepth
		}
	}

	if move == domain.NoMove {
		// nothing finished in time: any legal column beats none
		if legal := b.LegalMoves(); len(legal) > 0 {
			return legal[0], DrawScore
		}
		return domain.NoMove, DrawScore
	}
	return move, score
}

func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) finish(ctx *SearchContext) {
	e.stats = Stats{
		Nodes:   e.nodes,
		Depth:   e.depth,
		Elapsed: ctx.Elapsed(),
		TT:      ctx.TT.Stats(),
	}
}

// iterativeDeepening searches depth 1, 2, ... and keeps the answer of the
// deepest search that finished before the deadline.
func (e *Engine) iterativeDeepening(b *domain.Board, ctx *SearchContext) (int, int) {
	ctx.TT.Clear()

	bestMove, bestScore := domain.NoMove, DrawScore
	for depth := 1; depth <= ctx.MaxDepth; depth++ {
		move, score, complete := e.searchRoot(b, depth, ctx)
		if !complete || ctx.TimeExceeded() || move == domain.NoMove {
			break
		}
		bestMove, bestScore = move, score
		e.depth = depth

		// a forced result will not change with more depth
		if abs(score) >= WinScore*depth {
			break
		}
	}
	return bestMove, bestScore
}

// searchRoot scores every legal move for Us at the given depth. complete is
// false when the deadline cut the enumeration short; the move and score are
// then the best among the moves that were fully searched.
func (e *Engine) searchRoot(b *domain.Board, depth int, ctx *SearchContext) (move, score int, complete bool) {
	moves := b.LegalMoves()
	if ctx.MoveOrdering {
		moves = b.CentreOrderedMoves()
	}
	if len(moves) == 0 {
		return domain.NoMove, DrawScore, true
	}

	bestMove, bestScore := domain.NoMove, negInf
	for _, col := range moves {
		if ctx.TimeExceeded() {
			return bestMove, bestScore, false
		}

		s, won := e.playChild(b, col, domain.Us, depth, negInf, posInf, ctx)
		if e.aborted {
			return bestMove, bestScore, false
		}
		if s > bestScore {
			bestScore = s
			bestMove = col
		}
		if won {
			break
		}
	}
	return bestMove, bestScore, true
}

// playChild plays col for side, scores the resulting position and takes the
// disc back on every return path. won is set when the move itself completes
// four, in which case no recursion happens.
func (e *Engine) playChild(b *domain.Board, col int, side domain.Side, depth, alpha, beta int, ctx *SearchContext) (score int, won bool) {
	row := b.Play(col, side)
	defer b.Undo(col)

	if b.IsWinAt(row, col) {
		return winFor(side, depth), true
	}
	return e.search(b, depth-1, alpha, beta, side == domain.Them, ctx), false
}

func (e *Engine) search(b *domain.Board, depth, alpha, beta int, maximizing bool, ctx *SearchContext) int {
	e.nodes++
	if ctx.TimeExceeded() {
		e.aborted = true
		return DrawScore
	}

	if depth == 0 || b.IsTerminal() {
		return e.leafScore(b, depth, ctx)
	}

	alphaOrig, betaOrig := alpha, beta
	ttMove := domain.NoMove
	if ctx.Transposition {
		score, move, ok := ctx.TT.Lookup(b, depth, alpha, beta)
		if ok {
			return score
		}
		ttMove = move
	}

	side, value := domain.Them, posInf
	if maximizing {
		side, value = domain.Us, negInf
	}
	bestMove := domain.NoMove

	for _, col := range orderMoves(b, ttMove, ctx) {
		score, won := e.playChild(b, col, side, depth, alpha, beta, ctx)
		if won {
			return score
		}
		if e.aborted {
			return DrawScore
		}

		if maximizing {
			if score > value {
				value = score
				bestMove = col
			}
			if ctx.AlphaBeta {
				alpha = max(alpha, value)
				if alpha >= beta {
					break // beta cutoff
				}
			}
		} else {
			if score < value {
				value = score
				bestMove = col
			}
			if ctx.AlphaBeta {
				beta = min(beta, value)
				if beta <= alpha {
					break // alpha cutoff
				}
			}
		}
	}

	if ctx.Transposition {
		bound := Exact
		switch {
		case value <= alphaOrig:
			bound = UpperBound
		case value >= betaOrig:
			bound = LowerBound
		}
		ctx.TT.Store(b, value, bestMove, depth, bound)
	}
	return value
}

// leafScore evaluates a depth cutoff or a finished game. A four made by the
// last move is scored like the immediate win that produced it.
func (e *Engine) leafScore(b *domain.Board, depth int, ctx *SearchContext) int {
	if row, col, ok := b.LastMove(); ok && b.IsWinAt(row, col) {
		return winFor(b.At(row, col), depth+1)
	}
	return ctx.Eval(b)
}

// orderMoves puts the table's move first when ordering is on; the rest go
// centre first. Without ordering the natural column order is kept.
func orderMoves(b *domain.Board, ttMove int, ctx *SearchContext) []int {
	if !ctx.MoveOrdering {
		return b.LegalMoves()
	}
	moves := b.CentreOrderedMoves()
	if ttMove == domain.NoMove || !b.IsLegal(ttMove) {
		return moves
	}
	for i, m := range moves {
		if m == ttMove {
			copy(moves[1:i+1], moves[:i])
			moves[0] = ttMove
			break
		}
	}
	return moves
}

// winFor scores a four completed by side with depth plies still to search,
// so quicker wins and slower losses come out ahead.
func winFor(side domain.Side, depth int) int {
	if side == domain.Us {
		return WinScore * depth
	}
	return LossScore * depth
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
