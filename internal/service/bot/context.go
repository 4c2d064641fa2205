package bot

import (
	"time"
)

const (
	DefaultMaxDepth  = 12
	DefaultTimeLimit = 500 * time.Millisecond
)

// Features switches the optional parts of the search on and off. Every
// named algorithm is one combination of these.
type Features struct {
	AlphaBeta          bool
	Transposition      bool
	IterativeDeepening bool
	MoveOrdering       bool
}

// SearchContext is built per request and handed to every recursive call.
// Its settings do not change during a search; only the clock start is set by
// the engine.
type SearchContext struct {
	MaxDepth int
	// TimeLimit of zero means no deadline.
	TimeLimit time.Duration
	Eval      Evaluator
	Features
	TT *TranspositionTable

	start time.Time
}

func NewSearchContext(maxDepth int, timeLimit time.Duration, features Features) *SearchContext {
	return &SearchContext{
		MaxDepth:  maxDepth,
		TimeLimit: timeLimit,
		Eval:      Evaluate,
		Features:  features,
		TT:        NewTranspositionTable(DefaultTTSize),
	}
}

func (ctx *SearchContext) StartTimer() {
	ctx.start = time.Now()
}

// TimeExceeded reports whether the deadline has passed. A context that was
// never started, or has no limit, never expires.
func (ctx *SearchContext) TimeExceeded() bool {
	if ctx.TimeLimit <= 0 || ctx.start.IsZero() {
		return false
	}
	return time.Since(ctx.start) >= ctx.TimeLimit
}

func (ctx *SearchContext) Elapsed() time.Duration {
	if ctx.start.IsZero() {
		return 0
	}
	return time.Since(ctx.start)
}
