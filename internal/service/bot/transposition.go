package bot

import (
	"github.com/iamasit07/c4search/internal/domain"
)

// DefaultTTSize caps the number of positions a table keeps.
const DefaultTTSize = 1000000

type Bound uint8

const (
	Exact      Bound = iota
	LowerBound       // search failed high, score >= stored
	UpperBound       // search failed low, score <= stored
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "exact"
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "unknown"
	}
}

type TTEntry struct {
	Score int
	Move  int
	Depth int
	Bound Bound
}

type TTStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hitRate"`
}

// TranspositionTable caches search results by position fingerprint. It
// belongs to a single search and is not safe for concurrent use.
type TranspositionTable struct {
	entries map[uint64]TTEntry
	// order holds keys by first insertion; eviction drops its front half
	order   []uint64
	maxSize int
	hits    int64
	misses  int64
}

func NewTranspositionTable(maxSize int) *TranspositionTable {
	if maxSize <= 0 {
		maxSize = DefaultTTSize
	}
	return &TranspositionTable{
		entries: make(map[uint64]TTEntry),
		maxSize: maxSize,
	}
}

// Lookup returns a score only when the stored entry is deep enough and its
// bound proves something about the (alpha, beta) window. The stored move is
// returned for ordering whenever the entry is deep enough.
func (t *TranspositionTable) Lookup(b *domain.Board, depth, alpha, beta int) (score int, move int, ok bool) {
	entry, found := t.entries[b.Fingerprint()]
	if !found || entry.Depth < depth {
		t.misses++
		return 0, domain.NoMove, false
	}
	t.hits++

	switch {
	case entry.Bound == Exact:
		return entry.Score, entry.Move, true
	case entry.Bound == LowerBound && entry.Score >= beta:
		return entry.Score, entry.Move, true
	case entry.Bound == UpperBound && entry.Score <= alpha:
		return entry.Score, entry.Move, true
	}
	return 0, entry.Move, false
}

// Store writes an entry, replacing whatever was kept for the position.
func (t *TranspositionTable) Store(b *domain.Board, score, move, depth int, bound Bound) {
	if len(t.entries) >= t.maxSize {
		t.evictOldest()
	}

	key := b.Fingerprint()
	if _, exists := t.entries[key]; !exists {
		t.order = append(t.order, key)
	}
	t.entries[key] = TTEntry{Score: score, Move: move, Depth: depth, Bound: bound}
}

// evictOldest drops the first inserted half of the table.
func (t *TranspositionTable) evictOldest() {
	cut := len(t.order) / 2
	for _, key := range t.order[:cut] {
		delete(t.entries, key)
	}
	kept := make([]uint64, len(t.order)-cut)
	copy(kept, t.order[cut:])
	t.order = kept
}

func (t *TranspositionTable) Clear() {
	t.entries = make(map[uint64]TTEntry)
	t.order = nil
	t.hits = 0
	t.misses = 0
}

func (t *TranspositionTable) Len() int {
	return len(t.entries)
}

func (t *TranspositionTable) Stats() TTStats {
	stats := TTStats{Hits: t.hits, Misses: t.misses, Size: len(t.entries)}
	if total := t.hits + t.misses; total > 0 {
		stats.HitRate = float64(t.hits) / float64(total) * 100
	}
	return stats
}
