package bot

import (
	"time"

	"github.com/iamasit07/c4search/internal/domain"
	"github.com/rs/zerolog"
)

// Settings selects a preset and its limits.
type Settings struct {
	Algorithm Algorithm
	MaxDepth  int
	// TimeLimit of zero disables the deadline.
	TimeLimit time.Duration
	TTSize    int
	Seed      int64
}

// NewContext builds a fresh search context for the settings.
func (s Settings) NewContext() *SearchContext {
	depth := s.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	ctx := NewSearchContext(depth, s.TimeLimit, s.Algorithm.Features())
	if s.TTSize > 0 {
		ctx.TT = NewTranspositionTable(s.TTSize)
	}
	return ctx
}

// Manager owns the player for one seat and keeps the figures of its last
// move for debugging and benchmarks.
type Manager struct {
	settings Settings
	player   Player
	log      zerolog.Logger
	last     Stats
}

func NewManager(settings Settings, log zerolog.Logger) *Manager {
	m := &Manager{log: log}
	m.SetAlgorithm(settings)
	return m
}

// SetAlgorithm swaps the player for a new one built from settings. Any
// cached search state is discarded.
func (m *Manager) SetAlgorithm(settings Settings) {
	m.settings = settings
	m.last = Stats{}
	if settings.Algorithm == Random {
		seed := settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		m.player = NewRandomPlayer(seed)
		return
	}
	m.player = NewSearchPlayer(settings.NewContext())
}

func (m *Manager) Settings() Settings {
	return m.settings
}

func (m *Manager) Algorithm() Algorithm {
	return m.settings.Algorithm
}

// MakeMove asks the player for a move on b, where the side to move is Us.
func (m *Manager) MakeMove(b *domain.Board) (int, int) {
	move, score := m.player.MakeMove(b)
	m.last = m.player.Stats()

	m.log.Debug().
		Str("algorithm", m.settings.Algorithm.String()).
		Int("move", move).
		Int("score", score).
		Int64("nodes", m.last.Nodes).
		Int("depth", m.last.Depth).
		Dur("elapsed", m.last.Elapsed).
		Int64("tt_hits", m.last.TT.Hits).
		Int64("tt_misses", m.last.TT.Misses).
		Int("tt_size", m.last.TT.Size).
		Msg("engine move")

	return move, score
}

func (m *Manager) NodesSearched() int64 {
	return m.last.Nodes
}

func (m *Manager) LastStats() Stats {
	return m.last
}
