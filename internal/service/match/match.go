package match

import (
	"context"
	"fmt"
	"time"

	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Move is one ply of a match as the engine reported it.
type Move struct {
	Player    domain.PlayerID `json:"player"`
	Column    int             `json:"column"`
	Score     int             `json:"score"`
	Nodes     int64           `json:"nodes"`
	Depth     int             `json:"depth"`
	Elapsed   time.Duration   `json:"elapsed"`
	Corrected bool            `json:"corrected,omitempty"`
}

type Result struct {
	// Winner is Empty on a draw.
	Winner domain.PlayerID `json:"winner"`
	Moves  []Move          `json:"moves"`
	Game   *domain.Game    `json:"-"`
}

// TotalNodes sums the nodes searched by one player.
func (r Result) TotalNodes(p domain.PlayerID) int64 {
	var n int64
	for _, m := range r.Moves {
		if m.Player == p {
			n += m.Nodes
		}
	}
	return n
}

// OnMove is called after every ply, for printing the board as the game goes.
type OnMove func(g *domain.Game, m Move)

// Play runs first against second until the game ends or ctx is cancelled.
// Each engine sees the position through an observation, as an outside agent
// would. An illegal answer is replaced by the leftmost legal column.
func Play(ctx context.Context, first, second *bot.Manager, onMove OnMove, log zerolog.Logger) (Result, error) {
	g := domain.NewGame()
	seats := map[domain.PlayerID]*bot.Manager{
		domain.Player1: first,
		domain.Player2: second,
	}
	res := Result{Game: g}

	for !g.IsFinished() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		player := g.CurrentPlayer
		obs := g.ToObservation()
		b, err := domain.FromObservation(obs)
		if err != nil {
			return res, fmt.Errorf("move %d: %w", g.MoveCount+1, err)
		}

		m := seats[player]
		col, score := m.MakeMove(b)
		stats := m.LastStats()

		mv := Move{
			Player:  player,
			Column:  col,
			Score:   score,
			Nodes:   stats.Nodes,
			Depth:   stats.Depth,
			Elapsed: stats.Elapsed,
		}
		if legal := obs.LegalColumns(); !lo.Contains(legal, col) {
			log.Warn().
				Int("player", int(player)).
				Int("column", col).
				Ints("legal", legal).
				Msg("engine returned an illegal move, using first legal column")
			mv.Column = legal[0]
			mv.Corrected = true
		}

		if _, err := g.MakeMove(player, mv.Column); err != nil {
			return res, fmt.Errorf("move %d: %w", g.MoveCount+1, err)
		}
		res.Moves = append(res.Moves, mv)
		if onMove != nil {
			onMove(g, mv)
		}
	}

	res.Winner = g.Winner
	log.Info().
		Int("winner", int(res.Winner)).
		Int("moves", len(res.Moves)).
		Str("first", first.Algorithm().String()).
		Str("second", second.Algorithm().String()).
		Msg("match finished")
	return res, nil
}
