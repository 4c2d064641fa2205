package domain

import (
	"fmt"

	"github.com/samber/lo"
)

// Observation is the two-plane snapshot handed over by a turn-based
// environment. Plane 0 holds the discs of the side to move, plane 1 those of
// its opponent.
type Observation struct {
	Planes     [Rows][Columns][2]int8
	ActionMask [Columns]bool
}

// LegalColumns lists the columns allowed by the action mask.
func (o Observation) LegalColumns() []int {
	return lo.Filter(lo.Range(Columns), func(c int, _ int) bool {
		return o.ActionMask[c]
	})
}

// FromObservation converts an observation into a board where the side to
// move is Us.
func FromObservation(obs Observation) (*Board, error) {
	var grid [Rows][Columns]Side
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			mine, theirs := obs.Planes[r][c][0] == 1, obs.Planes[r][c][1] == 1
			switch {
			case mine && theirs:
				return nil, fmt.Errorf("cell (%d,%d) set in both planes: %w", r, c, ErrBadObservation)
			case mine:
				grid[r][c] = Us
			case theirs:
				grid[r][c] = Them
			}
		}
	}
	b, err := FromGrid(grid)
	if err != nil {
		return nil, fmt.Errorf("observation: %w", err)
	}
	return b, nil
}

// FromGame returns a search board for the player whose turn it is.
func FromGame(g *Game) *Board {
	b := g.board.Clone()
	b.hasLast = false
	if g.CurrentPlayer == Player2 {
		b.Flip()
	}
	return b
}

// ToObservation is the inverse of FromObservation for a refereed game.
func (g *Game) ToObservation() Observation {
	var obs Observation
	b := FromGame(g)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			switch b.At(r, c) {
			case Us:
				obs.Planes[r][c][0] = 1
			case Them:
				obs.Planes[r][c][1] = 1
			}
		}
	}
	obs.ActionMask = g.LegalMask()
	return obs
}

// ReplayMoves plays a string of 1-based column digits ("4453") from the empty
// board, alternating players, and returns the refereed game.
func ReplayMoves(seq string) (*Game, error) {
	g := NewGame()
	for i, ch := range seq {
		if ch < '1' || ch > '0'+Columns {
			return nil, fmt.Errorf("position %d (%q): %w", i, ch, ErrBadMoveString)
		}
		if _, err := g.MakeMove(g.CurrentPlayer, int(ch-'1')); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return g, nil
}

// FromMoves replays seq and returns the board from the point of view of the
// player to move next.
func FromMoves(seq string) (*Board, error) {
	g, err := ReplayMoves(seq)
	if err != nil {
		return nil, err
	}
	if g.IsFinished() {
		return nil, fmt.Errorf("sequence %q: %w", seq, ErrGameOver)
	}
	return FromGame(g), nil
}
