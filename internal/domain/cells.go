package domain

import "fmt"

// FromCells reads a grid in the referee's format (0 empty, 1 and 2 for the
// players, row 0 on top) and returns the search board for whoever moves next.
// Player1 moves when both players have the same number of discs.
func FromCells(cells [][]int) (*Board, PlayerID, error) {
	if len(cells) != Rows {
		return nil, Empty, fmt.Errorf("%d rows: %w", len(cells), ErrBadGrid)
	}

	var grid [Rows][Columns]Side
	counts := map[PlayerID]int{}
	for r, row := range cells {
		if len(row) != Columns {
			return nil, Empty, fmt.Errorf("row %d has %d cells: %w", r, len(row), ErrBadGrid)
		}
		for c, v := range row {
			p := PlayerID(v)
			if p != Empty && p != Player1 && p != Player2 {
				return nil, Empty, fmt.Errorf("cell (%d,%d) = %d: %w", r, c, v, ErrBadGrid)
			}
			grid[r][c] = sideOf(p)
			counts[p]++
		}
	}

	toMove := Player1
	switch counts[Player1] - counts[Player2] {
	case 0:
	case 1:
		toMove = Player2
	default:
		return nil, Empty, fmt.Errorf("disc counts %d and %d: %w", counts[Player1], counts[Player2], ErrBadGrid)
	}

	b, err := FromGrid(grid)
	if err != nil {
		return nil, Empty, err
	}
	if b.HasFour() {
		return nil, Empty, ErrGameOver
	}
	if toMove == Player2 {
		b.Flip()
	}
	return b, toMove, nil
}
