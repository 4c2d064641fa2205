package bot

import (
	"github.com/iamasit07/c4search/internal/domain"
)

const (
	// WinScore is reserved for forced wins. No sum of ordinary window scores
	// can reach it.
	WinScore  = 1000000
	LossScore = -WinScore
	DrawScore = 0

	CENTRE_WEIGHT     = 2
	THREE_OPEN_SCORE  = 30
	TWO_OPEN_SCORE    = 6
	BLOCK_TWO_SCORE   = -6
	BLOCK_THREE_SCORE = -35
)

const (
	windowLength         = domain.ToWin
	centreColumn         = domain.Columns / 2
	windowDirectionCount = 4
)

// Evaluator scores a position from the point of view of domain.Us.
type Evaluator func(b *domain.Board) int

// windowDirections are the four axes a window can lie along, with the row
// range a window may start in.
var windowDirections = [windowDirectionCount]struct {
	dRow, dCol         int
	rowStart, rowLimit int
}{
	{0, 1, 0, domain.Rows},                    // horizontal
	{1, 0, 0, domain.Rows - windowLength + 1}, // vertical
	{1, 1, 0, domain.Rows - windowLength + 1}, // diagonal \
	{-1, 1, windowLength - 1, domain.Rows},    // diagonal /
}

// Evaluate is the baseline heuristic: a small centre column bonus plus a
// score for every window of four cells. Blocking an opponent three is
// weighted above making our own.
func Evaluate(b *domain.Board) int {
	score := 0

	for row := 0; row < domain.Rows; row++ {
		switch b.At(row, centreColumn) {
		case domain.Us:
			score += CENTRE_WEIGHT
		case domain.Them:
			score -= CENTRE_WEIGHT
		}
	}

	for _, dir := range windowDirections {
		colLimit := domain.Columns
		if dir.dCol != 0 {
			colLimit = domain.Columns - windowLength + 1
		}
		for row := dir.rowStart; row < dir.rowLimit; row++ {
			for col := 0; col < colLimit; col++ {
				score += scoreWindow(b, row, col, dir.dRow, dir.dCol)
			}
		}
	}

	return score
}

func scoreWindow(b *domain.Board, row, col, dRow, dCol int) int {
	mine, theirs := 0, 0
	for i := 0; i < windowLength; i++ {
		switch b.At(row+i*dRow, col+i*dCol) {
		case domain.Us:
			mine++
		case domain.Them:
			theirs++
		}
	}
	empty := windowLength - mine - theirs

	switch {
	case mine == 4:
		return WinScore
	case theirs == 4:
		return LossScore
	case mine == 3 && empty == 1:
		return THREE_OPEN_SCORE
	case mine == 2 && empty == 2:
		return TWO_OPEN_SCORE
	case theirs == 3 && empty == 1:
		return BLOCK_THREE_SCORE
	case theirs == 2 && empty == 2:
		return BLOCK_TWO_SCORE
	}
	return 0
}
