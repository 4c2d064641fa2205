package domain

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// centreOrder lists columns by distance from the middle, right before left.
var centreOrder = [Columns]int{3, 2, 4, 1, 5, 0, 6}

// Board is the mutable position the search engine works on. Row 0 is the top
// row. It is only changed through Play and Undo, which are exact inverses.
type Board struct {
	grid    [Rows][Columns]Side
	heights [Columns]int

	lastRow, lastCol int
	hasLast          bool
}

func NewBoard() *Board {
	return &Board{}
}

// FromGrid builds a board from a full grid snapshot. Heights are derived from
// the grid, so a disc sitting above an empty cell is rejected.
func FromGrid(grid [Rows][Columns]Side) (*Board, error) {
	b := &Board{grid: grid}
	for c := 0; c < Columns; c++ {
		// scanning from the bottom, discs must be contiguous
		h := 0
		for r := Rows - 1; r >= 0; r-- {
			if grid[r][c] == None {
				break
			}
			h++
		}
		for r := Rows - 1 - h; r >= 0; r-- {
			if grid[r][c] != None {
				return nil, ErrFloatingDisc
			}
		}
		b.heights[c] = h
	}
	return b, nil
}

func (b *Board) Height(col int) int {
	return b.heights[col]
}

func (b *Board) At(row, col int) Side {
	return b.grid[row][col]
}

// LastMove returns the cell of the most recent Play, if it has not been undone.
func (b *Board) LastMove() (row, col int, ok bool) {
	return b.lastRow, b.lastCol, b.hasLast
}

func (b *Board) DiscCount() int {
	n := 0
	for _, h := range b.heights {
		n += h
	}
	return n
}

func (b *Board) IsLegal(col int) bool {
	return col >= 0 && col < Columns && b.heights[col] < Rows
}

// LegalMoves returns playable columns in natural order.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, Columns)
	for c := 0; c < Columns; c++ {
		if b.heights[c] < Rows {
			moves = append(moves, c)
		}
	}
	return moves
}

// CentreOrderedMoves returns playable columns starting from the centre.
func (b *Board) CentreOrderedMoves() []int {
	moves := make([]int, 0, Columns)
	for _, c := range centreOrder {
		if b.heights[c] < Rows {
			moves = append(moves, c)
		}
	}
	return moves
}

// Play drops a disc for side into col and returns the row it landed on.
// Playing a full or out-of-range column is a programming error.
func (b *Board) Play(col int, side Side) int {
	if col < 0 || col >= Columns {
		panic(ErrInvalidColumn)
	}
	if b.heights[col] >= Rows {
		panic(ErrColumnFull)
	}
	row := Rows - 1 - b.heights[col]
	b.grid[row][col] = side
	b.heights[col]++
	b.lastRow, b.lastCol, b.hasLast = row, col, true
	return row
}

// Undo removes the top disc of col. It is a no-op on an empty column.
func (b *Board) Undo(col int) {
	if b.heights[col] == 0 {
		return
	}
	row := Rows - b.heights[col]
	b.grid[row][col] = None
	b.heights[col]--
	b.hasLast = false
}

// IsWinAt reports whether the disc at (row, col) is part of four or more in a
// line. Only the lines through that cell are inspected.
func (b *Board) IsWinAt(row, col int) bool {
	side := b.grid[row][col]
	if side == None {
		return false
	}

	directions := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal \
		{1, -1}, // diagonal /
	}
	for _, dir := range directions {
		count := 1 + b.countDirection(row, col, dir[0], dir[1], side) +
			b.countDirection(row, col, -dir[0], -dir[1], side)
		if count >= ToWin {
			return true
		}
	}
	return false
}

// countDirection counts consecutive discs of side starting next to (row, col).
func (b *Board) countDirection(row, col, dRow, dCol int, side Side) int {
	count := 0
	r, c := row+dRow, col+dCol
	for r >= 0 && r < Rows && c >= 0 && c < Columns && b.grid[r][c] == side {
		count++
		r += dRow
		c += dCol
	}
	return count
}

// HasFour scans the whole grid. The search never needs it; it is for
// positions that arrive from outside.
func (b *Board) HasFour() bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if b.IsWinAt(r, c) {
				return true
			}
		}
	}
	return false
}

func (b *Board) IsFull() bool {
	for c := 0; c < Columns; c++ {
		if b.heights[c] < Rows {
			return false
		}
	}
	return true
}

// IsTerminal is true when the last move won or no column is left.
func (b *Board) IsTerminal() bool {
	if b.hasLast && b.IsWinAt(b.lastRow, b.lastCol) {
		return true
	}
	return b.IsFull()
}

// Key renders the grid as a 42 character string of X, O and '.'.
func (b *Board) Key() string {
	var buf [Rows * Columns]byte
	b.fillKey(&buf)
	return string(buf[:])
}

// Fingerprint hashes the whole grid. It is recomputed on every call.
func (b *Board) Fingerprint() uint64 {
	var buf [Rows * Columns]byte
	b.fillKey(&buf)
	return xxhash.Sum64(buf[:])
}

func (b *Board) fillKey(buf *[Rows * Columns]byte) {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			buf[r*Columns+c] = b.grid[r][c].Symbol()
		}
	}
}

// Clone returns an independent copy, including the last move pointer.
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

// Flip swaps Us and Them in place, handing the move to the other side.
func (b *Board) Flip() {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			b.grid[r][c] = -b.grid[r][c]
		}
	}
}

// Grid returns a copy of the cells as ints (+1 Us, -1 Them, 0 empty).
func (b *Board) Grid() [][]int {
	out := make([][]int, Rows)
	for r := range out {
		out[r] = make([]int, Columns)
		for c := 0; c < Columns; c++ {
			out[r][c] = int(b.grid[r][c])
		}
	}
	return out
}

func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("  0 1 2 3 4 5 6\n")
	for r := 0; r < Rows; r++ {
		sb.WriteString(" ")
		for c := 0; c < Columns; c++ {
			sb.WriteByte(' ')
			sb.WriteByte(b.grid[r][c].Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
