package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestPlayUndoRestoresBoard(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBoard()

	var played []int
	for i := 0; i < 30; i++ {
		moves := b.LegalMoves()
		col := moves[rng.Intn(len(moves))]
		side := Us
		if i%2 == 1 {
			side = Them
		}

		before := *b
		row := b.Play(col, side)
		if b.At(row, col) != side {
			t.Fatalf("disc not placed at (%d,%d)", row, col)
		}
		b.Undo(col)
		if b.grid != before.grid || b.heights != before.heights {
			t.Fatalf("undo(play(%d)) changed the board:\n%s", col, b)
		}

		b.Play(col, side)
		played = append(played, col)
	}

	for i := len(played) - 1; i >= 0; i-- {
		b.Undo(played[i])
	}
	if !reflect.DeepEqual(b.grid, NewBoard().grid) || b.DiscCount() != 0 {
		t.Fatalf("unwinding every move should give the empty board:\n%s", b)
	}
}

func TestUndoEmptyColumnIsNoop(t *testing.T) {
	b := NewBoard()
	b.Undo(3)
	if b.Height(3) != 0 {
		t.Fatalf("height changed on empty undo: %d", b.Height(3))
	}
}

func TestUndoClearsLastMove(t *testing.T) {
	b := NewBoard()
	b.Play(2, Us)
	if _, col, ok := b.LastMove(); !ok || col != 2 {
		t.Fatalf("expected last move in column 2")
	}
	b.Undo(2)
	if _, _, ok := b.LastMove(); ok {
		t.Fatalf("last move should be cleared after undo")
	}
}

func TestHeightsMatchDiscCount(t *testing.T) {
	// row 5 holds three of each side's discs, nobody has four
	b, err := FromMoves("4444332271")
	if err != nil {
		t.Fatalf("FromMoves: %v", err)
	}
	for c := 0; c < Columns; c++ {
		n := 0
		for r := 0; r < Rows; r++ {
			if b.At(r, c) != None {
				n++
			}
		}
		if n != b.Height(c) {
			t.Fatalf("column %d: height %d, discs %d", c, b.Height(c), n)
		}
	}
}

func TestLegalMovesExcludeFullColumns(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Rows; i++ {
		if !contains(b.LegalMoves(), 0) {
			t.Fatalf("column 0 should be legal at height %d", i)
		}
		side := Us
		if i%2 == 1 {
			side = Them
		}
		b.Play(0, side)
	}
	if contains(b.LegalMoves(), 0) {
		t.Fatalf("full column 0 still listed: %v", b.LegalMoves())
	}
	if contains(b.CentreOrderedMoves(), 0) {
		t.Fatalf("full column 0 still listed in centre order")
	}
}

func TestCentreOrderedMoves(t *testing.T) {
	b := NewBoard()
	want := []int{3, 2, 4, 1, 5, 0, 6}
	if got := b.CentreOrderedMoves(); !reflect.DeepEqual(got, want) {
		t.Fatalf("centre order = %v, want %v", got, want)
	}
	if got := b.LegalMoves(); !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4, 5, 6}) {
		t.Fatalf("natural order = %v", got)
	}
}

func TestPlayFullColumnPanics(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Rows; i++ {
		b.Play(5, Us)
	}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic on full column")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrColumnFull) {
			t.Fatalf("unexpected panic value %v", r)
		}
	}()
	b.Play(5, Them)
}

func TestIsWinAtDirections(t *testing.T) {
	tests := []struct {
		name     string
		cells    [][2]int
		checkRow int
		checkCol int
	}{
		{"horizontal", [][2]int{{5, 1}, {5, 2}, {5, 3}, {5, 4}}, 5, 2},
		{"vertical", [][2]int{{5, 6}, {4, 6}, {3, 6}, {2, 6}}, 2, 6},
		{"diagonal down-right", [][2]int{{2, 0}, {3, 1}, {4, 2}, {5, 3}}, 3, 1},
		{"diagonal up-right", [][2]int{{5, 3}, {4, 4}, {3, 5}, {2, 6}}, 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var grid [Rows][Columns]Side
			for _, cell := range tt.cells {
				grid[cell[0]][cell[1]] = Them
			}
			b := &Board{grid: grid}
			if !b.IsWinAt(tt.checkRow, tt.checkCol) {
				t.Fatalf("expected win through (%d,%d)", tt.checkRow, tt.checkCol)
			}
			// removing one disc breaks every line
			b.grid[tt.cells[0][0]][tt.cells[0][1]] = None
			if b.IsWinAt(tt.checkRow, tt.checkCol) {
				t.Fatalf("three discs must not count as a win")
			}
		})
	}
}

func TestIsWinAtMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 200; game++ {
		b := NewBoard()
		side := Us
		for !b.IsFull() {
			moves := b.LegalMoves()
			col := moves[rng.Intn(len(moves))]
			b.Play(col, side)
			side = side.Opponent()
			for r := 0; r < Rows; r++ {
				for c := 0; c < Columns; c++ {
					if got, want := b.IsWinAt(r, c), bruteForceWin(b, r, c); got != want {
						t.Fatalf("IsWinAt(%d,%d)=%v, brute force %v\n%s", r, c, got, want, b)
					}
				}
			}
			if _, _, ok := b.LastMove(); ok && b.IsTerminal() && !b.IsFull() {
				break
			}
		}
	}
}

// bruteForceWin scans every window containing (row, col).
func bruteForceWin(b *Board, row, col int) bool {
	side := b.At(row, col)
	if side == None {
		return false
	}
	dirs := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		for offset := -3; offset <= 0; offset++ {
			all := true
			for k := 0; k < ToWin; k++ {
				r, c := row+(offset+k)*d[0], col+(offset+k)*d[1]
				if r < 0 || r >= Rows || c < 0 || c >= Columns || b.At(r, c) != side {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	return false
}

func TestIsTerminal(t *testing.T) {
	b := NewBoard()
	if b.IsTerminal() {
		t.Fatalf("empty board is not terminal")
	}
	for c := 0; c < 3; c++ {
		b.Play(c, Us)
	}
	if b.IsTerminal() {
		t.Fatalf("three in a row is not terminal")
	}
	b.Play(3, Us)
	if !b.IsTerminal() {
		t.Fatalf("four in a row should be terminal")
	}
	b.Undo(3)
	if b.IsTerminal() {
		t.Fatalf("undo must clear the terminal state")
	}
}

func TestFullBoardIsTerminal(t *testing.T) {
	// column pattern that fills the board without four in a row
	b := NewBoard()
	order := []int{0, 1, 2, 3, 4, 5, 6}
	sides := [Columns][Rows]Side{}
	for c := 0; c < Columns; c++ {
		for r := 0; r < Rows; r++ {
			if ((r/2)+c)%2 == 0 {
				sides[c][r] = Us
			} else {
				sides[c][r] = Them
			}
		}
	}
	for r := 0; r < Rows; r++ {
		for _, c := range order {
			b.Play(c, sides[c][r])
		}
	}
	if !b.IsFull() || !b.IsTerminal() {
		t.Fatalf("full board should be terminal:\n%s", b)
	}
	if len(b.LegalMoves()) != 0 {
		t.Fatalf("full board has legal moves: %v", b.LegalMoves())
	}
}

func TestFromGridRejectsFloatingDiscs(t *testing.T) {
	var grid [Rows][Columns]Side
	grid[2][4] = Us
	if _, err := FromGrid(grid); !errors.Is(err, ErrFloatingDisc) {
		t.Fatalf("expected ErrFloatingDisc, got %v", err)
	}

	grid = [Rows][Columns]Side{}
	grid[5][4], grid[4][4], grid[5][0] = Us, Them, Them
	b, err := FromGrid(grid)
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}
	if b.Height(4) != 2 || b.Height(0) != 1 || b.Height(1) != 0 {
		t.Fatalf("unexpected heights %v", b.heights)
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	a, _ := FromMoves("4455")
	b, _ := FromMoves("5544")
	if a.Fingerprint() != b.Fingerprint() || a.Key() != b.Key() {
		t.Fatalf("transposed move orders must give the same fingerprint")
	}
	c, _ := FromMoves("4545")
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("different positions share a fingerprint")
	}
}

func TestFlipSwapsSides(t *testing.T) {
	b := NewBoard()
	b.Play(3, Us)
	b.Play(2, Them)
	b.Flip()
	if b.At(5, 3) != Them || b.At(5, 2) != Us {
		t.Fatalf("flip did not swap discs:\n%s", b)
	}
}

func contains(moves []int, col int) bool {
	for _, m := range moves {
		if m == col {
			return true
		}
	}
	return false
}
