package domain

// Game referees a full match between Player1 and Player2. Its board is kept
// in the absolute frame: Player1 discs are Us, Player2 discs are Them.
type Game struct {
	board         *Board
	CurrentPlayer PlayerID
	Status        GameStatus
	Winner        PlayerID
	MoveCount     int
	Moves         []int
}

func NewGame() *Game {
	return &Game{
		board:         NewBoard(),
		CurrentPlayer: Player1,
		Status:        StatusActive,
		Winner:        Empty,
	}
}

func (g *Game) MakeMove(player PlayerID, column int) (int, error) {
	if g.Status != StatusActive {
		return -1, ErrGameOver
	}
	if player != g.CurrentPlayer {
		return -1, ErrNotYourTurn
	}
	if err := ValidateMove(g.board, column); err != nil {
		return -1, err
	}

	row := g.board.Play(column, sideOf(player))
	g.MoveCount++
	g.Moves = append(g.Moves, column)

	if winner, won := CheckWin(g.board, row, column); won {
		g.Status = StatusWon
		g.Winner = winner
		return row, nil
	}

	if g.board.IsFull() {
		g.Status = StatusDraw
		return row, nil
	}

	g.CurrentPlayer = g.CurrentPlayer.Opponent()
	return row, nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusWon || g.Status == StatusDraw
}

// LegalMask marks the columns the referee would accept.
func (g *Game) LegalMask() [Columns]bool {
	var mask [Columns]bool
	if g.IsFinished() {
		return mask
	}
	for c := 0; c < Columns; c++ {
		mask[c] = g.board.IsLegal(c)
	}
	return mask
}

// Cells returns the board with 0 for empty, 1 and 2 for the players.
func (g *Game) Cells() [][]int {
	out := make([][]int, Rows)
	for r := range out {
		out[r] = make([]int, Columns)
		for c := 0; c < Columns; c++ {
			out[r][c] = int(playerOf(g.board.At(r, c)))
		}
	}
	return out
}

// String renders the board with X for Player1 and O for Player2.
func (g *Game) String() string {
	return g.board.String()
}
