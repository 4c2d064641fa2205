package domain

// BotNames maps each difficulty to the display name of the engine playing it.
var BotNames = map[string]string{
	"easy":   "Alice",
	"medium": "Bob",
	"hard":   "Charles",
}

func GetBotName(difficulty string) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

// PlayerID identifies a seat in a refereed game (absolute colours).
type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Side is a disc in the search board's local frame: the side to move at the
// search root is always Us.
type Side int8

const (
	None Side = 0
	Us   Side = 1
	Them Side = -1
)

func (s Side) Opponent() Side {
	return -s
}

func (s Side) Symbol() byte {
	switch s {
	case Us:
		return 'X'
	case Them:
		return 'O'
	default:
		return '.'
	}
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4

	// NoMove marks the absence of a column.
	NoMove = -1
)

// to represent the game status
type GameStatus string

const (
	StatusActive GameStatus = "active"
	StatusWon    GameStatus = "won"
	StatusDraw   GameStatus = "draw"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove    Error = "invalid move"
	ErrColumnFull     Error = "column is full"
	ErrInvalidColumn  Error = "column out of range"
	ErrGameOver       Error = "game is already finished"
	ErrNotYourTurn    Error = "not your turn"
	ErrBadObservation Error = "malformed observation"
	ErrBadMoveString  Error = "malformed move string"
	ErrFloatingDisc   Error = "disc placed above an empty cell"
	ErrBadGrid        Error = "malformed grid"
	ErrBadRequest     Error = "invalid request"
)
