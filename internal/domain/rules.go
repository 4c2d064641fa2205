package domain

// sideOf maps a seat onto the absolute board frame used by Game, where
// Player1 owns the positive discs.
func sideOf(p PlayerID) Side {
	switch p {
	case Player1:
		return Us
	case Player2:
		return Them
	default:
		return None
	}
}

func playerOf(s Side) PlayerID {
	switch s {
	case Us:
		return Player1
	case Them:
		return Player2
	default:
		return Empty
	}
}

// ValidateMove checks a column against the board without panicking, for
// callers that receive columns from outside.
func ValidateMove(b *Board, column int) error {
	if column < 0 || column >= Columns {
		return ErrInvalidColumn
	}
	if b.Height(column) >= Rows {
		return ErrColumnFull
	}
	return nil
}

// CheckWin reports whether the disc just placed at (row, column) won the game
// for its owner.
func CheckWin(b *Board, row, column int) (PlayerID, bool) {
	if !b.IsWinAt(row, column) {
		return Empty, false
	}
	return playerOf(b.At(row, column)), true
}
