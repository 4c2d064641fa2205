package bot

import "time"

type BotDifficulty string

const (
	DifficultyEasy   BotDifficulty = "easy"
	DifficultyMedium BotDifficulty = "medium"
	DifficultyHard   BotDifficulty = "hard"
)

// ParseDifficulty validates and returns the bot difficulty
// Defaults to Medium if invalid or empty
func ParseDifficulty(difficulty string) BotDifficulty {
	switch difficulty {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Settings maps a difficulty onto engine settings. Hard keeps the caller's
// depth and time limit.
func (d BotDifficulty) Settings(maxDepth int, timeLimit time.Duration) Settings {
	switch d {
	case DifficultyEasy:
		return Settings{Algorithm: AlphaBeta, MaxDepth: 2}
	case DifficultyHard:
		return Settings{Algorithm: IterDeepMoveOrder, MaxDepth: maxDepth, TimeLimit: timeLimit}
	default:
		return Settings{Algorithm: IterDeepTT, MaxDepth: min(maxDepth, 6), TimeLimit: timeLimit}
	}
}
