package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameRecord is a finished human-vs-engine game.
type GameRecord struct {
	GameID          string    `json:"gameId"`
	PlayerName      string    `json:"playerName"`
	EngineName      string    `json:"engineName"`
	Algorithm       string    `json:"algorithm"`
	HumanPlayer     int       `json:"humanPlayer"`
	Winner          string    `json:"winner"`
	Reason          string    `json:"reason"`
	Moves           string    `json:"moves"`
	TotalMoves      int       `json:"totalMoves"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
	FinishedAt      time.Time `json:"finishedAt"`
	Board           [][]int   `json:"board,omitempty"`
}

// SaveGame upserts a finished game.
func (r *GameRepo) SaveGame(ctx context.Context, g GameRecord) error {
	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO game (game_id, player_name, engine_name, algorithm, human_player, winner, reason, moves, total_moves, duration_seconds, created_at, finished_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (game_id) DO UPDATE SET
		winner = EXCLUDED.winner,
		reason = EXCLUDED.reason,
		moves = EXCLUDED.moves,
		total_moves = EXCLUDED.total_moves,
		duration_seconds = EXCLUDED.duration_seconds,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state;
	`
	_, err = r.DB.ExecContext(ctx, query, g.GameID, g.PlayerName, g.EngineName, g.Algorithm, g.HumanPlayer,
		g.Winner, g.Reason, g.Moves, g.TotalMoves, g.DurationSeconds, g.CreatedAt, g.FinishedAt, boardJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}
	return nil
}

// GetRecentGames lists finished games, newest first, without board state.
func (r *GameRepo) GetRecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	query := `
	SELECT game_id, player_name, engine_name, algorithm, human_player, winner, reason,
	       moves, total_moves, duration_seconds, created_at, finished_at
	FROM game
	ORDER BY finished_at DESC
	LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	games := make([]GameRecord, 0, limit)
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.GameID, &g.PlayerName, &g.EngineName, &g.Algorithm, &g.HumanPlayer,
			&g.Winner, &g.Reason, &g.Moves, &g.TotalMoves, &g.DurationSeconds, &g.CreatedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGameByID returns nil, nil when the game does not exist.
func (r *GameRepo) GetGameByID(ctx context.Context, gameID string) (*GameRecord, error) {
	query := `
	SELECT game_id, player_name, engine_name, algorithm, human_player, winner, reason,
	       moves, total_moves, duration_seconds, created_at, finished_at, board_state
	FROM game
	WHERE game_id = $1;
	`
	var g GameRecord
	var boardJSON []byte
	err := r.DB.QueryRowContext(ctx, query, gameID).Scan(&g.GameID, &g.PlayerName, &g.EngineName, &g.Algorithm,
		&g.HumanPlayer, &g.Winner, &g.Reason, &g.Moves, &g.TotalMoves, &g.DurationSeconds, &g.CreatedAt, &g.FinishedAt, &boardJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	if boardJSON != nil {
		if err := json.Unmarshal(boardJSON, &g.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return &g, nil
}

// DeleteGamesOlderThan removes finished games past the retention window.
func (r *GameRepo) DeleteGamesOlderThan(ctx context.Context, olderThanDays int) (int64, error) {
	query := `DELETE FROM game WHERE finished_at < NOW() - INTERVAL '1 day' * $1;`
	result, err := r.DB.ExecContext(ctx, query, olderThanDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old games: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
