package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type BenchRepo struct {
	DB *sql.DB
}

func NewBenchRepo(db *sql.DB) *BenchRepo {
	return &BenchRepo{DB: db}
}

// BenchRecord is one (state, algorithm, depth) measurement.
type BenchRecord struct {
	State        string
	Algorithm    string
	Depth        int
	Move         int
	Score        int
	Nodes        int64
	ElapsedMs    float64
	PrunePercent float64
}

// SaveResults writes a whole run in one transaction.
func (r *BenchRepo) SaveResults(ctx context.Context, runID string, records []BenchRecord) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO bench_result (run_id, state, algorithm, depth, move, score, nodes, elapsed_ms, prune_percent)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, runID, rec.State, rec.Algorithm, rec.Depth, rec.Move,
			rec.Score, rec.Nodes, rec.ElapsedMs, rec.PrunePercent); err != nil {
			return fmt.Errorf("failed to insert bench result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
