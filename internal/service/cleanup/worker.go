package cleanup

import (
	"context"
	"time"

	"github.com/iamasit07/c4search/internal/service/game"
	"github.com/rs/zerolog"
)

// DefaultRetentionDays is how long finished games stay in the database.
const DefaultRetentionDays = 30

type GameJanitor interface {
	DeleteGamesOlderThan(ctx context.Context, olderThanDays int) (int64, error)
}

type Worker struct {
	SessionManager *game.SessionManager
	// Games may be nil when no database is configured.
	Games         GameJanitor
	Interval      time.Duration
	RetentionDays int
	log           zerolog.Logger
}

func NewWorker(sm *game.SessionManager, games GameJanitor, interval time.Duration, log zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Worker{
		SessionManager: sm,
		Games:          games,
		Interval:       interval,
		RetentionDays:  DefaultRetentionDays,
		log:            log,
	}
}

// Start runs one pass immediately and then one per interval until ctx ends.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.Interval).Msg("background worker started")
	w.runCleanup(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup(ctx)
		}
	}
}

// runCleanup executes the actual cleanup logic
func (w *Worker) runCleanup(ctx context.Context) {
	w.log.Debug().Msg("starting scheduled cleanup task")

	w.SessionManager.CleanupOldSessions(time.Now())

	if w.Games == nil {
		return
	}
	deleted, err := w.Games.DeleteGamesOlderThan(ctx, w.RetentionDays)
	if err != nil {
		w.log.Error().Err(err).Msg("error cleaning up stored games")
		return
	}
	if deleted > 0 {
		w.log.Info().Int64("deleted", deleted).Int("retention_days", w.RetentionDays).Msg("removed expired games from database")
	}
}
