package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GameStore is the read side of postgres.GameRepo.
type GameStore interface {
	GetRecentGames(ctx context.Context, limit int) ([]postgres.GameRecord, error)
	GetGameByID(ctx context.Context, gameID string) (*postgres.GameRecord, error)
}

type HistoryHandler struct {
	Games GameStore
	log   zerolog.Logger
}

// NewHistoryHandler accepts a nil store; the routes then answer 503.
func NewHistoryHandler(games GameStore, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{Games: games, log: log}
}

func (h *HistoryHandler) available(c *gin.Context) bool {
	if h.Games == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game history is not configured"})
		return false
	}
	return true
}

// GetHistory lists recently finished games, newest first.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if !h.available(c) {
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	games, err := h.Games.GetRecentGames(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if games == nil {
		games = []postgres.GameRecord{}
	}
	c.JSON(http.StatusOK, games)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	if !h.available(c) {
		return
	}

	game, err := h.Games.GetGameByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Str("game_id", c.Param("id")).Msg("failed to fetch game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, game)
}
