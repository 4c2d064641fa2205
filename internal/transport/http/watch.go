package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/service/game"
)

type WatchHandler struct {
	SessionManager *game.SessionManager
}

func NewWatchHandler(sm *game.SessionManager) *WatchHandler {
	return &WatchHandler{SessionManager: sm}
}

// GetLiveGames lists the games currently being played against the engine.
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.SessionManager.GetActiveGames())
}
