package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/service/analysis"
	"github.com/rs/zerolog"
)

type MoveHandler struct {
	Analysis *analysis.Service
	log      zerolog.Logger
}

func NewMoveHandler(svc *analysis.Service, log zerolog.Logger) *MoveHandler {
	return &MoveHandler{Analysis: svc, log: log}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BestMove answers POST /api/move.
func (h *MoveHandler) BestMove(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), analysis.MaxTimeLimit+5*time.Second)
	defer cancel()

	res, err := h.Analysis.BestMove(ctx, req)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("move request failed")
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
