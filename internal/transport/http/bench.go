package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/service/bench"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/iamasit07/c4search/pkg/uid"
	"github.com/rs/zerolog"
)

const (
	maxBenchStates = 100
	// minimax is exhaustive, deeper runs do not finish in a request
	maxBenchDepth = 8
)

// BenchStore is the write side of postgres.BenchRepo.
type BenchStore interface {
	SaveResults(ctx context.Context, runID string, records []postgres.BenchRecord) error
}

type BenchHandler struct {
	Store  BenchStore
	TTSize int
	log    zerolog.Logger
}

// NewBenchHandler accepts a nil store; results are then only returned.
func NewBenchHandler(store BenchStore, ttSize int, log zerolog.Logger) *BenchHandler {
	return &BenchHandler{Store: store, TTSize: ttSize, log: log}
}

type benchRequest struct {
	States     []string `json:"states" binding:"required"`
	Algorithms []string `json:"algorithms"`
	Depths     []int    `json:"depths" binding:"required"`
}

type benchResponse struct {
	RunID   string          `json:"runId"`
	Saved   bool            `json:"saved"`
	Results []bench.Result  `json:"results"`
	Summary []bench.Summary `json:"summary"`
}

// Run measures the requested presets on the given move-string states.
func (h *BenchHandler) Run(c *gin.Context) {
	var req benchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	cfg, err := h.config(req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := bench.NewRunner(cfg, h.log).Run(c.Request.Context(), req.States)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := benchResponse{
		RunID:   uid.GenerateGameID(),
		Results: results,
		Summary: bench.Summarize(results),
	}
	if h.Store != nil {
		if err := h.Store.SaveResults(c.Request.Context(), resp.RunID, bench.Records(results)); err != nil {
			h.log.Error().Err(err).Str("run_id", resp.RunID).Msg("failed to save bench run")
		} else {
			resp.Saved = true
		}
	}

	h.log.Info().
		Str("run_id", resp.RunID).
		Str("subject", c.GetString("subject")).
		Int("results", len(results)).
		Msg("bench run served")
	c.JSON(http.StatusOK, resp)
}

func (h *BenchHandler) config(req benchRequest) (bench.Config, error) {
	if len(req.States) == 0 || len(req.States) > maxBenchStates {
		return bench.Config{}, fmt.Errorf("between 1 and %d states: %w", maxBenchStates, domain.ErrBadRequest)
	}
	for _, d := range req.Depths {
		if d < 1 || d > maxBenchDepth {
			return bench.Config{}, fmt.Errorf("depth %d outside 1..%d: %w", d, maxBenchDepth, domain.ErrBadRequest)
		}
	}

	var algs []bot.Algorithm
	for _, name := range req.Algorithms {
		alg, err := bot.ParseAlgorithm(name)
		if err != nil {
			return bench.Config{}, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
		}
		algs = append(algs, alg)
	}

	return bench.Config{Algorithms: algs, Depths: req.Depths, TTSize: h.TTSize}, nil
}
