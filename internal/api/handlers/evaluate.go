package handlers

import (
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/pong"
	"github.com/playmatatu/pongenv/internal/rollout"
)

// Evaluate runs a scripted policy over many seeded episodes
func Evaluate(params pong.Params, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Policy    string `json:"policy"`
			Episodes  int    `json:"episodes" binding:"required,min=1"`
			Workers   int    `json:"workers"`
			Seed      int64  `json:"seed"`
			MaxFrames int    `json:"max_frames"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "episodes (>= 1) is required"})
			return
		}
		if cfg.EvalMaxEpisodes > 0 && req.Episodes > cfg.EvalMaxEpisodes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many episodes", "max_episodes": cfg.EvalMaxEpisodes})
			return
		}

		factory, err := rollout.PolicyByName(req.Policy, params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		workers := req.Workers
		if workers <= 0 || workers > runtime.NumCPU() {
			workers = runtime.NumCPU()
		}

		start := time.Now()
		report, err := rollout.Run(c.Request.Context(), params, factory, rollout.Options{
			Episodes:  req.Episodes,
			Workers:   workers,
			Seed:      req.Seed,
			MaxFrames: req.MaxFrames,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		log.Printf("[EVAL] policy=%s episodes=%d workers=%d seed=%d took=%s win_rate=%.3f",
			req.Policy, req.Episodes, workers, req.Seed, time.Since(start), report.PlayerWinRate)
		c.JSON(http.StatusOK, gin.H{"policy": req.Policy, "seed": req.Seed, "report": report})
	}
}
