package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/pong"
)

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	var invalid *pong.InvalidActionError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pong.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pong.ErrEpisodeTerminated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, game.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Session closed"})
	case errors.Is(err, game.ErrSessionLimit):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Session limit reached"})
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pagination reads limit/offset query params, capping limit at 200
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 25
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// requireDB aborts with 503 when persistence is not configured
func requireDB(c *gin.Context, db *sqlx.DB) bool {
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not configured"})
		return false
	}
	return true
}
