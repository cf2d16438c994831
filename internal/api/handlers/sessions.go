package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/pong"
)

// CreateSession starts a session and returns its bearer token
func CreateSession(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Seed  *int64 `json:"seed"`
			Label string `json:"label"`
		}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}
		if len(req.Label) > 128 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "label must be at most 128 characters"})
			return
		}

		view, obs, info, err := sm.Create(req.Seed, req.Label)
		if err != nil {
			respondError(c, err)
			return
		}

		token, exp, err := IssueSessionToken(cfg, view.ID)
		if err != nil {
			log.Printf("[SESSION] Failed to sign token for %s: %v", view.ID, err)
			sm.Close(view.ID, game.StatusClosed)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id":       view.ID,
			"token":            token,
			"token_expires_at": exp,
			"observation":      obs,
			"info":             info,
			"episode":          view.EpisodeIndex,
		})
	}
}

// ResetSession starts a new episode in the session
func ResetSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Seed        *int64 `json:"seed"`
			ClearScores bool   `json:"clear_scores"`
		}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		res, err := sm.Reset(c.Param("id"), req.Seed, req.ClearScores)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// StepSession applies one action
func StepSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Action *int `json:"action" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
			return
		}

		out, err := sm.Step(c.Param("id"), pong.Action(*req.Action))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetSession returns the session status and current snapshot
func GetSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := sm.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// DeleteSession closes the session
func DeleteSession(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sm.Close(c.Param("id"), game.StatusClosed); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetSessionEpisodes lists finished episodes, from the DB when configured
func GetSessionEpisodes(db *sqlx.DB, sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if db == nil {
			eps, err := sm.Episodes(id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"episodes": eps, "source": "memory"})
			return
		}

		limit, offset := pagination(c)
		eps, err := admin.GetEpisodes(db, id, limit, offset)
		if err != nil {
			log.Printf("[DB] Failed to fetch episodes for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch episodes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"episodes": eps, "source": "database", "limit": limit, "offset": offset})
	}
}
