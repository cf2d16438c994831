package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/game"
)

// GetAdminSessions lists live sessions held by this instance
func GetAdminSessions(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := sm.List()
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions), "limits": sm.Limits()})
	}
}

// CloseAdminSession force-closes a session
func CloseAdminSession(db *sqlx.DB, sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.GetString("operator")
		id := c.Param("id")
		details := map[string]interface{}{"session_id": id}

		if err := sm.Close(id, game.StatusClosed); err != nil {
			admin.LogAdminAction(db, operator, c.ClientIP(), c.FullPath(), "close_session", details, false)
			respondError(c, err)
			return
		}

		log.Printf("[ADMIN] %s closed session %s", operator, id)
		admin.LogAdminAction(db, operator, c.ClientIP(), c.FullPath(), "close_session", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetAdminEpisodes returns persisted episodes across sessions
func GetAdminEpisodes(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		limit, offset := pagination(c)
		eps, err := admin.GetEpisodes(db, c.DefaultQuery("session_id", ""), limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch episodes: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch episodes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"episodes": eps, "limit": limit, "offset": offset})
	}
}
