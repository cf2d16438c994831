package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/ws"
)

// SpectateSession streams a session's snapshots and events over a websocket.
// The token query parameter must grant access to the session.
func SpectateSession(sm *game.SessionManager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := parseToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !canAccessSession(claims, id) {
			c.JSON(http.StatusForbidden, gin.H{"error": "token not valid for this session"})
			return
		}

		snap, err := sm.Snapshot(id)
		if err != nil {
			respondError(c, err)
			return
		}

		initial := gin.H{"type": "snapshot", "session_id": id, "snapshot": snap}
		if err := hub.Serve(c.Writer, c.Request, id, initial); err != nil {
			log.Printf("[WS] Upgrade error for %s: %v", id, err)
		}
	}
}
