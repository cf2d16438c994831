package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
)

// GetAdminRuntimeConfig returns all runtime config entries and the limits in effect
func GetAdminRuntimeConfig(db *sqlx.DB, sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"configs": configs, "effective": sm.Limits()})
	}
}

// UpdateAdminRuntimeConfig updates a single runtime config value and applies it
func UpdateAdminRuntimeConfig(db *sqlx.DB, cfg *config.Config, sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		operator := c.GetString("operator")
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		details := map[string]interface{}{"key": key, "value": req.Value}
		if err := admin.UpdateRuntimeConfigValue(db, key, req.Value, operator); err != nil {
			log.Printf("[ADMIN] Failed to update config %s: %v", key, err)
			admin.LogAdminAction(db, operator, c.ClientIP(), c.FullPath(), "update_config", details, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Re-apply runtime config to in-memory config and the session manager
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg, sm); err != nil {
			log.Printf("[ADMIN] Warning: failed to apply runtime config: %v", err)
		}

		admin.LogAdminAction(db, operator, c.ClientIP(), c.FullPath(), "update_config", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "effective": sm.Limits()})
	}
}
