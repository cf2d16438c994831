package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/config"
)

// AdminLogin validates an operator name + token and issues an admin JWT
func AdminLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireDB(c, db) {
			return
		}
		var req struct {
			Name  string `json:"name" binding:"required"`
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		name := strings.TrimSpace(req.Name)
		route := c.FullPath()

		op, err := admin.ValidateOperator(db, name, strings.TrimSpace(req.Token), c.ClientIP())
		if err != nil {
			log.Printf("[ADMIN] Login failed for %s: %v", name, err)
			admin.LogAdminAction(db, name, c.ClientIP(), route, "login", map[string]interface{}{"reason": err.Error()}, false)
			status := http.StatusUnauthorized
			if errors.Is(err, admin.ErrIPNotAllowed) {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": "Invalid credentials"})
			return
		}
		if !admin.HasRole(op, "admin") {
			admin.LogAdminAction(db, name, c.ClientIP(), route, "login", map[string]interface{}{"reason": "missing admin role"}, false)
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		token, exp, err := IssueAdminToken(cfg, op.Name)
		if err != nil {
			log.Printf("[ADMIN] Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(db, op.Name, c.ClientIP(), route, "login", nil, true)
		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": exp,
			"operator":   gin.H{"name": op.Name, "display_name": op.DisplayName, "roles": op.Roles},
		})
	}
}
