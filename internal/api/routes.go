package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/api/handlers"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/middleware"
	"github.com/playmatatu/pongenv/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config, sm *game.SessionManager, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	router.GET("/health", handlers.HealthCheck(sm))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sm))
		v1.GET("/spaces", handlers.GetSpaces(sm.Params()))
		v1.POST("/evaluate", handlers.Evaluate(sm.Params(), cfg))

		v1.POST("/sessions", handlers.CreateSession(sm, cfg))
		// Spectators authenticate with ?token= since browsers cannot set headers on upgrade
		v1.GET("/sessions/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.SpectateSession(sm, hub, cfg))

		session := v1.Group("/sessions/:id", handlers.SessionAuthMiddleware(cfg))
		{
			session.GET("", handlers.GetSession(sm))
			session.DELETE("", handlers.DeleteSession(sm))
			session.POST("/reset", handlers.ResetSession(sm))
			session.POST("/step", handlers.StepSession(sm))
			session.GET("/episodes", handlers.GetSessionEpisodes(db, sm))
		}

		v1.POST("/admin/login", handlers.AdminLogin(db, cfg))
		adm := v1.Group("/admin", handlers.AdminMiddleware(cfg))
		{
			adm.GET("/sessions", handlers.GetAdminSessions(sm))
			adm.DELETE("/sessions/:id", handlers.CloseAdminSession(db, sm))
			adm.GET("/episodes", handlers.GetAdminEpisodes(db))
			adm.GET("/audit", handlers.GetAdminAuditLogs(db))
			adm.GET("/config", handlers.GetAdminRuntimeConfig(db, sm))
			adm.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(db, cfg, sm))
		}
	}
}
