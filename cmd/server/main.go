package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/playmatatu/pongenv/internal/admin"
	"github.com/playmatatu/pongenv/internal/api"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/database"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/migrations"
	"github.com/playmatatu/pongenv/internal/redis"
	"github.com/playmatatu/pongenv/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	params, err := config.LoadPhysics(cfg.PhysicsConfigPath)
	if err != nil {
		log.Fatalf("Invalid physics config %s: %v", cfg.PhysicsConfigPath, err)
	}
	log.Printf("[CONFIG] Physics: %.0fx%.0f screen, ball %.1f..%.1f px/frame",
		params.ScreenWidth, params.ScreenHeight, params.BallInitialSpeed, params.MaxBallSpeed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence is optional: the simulation runs without it
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
	} else {
		log.Println("[DB] DATABASE_URL not set; sessions will not be persisted")
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
	} else {
		log.Println("[REDIS] REDIS_URL not set; events stay in-process")
	}

	game.InitializeManager(db, rdb, cfg, params)
	sm := game.Manager

	if db != nil {
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg, sm); err != nil {
			log.Printf("[CONFIG] Warning: failed to apply runtime config: %v", err)
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)
	ws.Attach(ctx, hub, sm, rdb)

	game.StartIdleWorker(ctx, sm, rdb, cfg.IdleWorkerPollInterval)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, cfg, sm, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting pongenv server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
