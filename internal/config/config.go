package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Session Settings
	MaxSessions            int
	MaxEpisodeFrames       int // 0 disables session-level truncation
	SessionIdleSeconds     int
	IdleWorkerPollInterval time.Duration
	SnapshotTTLSeconds     int

	// Physics
	PhysicsConfigPath string

	// Evaluation
	EvalMaxEpisodes int

	// Security
	JWTSecret              string
	SessionTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/pongenv?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Session Settings
		MaxSessions:            getEnvInt("MAX_SESSIONS", 256),
		MaxEpisodeFrames:       getEnvInt("MAX_EPISODE_FRAMES", 0),
		SessionIdleSeconds:     getEnvInt("SESSION_IDLE_SECONDS", 600),
		IdleWorkerPollInterval: getEnvDuration("IDLE_WORKER_POLL_INTERVAL", 5*time.Second),
		SnapshotTTLSeconds:     getEnvInt("SNAPSHOT_TTL_SECONDS", 3600),

		// Physics
		PhysicsConfigPath: getEnv("PHYSICS_CONFIG_PATH", "physics.yaml"),

		// Evaluation
		EvalMaxEpisodes: getEnvInt("EVAL_MAX_EPISODES", 1000),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenTTLMinutes: getEnvInt("SESSION_TOKEN_TTL_MINUTES", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("5s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
