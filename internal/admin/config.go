package admin

import (
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/game"
	"github.com/playmatatu/pongenv/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	var configs []models.RuntimeConfig
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateValue checks value against a runtime config type
func ValidateValue(valueType, value string) error {
	switch valueType {
	case "int":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if v < 0 {
			return fmt.Errorf("value must be >= 0: %s", value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, operator string) error {
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := ValidateValue(existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, operator, key)
	return err
}

// ApplyOverrides copies recognised runtime config entries onto cfg and
// returns the number applied
func ApplyOverrides(configs []models.RuntimeConfig, cfg *config.Config) int {
	applied := 0
	for _, c := range configs {
		v, err := strconv.Atoi(c.Value)
		if err != nil {
			continue
		}
		switch c.Key {
		case "max_sessions":
			cfg.MaxSessions = v
		case "session_idle_seconds":
			cfg.SessionIdleSeconds = v
		case "max_episode_frames":
			cfg.MaxEpisodeFrames = v
		default:
			continue
		}
		applied++
	}
	return applied
}

// ApplyRuntimeConfigToConfig loads runtime config from DB, applies overrides
// to cfg and pushes the resulting limits into the session manager
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config, sm *game.SessionManager) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		return err
	}

	n := ApplyOverrides(configs, cfg)
	if sm != nil {
		sm.SetLimits(LimitsFromConfig(cfg))
	}

	log.Printf("[CONFIG] Applied %d runtime config overrides from database", n)
	return nil
}

// LimitsFromConfig extracts the session limits from cfg
func LimitsFromConfig(cfg *config.Config) game.Limits {
	return game.Limits{
		MaxSessions:        cfg.MaxSessions,
		MaxEpisodeFrames:   cfg.MaxEpisodeFrames,
		SessionIdleSeconds: cfg.SessionIdleSeconds,
	}
}
