package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Session is the persistent record of one environment session
type Session struct {
	ID                int           `db:"id" json:"id"`
	SessionID         string        `db:"session_id" json:"session_id"`
	Label             string        `db:"label" json:"label,omitempty"`
	Seed              sql.NullInt64 `db:"seed" json:"seed,omitempty"`
	Status            string        `db:"status" json:"status"`
	EpisodesCompleted int           `db:"episodes_completed" json:"episodes_completed"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	LastActive        time.Time     `db:"last_active" json:"last_active"`
	ClosedAt          sql.NullTime  `db:"closed_at" json:"closed_at,omitempty"`
}

// Episode is a finished episode of a session
type Episode struct {
	ID           int           `db:"id" json:"id"`
	SessionID    string        `db:"session_id" json:"session_id"`
	EpisodeIndex int           `db:"episode_index" json:"episode_index"`
	Seed         sql.NullInt64 `db:"seed" json:"seed,omitempty"`
	Frames       int           `db:"frames" json:"frames"`
	TotalReward  float64       `db:"total_reward" json:"total_reward"`
	Outcome      string        `db:"outcome" json:"outcome"`
	PlayerScore  int           `db:"player_score" json:"player_score"`
	AIScore      int           `db:"ai_score" json:"ai_score"`
	PlayerHits   int           `db:"player_hits" json:"player_hits"`
	StartedAt    time.Time     `db:"started_at" json:"started_at"`
	EndedAt      time.Time     `db:"ended_at" json:"ended_at"`
}

// Operator is an account allowed to use the admin endpoints
type Operator struct {
	Name        string         `db:"name" json:"name"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit is one audited operator action
type AdminAudit struct {
	ID           int             `db:"id" json:"id"`
	OperatorName string          `db:"operator_name" json:"operator_name"`
	IP           sql.NullString  `db:"ip" json:"ip,omitempty"`
	Route        string          `db:"route" json:"route"`
	Action       string          `db:"action" json:"action"`
	Details      json.RawMessage `db:"details" json:"details"`
	Success      bool            `db:"success" json:"success"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RuntimeConfig is an operator-editable setting
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
