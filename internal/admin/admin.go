package admin

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/pongenv/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrIPNotAllowed     = errors.New("ip not allowed")
)

// GetOperator retrieves an operator account by name
func GetOperator(db *sqlx.DB, name string) (*models.Operator, error) {
	var op models.Operator
	err := db.Get(&op, `SELECT name, display_name, token_hash, roles, allowed_ips, created_at, updated_at FROM operators WHERE name=$1`, name)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// HashToken returns the bcrypt hash stored for an operator token
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// VerifyToken checks if the provided token matches the stored hash
func VerifyToken(hashedToken, plainToken string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken)) == nil
}

// IPAllowed reports whether ip may use the operator account. An empty
// allow-list permits every address.
func IPAllowed(op *models.Operator, ip string) bool {
	if len(op.AllowedIPs) == 0 {
		return true
	}
	for _, allowed := range op.AllowedIPs {
		if allowed == ip {
			return true
		}
	}
	return false
}

// HasRole reports whether the operator carries role
func HasRole(op *models.Operator, role string) bool {
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UpsertOperator creates or replaces an operator account (used for seeding)
func UpsertOperator(db *sqlx.DB, name, displayName, plainToken string, roles, allowedIPs []string) error {
	hashedToken, err := HashToken(plainToken)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO operators (name, display_name, token_hash, roles, allowed_ips, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			allowed_ips = EXCLUDED.allowed_ips,
			updated_at = NOW()
	`, name, displayName, hashedToken, pq.Array(roles), pq.Array(allowedIPs))

	return err
}

// ValidateOperator checks a name + token pair and the caller's IP
func ValidateOperator(db *sqlx.DB, name, token, ip string) (*models.Operator, error) {
	op, err := GetOperator(db, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[ADMIN] No operator account found for: %s", name)
			return nil, ErrOperatorNotFound
		}
		log.Printf("[ADMIN] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyToken(op.TokenHash, token) {
		log.Printf("[ADMIN] Token verification failed for: %s", name)
		return nil, ErrInvalidToken
	}
	if !IPAllowed(op, ip) {
		log.Printf("[ADMIN] Operator %s not allowed from %s", name, ip)
		return nil, ErrIPNotAllowed
	}
	return op, nil
}

// LogAdminAction records an operator action in the audit log
func LogAdminAction(db *sqlx.DB, operator, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return nil
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("[ADMIN] Failed to marshal audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (operator_name, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, operator, ip, route, action, string(detailsJSON), success)

	if err != nil {
		log.Printf("[ADMIN] Failed to log admin action: %v", err)
	}

	return err
}

// GetAuditLogs retrieves recent audit entries, optionally for one operator
func GetAuditLogs(db *sqlx.DB, operator string, limit, offset int) ([]models.AdminAudit, error) {
	var logs []models.AdminAudit
	err := db.Select(&logs, `
		SELECT id, operator_name, ip, route, action, details, success, created_at
		FROM admin_audit
		WHERE ($1 = '' OR operator_name = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, operator, limit, offset)
	return logs, err
}

// GetEpisodes retrieves recent persisted episodes, optionally for one session
func GetEpisodes(db *sqlx.DB, sessionID string, limit, offset int) ([]models.Episode, error) {
	var eps []models.Episode
	err := db.Select(&eps, `
		SELECT id, session_id, episode_index, seed, frames, total_reward, outcome, player_score, ai_score, player_hits, started_at, ended_at
		FROM episodes
		WHERE ($1 = '' OR session_id = $1)
		ORDER BY ended_at DESC
		LIMIT $2 OFFSET $3
	`, sessionID, limit, offset)
	return eps, err
}
