package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/playmatatu/pongenv/internal/config"
)

const (
	claimSessionID = "session_id"
	claimOperator  = "operator"
	claimRole      = "role"
	roleAdmin      = "admin"

	defaultSessionTokenTTL = time.Hour
	adminTokenTTL          = 4 * time.Hour
)

var errInvalidToken = errors.New("invalid token")

// signToken signs claims with the configured HS256 secret
func signToken(cfg *config.Config, claims jwt.MapClaims, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims["exp"] = jwt.NewNumericDate(exp).Unix()
	claims["iat"] = time.Now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueSessionToken returns a bearer token scoped to one session
func IssueSessionToken(cfg *config.Config, sessionID string) (string, time.Time, error) {
	ttl := time.Duration(cfg.SessionTokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultSessionTokenTTL
	}
	return signToken(cfg, jwt.MapClaims{claimSessionID: sessionID}, ttl)
}

// IssueAdminToken returns a bearer token for an operator
func IssueAdminToken(cfg *config.Config, operator string) (string, time.Time, error) {
	return signToken(cfg, jwt.MapClaims{claimOperator: operator, claimRole: roleAdmin}, adminTokenTTL)
}

// parseToken validates an HS256 token and returns its claims
func parseToken(cfg *config.Config, token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// canAccessSession reports whether claims grant access to sessionID.
// Operators may access any session.
func canAccessSession(claims jwt.MapClaims, sessionID string) bool {
	if role, _ := claims[claimRole].(string); role == roleAdmin {
		return true
	}
	sid, _ := claims[claimSessionID].(string)
	return sid != "" && sid == sessionID
}

// SessionAuthMiddleware requires a bearer token whose session_id claim
// matches the :id route parameter
func SessionAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := parseToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !canAccessSession(claims, c.Param("id")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token not valid for this session"})
			return
		}
		c.Set("session_id", c.Param("id"))
		c.Next()
	}
}

// AdminMiddleware requires an operator bearer token and sets operator in context
func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := parseToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		role, _ := claims[claimRole].(string)
		operator, _ := claims[claimOperator].(string)
		if role != roleAdmin || operator == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Set("operator", operator)
		c.Next()
	}
}
