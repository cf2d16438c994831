package admin

import (
	"testing"

	"github.com/playmatatu/pongenv/internal/config"
	"github.com/playmatatu/pongenv/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenHashRoundTrip(t *testing.T) {
	// MinCost keeps the test fast; HashToken uses DefaultCost.
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyToken(string(hash), "s3cret") {
		t.Error("expected token to verify")
	}
	if VerifyToken(string(hash), "wrong") {
		t.Error("wrong token verified")
	}
}

func TestIPAllowedAndRoles(t *testing.T) {
	op := &models.Operator{Name: "ops", Roles: []string{"admin"}}
	if !IPAllowed(op, "10.0.0.1") {
		t.Error("empty allow-list should allow all")
	}
	op.AllowedIPs = []string{"127.0.0.1"}
	if IPAllowed(op, "10.0.0.1") || !IPAllowed(op, "127.0.0.1") {
		t.Error("allow-list not honoured")
	}
	if !HasRole(op, "admin") || HasRole(op, "viewer") {
		t.Error("role check wrong")
	}
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		typ, value string
		ok         bool
	}{
		{"int", "12", true},
		{"int", "-1", false},
		{"int", "x", false},
		{"float", "0.5", true},
		{"float", "nan?", false},
		{"bool", "true", true},
		{"bool", "yes", false},
		{"string", "anything", true},
	}
	for _, tt := range tests {
		err := ValidateValue(tt.typ, tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateValue(%q, %q) = %v, want ok=%v", tt.typ, tt.value, err, tt.ok)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{MaxSessions: 10, SessionIdleSeconds: 600}
	n := ApplyOverrides([]models.RuntimeConfig{
		{Key: "max_sessions", Value: "3"},
		{Key: "max_episode_frames", Value: "2500"},
		{Key: "session_idle_seconds", Value: "bogus"},
		{Key: "unknown_key", Value: "1"},
	}, cfg)

	if n != 2 {
		t.Errorf("expected 2 overrides, got %d", n)
	}
	if cfg.MaxSessions != 3 || cfg.MaxEpisodeFrames != 2500 || cfg.SessionIdleSeconds != 600 {
		t.Errorf("unexpected config %+v", cfg)
	}
	l := LimitsFromConfig(cfg)
	if l.MaxSessions != 3 || l.MaxEpisodeFrames != 2500 || l.SessionIdleSeconds != 600 {
		t.Errorf("unexpected limits %+v", l)
	}
}
