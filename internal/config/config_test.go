package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playmatatu/pongenv/internal/pong"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MAX_SESSIONS", "MAX_EPISODE_FRAMES", "IDLE_WORKER_POLL_INTERVAL", "MIGRATE_ON_START"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.MaxSessions != 256 {
		t.Errorf("MaxSessions: got %d", cfg.MaxSessions)
	}
	if cfg.MaxEpisodeFrames != 0 {
		t.Errorf("MaxEpisodeFrames: got %d", cfg.MaxEpisodeFrames)
	}
	if cfg.IdleWorkerPollInterval != 5*time.Second {
		t.Errorf("IdleWorkerPollInterval: got %v", cfg.IdleWorkerPollInterval)
	}
	if !cfg.MigrateOnStart {
		t.Error("MigrateOnStart should default to true")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "12")
	t.Setenv("MAX_EPISODE_FRAMES", "3000")
	t.Setenv("IDLE_WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("SESSION_IDLE_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.MaxSessions != 12 || cfg.MaxEpisodeFrames != 3000 {
		t.Errorf("ints not read: %+v", cfg)
	}
	if cfg.IdleWorkerPollInterval != 250*time.Millisecond {
		t.Errorf("duration: got %v", cfg.IdleWorkerPollInterval)
	}
	if cfg.MigrateOnStart {
		t.Error("MigrateOnStart should be false")
	}
	if cfg.SessionIdleSeconds != 600 {
		t.Errorf("bad int should fall back to default, got %d", cfg.SessionIdleSeconds)
	}
}

func TestDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("IDLE_WORKER_POLL_INTERVAL", "7")
	if got := getEnvDuration("IDLE_WORKER_POLL_INTERVAL", time.Second); got != 7*time.Second {
		t.Errorf("got %v", got)
	}
}

func TestLoadPhysicsMissingFile(t *testing.T) {
	params, err := LoadPhysics(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if params != pong.DefaultParams() {
		t.Errorf("expected defaults, got %+v", params)
	}
}

func TestLoadPhysicsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	doc := `
screen:
  width: 1000
paddle:
  speed: 9
ball:
  max_speed: 24
opponent:
  speed: 6.5
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	params, err := LoadPhysics(path)
	if err != nil {
		t.Fatalf("LoadPhysics: %v", err)
	}
	want := pong.DefaultParams()
	want.ScreenWidth = 1000
	want.PlayerSpeed = 9
	want.MaxBallSpeed = 24
	want.OpponentSpeed = 6.5
	if params != want {
		t.Errorf("got %+v\nwant %+v", params, want)
	}
}

func TestParsePhysicsRejectsInvalid(t *testing.T) {
	doc := `
ball:
  size: 0
  initial_speed: 30
`
	_, err := ParsePhysics([]byte(doc))
	if !errors.Is(err, pong.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	for _, want := range []string{"ball_size", "ball_initial_speed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestParsePhysicsBadYAML(t *testing.T) {
	if _, err := ParsePhysics([]byte("screen: [1, 2")); err == nil {
		t.Error("expected parse error")
	}
}
