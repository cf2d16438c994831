package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_episode_hits.up.sql",
		"000002_audit.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := findLatestMigrationVersion(dir); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := findLatestMigrationVersion(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing dir should give 0, got %d", got)
	}
}

func TestRepositoryMigrations(t *testing.T) {
	if got := findLatestMigrationVersion("../../migrations"); got < 1 {
		t.Errorf("expected at least one migration in ./migrations, got %d", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", ""); err == nil {
		t.Error("expected error for empty database URL")
	}
}
