package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("db driver = %q", cfg.DBDriver)
	}
	if cfg.ListenAddr != "0.0.0.0:8080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Schedule.StartHour != 7 || cfg.Schedule.EndHour != 22 {
		t.Fatalf("schedule defaults = %+v", cfg.Schedule)
	}
	if cfg.Admin.Username != "admin" {
		t.Fatalf("admin username = %q", cfg.Admin.Username)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte("db_driver: sqlite\ndb_path: /tmp/x.db\nsession_ttl: 2h\nadmin:\n  username: jefa\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBPath != "/tmp/x.db" {
		t.Fatalf("db config = %q %q", cfg.DBDriver, cfg.DBPath)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("ttl = %v", cfg.SessionTTL)
	}
	if cfg.Admin.Username != "jefa" {
		t.Fatalf("admin = %q", cfg.Admin.Username)
	}
}

func TestEffectiveSessionTTLCap(t *testing.T) {
	cfg := &AppConfig{SessionTTL: 48 * time.Hour}
	if got := cfg.EffectiveSessionTTL(); got != 12*time.Hour {
		t.Fatalf("ttl = %v", got)
	}
	cfg.SessionTTL = 0
	if got := cfg.EffectiveSessionTTL(); got != 3*time.Hour {
		t.Fatalf("default ttl = %v", got)
	}
}
