package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"campus-soporte/config"
	"campus-soporte/core/utils"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{
		DBPath: filepath.Join(t.TempDir(), "soporte.db"),
	}
	logger := utils.NewLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}
