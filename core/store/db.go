package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"campus-soporte/config"
	"campus-soporte/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// NewDB opens the configured database. Postgres (via the pgx stdlib driver)
// is the production target; sqlite backs tests and single-box installs when
// db_path is set.
//
// Store queries use $N placeholders numbered in first-appearance order, which
// both drivers accept (sqlite binds $-named parameters by appearance index).
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := strings.TrimSpace(cfg.DBDriver)
	if cfg.DBPath != "" && driver != "postgres" {
		driver = "sqlite"
	}
	switch driver {
	case "", "postgres":
		db, err := sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
		logger.Printf("DB postgres open")
		return db, nil
	case "sqlite":
		dsn := cfg.DBPath
		if dsn == "" {
			dsn = "soporte.db"
		}
		db, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY races under the test runner.
		db.SetMaxOpenConns(1)
		logger.Printf("DB sqlite open path=%s", dsn)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}
