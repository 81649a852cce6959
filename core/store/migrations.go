package store

import (
	"context"
	"database/sql"
	"fmt"

	"campus-soporte/core/utils"
	"campus-soporte/db"

	"github.com/pressly/goose/v3"
)

// migrations is the sqlite schema used under the test runtime and for
// single-box installs. Postgres installs run the embedded goose migrations
// instead; keep both in sync when the schema changes.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		locked_until TIMESTAMP,
		last_login_at TIMESTAMP,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (user_id, role),
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL,
		roles TEXT NOT NULL,
		csrf_token TEXT NOT NULL,
		ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		last_seen_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reporters (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		usuario_id TEXT NOT NULL,
		usuario_nombre TEXT NOT NULL DEFAULT '',
		usuario_email TEXT NOT NULL DEFAULT '',
		sede TEXT NOT NULL,
		pabellon TEXT,
		tipo_actividad TEXT NOT NULL,
		ambiente_incidencia TEXT,
		tipo_incidencia TEXT,
		equipo_afectado TEXT,
		tiempo_aproximado TEXT NOT NULL,
		estado TEXT NOT NULL DEFAULT 'pendiente',
		prioridad TEXT NOT NULL DEFAULT 'media',
		fecha_hora TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_fecha ON incidents(fecha_hora);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_sede ON incidents(sede);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_usuario ON incidents(usuario_id);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);`,
	`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at);`,
}

func ApplyMigrations(ctx context.Context, database *sql.DB, logger *utils.Logger) error {
	isPG, err := isPostgresDB(ctx, database)
	if err != nil {
		return err
	}
	if isPG {
		return applyGooseMigrations(ctx, database, logger)
	}
	return applySQLiteMigrations(ctx, database, logger)
}

func isPostgresDB(ctx context.Context, database *sql.DB) (bool, error) {
	var version string
	if err := database.QueryRowContext(ctx, `SELECT version()`).Scan(&version); err != nil {
		// sqlite has no version() builtin with that signature under modernc;
		// probe its own pragma instead.
		var v string
		if err2 := database.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&v); err2 == nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func applyGooseMigrations(ctx context.Context, database *sql.DB, logger *utils.Logger) error {
	goose.SetBaseFS(db.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	logger.Printf("postgres migrations applied")
	return nil
}

func applySQLiteMigrations(ctx context.Context, database *sql.DB, logger *utils.Logger) error {
	for i, stmt := range migrations {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migration #%d failed: %w", i+1, err)
		}
	}
	logger.Printf("sqlite migrations applied")
	return nil
}
