package store

import (
	"context"
	"database/sql"
	"time"
)

type AuditEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditStore interface {
	// Log never fails the surrounding operation: write errors are swallowed.
	Log(ctx context.Context, username, action, details string)
	List(ctx context.Context, limit int) ([]AuditEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) AuditStore {
	return &auditStore{db: db}
}

func (s *auditStore) Log(ctx context.Context, username, action, details string) {
	_, _ = s.db.ExecContext(ctx, `
		INSERT INTO audit_log(username, action, details, created_at)
		VALUES($1, $2, $3, $4)`,
		username, action, details, time.Now().UTC())
}

func (s *auditStore) List(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, action, details, created_at
		FROM audit_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Details = details.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *auditStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
