package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SessionRecord is a persisted login session. Roles are stored as a JSON
// array so the policy check needs no join on every request.
type SessionRecord struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Roles      []string  `json:"roles"`
	CSRFToken  string    `json:"-"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type SessionStore interface {
	SaveSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	UpdateActivity(ctx context.Context, id string, now time.Time, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionsStore struct {
	db *sql.DB
}

func NewSessionsStore(db *sql.DB) SessionStore {
	return &sessionsStore{db: db}
}

func (s *sessionsStore) SaveSession(ctx context.Context, rec *SessionRecord) error {
	roles, err := json.Marshal(rec.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(id, user_id, username, roles, csrf_token, ip, user_agent, created_at, last_seen_at, expires_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, rec.Username, string(roles), rec.CSRFToken, rec.IP, rec.UserAgent,
		rec.CreatedAt, rec.LastSeenAt, rec.ExpiresAt)
	return err
}

// GetSession returns nil for unknown or expired sessions; expiry is enforced
// on read so the retention worker is not load-bearing.
func (s *sessionsStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, roles, csrf_token, ip, user_agent, created_at, last_seen_at, expires_at
		FROM sessions WHERE id = $1`, id)
	var rec SessionRecord
	var roles string
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Username, &roles, &rec.CSRFToken,
		&rec.IP, &rec.UserAgent, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		_ = s.DeleteSession(ctx, rec.ID)
		return nil, nil
	}
	if err := json.Unmarshal([]byte(roles), &rec.Roles); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *sessionsStore) UpdateActivity(ctx context.Context, id string, now time.Time, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = $1, expires_at = $2 WHERE id = $3`,
		now, now.Add(ttl), id)
	return err
}

func (s *sessionsStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (s *sessionsStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
