package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User is an admin-panel account.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	FullName       string     `json:"full_name,omitempty"`
	PasswordHash   string     `json:"-"`
	Salt           string     `json:"-"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type UsersStore interface {
	Create(ctx context.Context, u *User, roles []string) (int64, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash, salt string) error
	SetActive(ctx context.Context, id int64, active bool) error
	FindByUsername(ctx context.Context, username string) (*User, []string, error)
	Get(ctx context.Context, id int64) (*User, []string, error)
	List(ctx context.Context) ([]User, error)
	Roles(ctx context.Context, id int64) ([]string, error)
	SetRoles(ctx context.Context, id int64, roles []string) error
	Count(ctx context.Context) (int, error)
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, salt,
	failed_attempts, locked_until, last_login_at, active, created_at, updated_at`

// ErrDuplicateUsername signals a username that is already taken.
var ErrDuplicateUsername = errors.New("username already exists")

func (s *usersStore) Create(ctx context.Context, u *User, roles []string) (int64, error) {
	now := time.Now().UTC()
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.CreatedAt = now
	u.UpdatedAt = now
	var taken int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = $1`, u.Username).Scan(&taken); err != nil {
		return 0, err
	}
	if taken > 0 {
		return 0, ErrDuplicateUsername
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users(username, email, full_name, password_hash, salt, active, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		u.Username, u.Email, u.FullName, u.PasswordHash, u.Salt, boolToInt(u.Active), now, now).Scan(&id)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles(user_id, role) VALUES($1, $2)`, id, role); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

func (s *usersStore) Update(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = $1, full_name = $2, failed_attempts = $3,
			locked_until = $4, last_login_at = $5, updated_at = $6
		WHERE id = $7`,
		u.Email, u.FullName, u.FailedAttempts, u.LockedUntil, u.LastLoginAt, now, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	u.UpdatedAt = now
	return nil
}

func (s *usersStore) UpdatePassword(ctx context.Context, id int64, hash, salt string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, salt = $2, updated_at = $3 WHERE id = $4`,
		hash, salt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *usersStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`,
		boolToInt(active), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *usersStore) FindByUsername(ctx context.Context, username string) (*User, []string, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1`,
		strings.ToLower(strings.TrimSpace(username)))
	return s.scanUserWithRoles(ctx, row)
}

func (s *usersStore) Get(ctx context.Context, id int64) (*User, []string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanUserWithRoles(ctx, row)
}

func (s *usersStore) scanUserWithRoles(ctx context.Context, row *sql.Row) (*User, []string, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	roles, err := s.Roles(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, roles, nil
}

func (s *usersStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *usersStore) Roles(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *usersStore) SetRoles(ctx context.Context, id int64, roles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
		tx.Rollback()
		return err
	}
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles(user_id, role) VALUES($1, $2)`, id, role); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *usersStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var active int
	var lockedUntil, lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Salt,
		&u.FailedAttempts, &lockedUntil, &lastLogin, &active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Active = active == 1
	if lockedUntil.Valid {
		t := lockedUntil.Time
		u.LockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}
