package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Reporter is a support staff member who may file submissions. Reporters are
// picked from a list on the form's first step; they do not log in.
type Reporter struct {
	ID        string    `json:"id"`
	FullName  string    `json:"nombre_completo"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

type ReportersStore interface {
	Create(ctx context.Context, r *Reporter) (*Reporter, error)
	Update(ctx context.Context, id string, fullName, email string) (*Reporter, error)
	SetActive(ctx context.Context, id string, active bool) error
	Get(ctx context.Context, id string) (*Reporter, error)
	List(ctx context.Context, activeOnly bool) ([]Reporter, error)
}

type reportersStore struct {
	db *sql.DB
}

func NewReportersStore(db *sql.DB) ReportersStore {
	return &reportersStore{db: db}
}

func (s *reportersStore) Create(ctx context.Context, r *Reporter) (*Reporter, error) {
	r.ID = uuid.Must(uuid.NewV4()).String()
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	if r.FullName == "" {
		return nil, errors.New("nombre_completo required")
	}
	r.Active = true
	r.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reporters(id, full_name, email, active, created_at)
		VALUES($1, $2, $3, 1, $4)`,
		r.ID, r.FullName, r.Email, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reportersStore) Update(ctx context.Context, id string, fullName, email string) (*Reporter, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, errors.New("nombre_completo required")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE reporters SET full_name = $1, email = $2 WHERE id = $3`,
		fullName, strings.TrimSpace(email), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *reportersStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE reporters SET active = $1 WHERE id = $2`, boolToInt(active), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *reportersStore) Get(ctx context.Context, id string) (*Reporter, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, active, created_at FROM reporters WHERE id = $1`, id)
	var r Reporter
	var active int
	if err := row.Scan(&r.ID, &r.FullName, &r.Email, &active, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.Active = active == 1
	return &r, nil
}

func (s *reportersStore) List(ctx context.Context, activeOnly bool) ([]Reporter, error) {
	query := `SELECT id, full_name, email, active, created_at FROM reporters`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY full_name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reporter
	for rows.Next() {
		var r Reporter
		var active int
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &active, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Active = active == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
