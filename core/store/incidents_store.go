package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-soporte/core/form"

	"github.com/gofrs/uuid/v5"
)

// Incident is one stored submission. Optional columns stay NULL, never empty
// strings.
type Incident struct {
	ID             string     `json:"id"`
	ReporterID     string     `json:"usuario_id"`
	ReporterName   string     `json:"usuario_nombre"`
	ReporterEmail  string     `json:"usuario_email"`
	Site           string     `json:"sede"`
	Pavilion       *string    `json:"pabellon"`
	ActivityType   string     `json:"tipo_actividad"`
	Environment    *string    `json:"ambiente_incidencia,omitempty"`
	IncidentType   *string    `json:"tipo_incidencia,omitempty"`
	Equipment      *string    `json:"equipo_afectado,omitempty"`
	ApproxDuration string     `json:"tiempo_aproximado"`
	Status         string     `json:"estado"`
	Priority       string     `json:"prioridad"`
	SubmittedAt    time.Time  `json:"fecha_hora"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// IncidentFilter narrows List. Zero values mean "no constraint".
type IncidentFilter struct {
	From         time.Time
	To           time.Time
	Site         string
	ActivityType string
	ReporterID   string
	Limit        int
	Offset       int
}

var ValidIncidentStatus = map[string]struct{}{
	"pendiente":   {},
	"en progreso": {},
	"resuelto":    {},
}

var ValidIncidentPriority = map[string]struct{}{
	"baja":    {},
	"media":   {},
	"alta":    {},
	"urgente": {},
}

type IncidentsStore interface {
	Insert(ctx context.Context, rec *form.Record) (*Incident, error)
	Get(ctx context.Context, id string) (*Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]Incident, error)
	UpdateTriage(ctx context.Context, id, status, priority string) (*Incident, error)
}

type incidentsStore struct {
	db *sql.DB
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db}
}

// Insert appends the assembled record. The store owns the record from here
// on: id, triage defaults and created_at are assigned at write time.
func (s *incidentsStore) Insert(ctx context.Context, rec *form.Record) (*Incident, error) {
	id := uuid.Must(uuid.NewV4()).String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents(id, usuario_id, usuario_nombre, usuario_email, sede, pabellon,
			tipo_actividad, ambiente_incidencia, tipo_incidencia, equipo_afectado,
			tiempo_aproximado, estado, prioridad, fecha_hora, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pendiente', 'media', $12, $13)`,
		id, rec.ReporterID, rec.ReporterName, rec.ReporterEmail, rec.Site, rec.Pavilion,
		rec.ActivityType, rec.Environment, rec.IncidentType, rec.Equipment,
		rec.ApproxDuration, rec.SubmittedAt, now)
	if err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return s.Get(ctx, id)
}

const incidentColumns = `id, usuario_id, usuario_nombre, usuario_email, sede, pabellon,
	tipo_actividad, ambiente_incidencia, tipo_incidencia, equipo_afectado,
	tiempo_aproximado, estado, prioridad, fecha_hora, created_at, updated_at`

func (s *incidentsStore) Get(ctx context.Context, id string) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = $1`, id)
	inc, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func (s *incidentsStore) List(ctx context.Context, filter IncidentFilter) ([]Incident, error) {
	var conds []string
	var args []any
	add := func(expr string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if !filter.From.IsZero() {
		add("fecha_hora >= $%d", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		add("fecha_hora <= $%d", filter.To.UTC())
	}
	if filter.Site != "" {
		add("sede = $%d", filter.Site)
	}
	if filter.ActivityType != "" {
		add("tipo_actividad = $%d", filter.ActivityType)
	}
	if filter.ReporterID != "" {
		add("usuario_id = $%d", filter.ReporterID)
	}
	query := `SELECT ` + incidentColumns + ` FROM incidents`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			query += fmt.Sprintf(" OFFSET $%d", len(args))
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inc)
	}
	return out, rows.Err()
}

// ErrInvalidTriage marks an estado or prioridad outside the accepted sets.
var ErrInvalidTriage = errors.New("invalid triage value")

// UpdateTriage sets status and priority; an empty value keeps the current
// one. The submission fields themselves are append-only and never modified.
func (s *incidentsStore) UpdateTriage(ctx context.Context, id, status, priority string) (*Incident, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = current.Status
	}
	if priority == "" {
		priority = current.Priority
	}
	if _, ok := ValidIncidentStatus[status]; !ok {
		return nil, fmt.Errorf("%w: estado %q", ErrInvalidTriage, status)
	}
	if _, ok := ValidIncidentPriority[priority]; !ok {
		return nil, fmt.Errorf("%w: prioridad %q", ErrInvalidTriage, priority)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE incidents SET estado = $1, prioridad = $2, updated_at = $3 WHERE id = $4`,
		status, priority, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*Incident, error) {
	var inc Incident
	var pavilion, environment, incidentType, equipment sql.NullString
	var updatedAt sql.NullTime
	if err := row.Scan(&inc.ID, &inc.ReporterID, &inc.ReporterName, &inc.ReporterEmail,
		&inc.Site, &pavilion, &inc.ActivityType, &environment, &incidentType, &equipment,
		&inc.ApproxDuration, &inc.Status, &inc.Priority, &inc.SubmittedAt, &inc.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	inc.Pavilion = nullableString(pavilion)
	inc.Environment = nullableString(environment)
	inc.IncidentType = nullableString(incidentType)
	inc.Equipment = nullableString(equipment)
	if updatedAt.Valid {
		t := updatedAt.Time
		inc.UpdatedAt = &t
	}
	return &inc, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
