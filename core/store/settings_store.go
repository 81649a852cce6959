package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campus-soporte/core/form"
	"campus-soporte/core/schedule"
)

var ErrNotFound = errors.New("not found")

// Setting keys. The option tree is stored one key per catalog so the admin
// screens can update each list independently.
const (
	KeySites           = "sedes"
	KeyPavilions       = "pabellones"
	KeyActivityTypes   = "tipos_actividad"
	KeyEnvironments    = "ambientes"
	KeyIncidentTypes   = "tipos_incidencia"
	KeyEquipment       = "equipos"
	KeyApproxDurations = "tiempos_aproximados"
	KeySchedule        = "horario_formulario"
)

type SettingsStore interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any, description string) error

	OptionTree(ctx context.Context) (form.OptionTree, error)
	UpdateOptionTree(ctx context.Context, partial map[string]json.RawMessage) error
	ScheduleWindow(ctx context.Context) (schedule.Window, error)
	SetScheduleWindow(ctx context.Context, w schedule.Window) error
}

type settingsStore struct {
	db       *sql.DB
	fallback schedule.Window
}

// NewSettingsStore wraps the system_settings table. fallback is the window
// served when no schedule row exists or the row cannot be read.
func NewSettingsStore(db *sql.DB, fallback schedule.Window) SettingsStore {
	if !fallback.Valid() {
		fallback = schedule.DefaultWindow()
	}
	return &settingsStore{db: db, fallback: fallback}
}

func (s *settingsStore) Get(ctx context.Context, key string, out any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value_json FROM system_settings WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (s *settingsStore) Set(ctx context.Context, key string, value any, description string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO system_settings(key, value_json, description, updated_at)
		VALUES($1, $2, $3, $4)
		ON CONFLICT(key) DO UPDATE SET value_json = $2, description = $3, updated_at = $4`,
		key, string(raw), description, time.Now().UTC())
	return err
}

// OptionTree assembles the form reference data. Each missing catalog falls
// back to its default independently, so a fresh install serves a complete
// form before the admin has saved anything.
func (s *settingsStore) OptionTree(ctx context.Context) (form.OptionTree, error) {
	tree := form.DefaultOptionTree()
	if err := s.getOrKeep(ctx, KeySites, &tree.Sites); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyPavilions, &tree.PavilionsBySite); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyActivityTypes, &tree.ActivityTypes); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyEnvironments, &tree.EnvironmentsByPavilion); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyIncidentTypes, &tree.IncidentTypes); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyEquipment, &tree.EquipmentByIncidentType); err != nil {
		return tree, err
	}
	if err := s.getOrKeep(ctx, KeyApproxDurations, &tree.ApproxDurations); err != nil {
		return tree, err
	}
	return tree, nil
}

func (s *settingsStore) getOrKeep(ctx context.Context, key string, out any) error {
	err := s.Get(ctx, key, out)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

var optionTreeKeys = map[string]string{
	KeySites:           "Sedes disponibles en el formulario",
	KeyPavilions:       "Pabellones por sede",
	KeyActivityTypes:   "Tipos de actividad",
	KeyEnvironments:    "Ambientes por pabellón",
	KeyIncidentTypes:   "Tipos de incidencia",
	KeyEquipment:       "Equipos por tipo de incidencia",
	KeyApproxDurations: "Tiempos aproximados de actividad",
}

// ErrUnknownSettingKey rejects catalog updates that name a key outside the
// option tree.
var ErrUnknownSettingKey = errors.New("unknown option tree key")

// UpdateOptionTree upserts the given catalogs. Unknown keys are rejected so a
// typo cannot silently create a dead setting.
func (s *settingsStore) UpdateOptionTree(ctx context.Context, partial map[string]json.RawMessage) error {
	for key, raw := range partial {
		desc, ok := optionTreeKeys[key]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSettingKey, key)
		}
		if err := s.Set(ctx, key, raw, desc); err != nil {
			return err
		}
	}
	return nil
}

func (s *settingsStore) ScheduleWindow(ctx context.Context) (schedule.Window, error) {
	var w schedule.Window
	err := s.Get(ctx, KeySchedule, &w)
	if errors.Is(err, ErrNotFound) {
		return s.fallback, nil
	}
	if err != nil {
		return s.fallback, err
	}
	return w, nil
}

func (s *settingsStore) SetScheduleWindow(ctx context.Context, w schedule.Window) error {
	if !w.Valid() {
		return fmt.Errorf("invalid schedule window %s", w)
	}
	return s.Set(ctx, KeySchedule, w, "Horario permitido para llenar el formulario (formato 24h, hora Perú)")
}
