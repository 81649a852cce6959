package form

import (
	"fmt"
	"strings"
	"time"
)

// Reporter identifies the staff member filing the submission.
type Reporter struct {
	ID       string `json:"id"`
	FullName string `json:"nombre_completo"`
	Email    string `json:"email"`
}

// Record is the final submission payload handed to the record store. Optional
// fields are nil when not required, never empty strings.
type Record struct {
	ReporterID     string    `json:"usuario_id"`
	ReporterName   string    `json:"usuario_nombre"`
	ReporterEmail  string    `json:"usuario_email"`
	Site           string    `json:"sede"`
	Pavilion       *string   `json:"pabellon"`
	ActivityType   string    `json:"tipo_actividad"`
	Environment    *string   `json:"ambiente_incidencia"`
	IncidentType   *string   `json:"tipo_incidencia"`
	Equipment      *string   `json:"equipo_afectado"`
	ApproxDuration string    `json:"tiempo_aproximado"`
	SubmittedAt    time.Time `json:"fecha_hora"`
}

// MissingFieldsError lists the required fields a selection left unset.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(names, ", "))
}

// RequiredFields computes the required-field set for the current selection.
// The pavilion requirement tracks the selected site; the incident detail
// requirements track the activity type.
func RequiredFields(sel Selection, tree OptionTree) []Field {
	required := []Field{FieldReporter, FieldSite, FieldActivityType, FieldApproxDuration}
	if RequiresPavilion(sel, tree) {
		required = append(required, FieldPavilion)
	}
	if RequiresIncidentFields(sel) {
		required = append(required, FieldEnvironment, FieldIncidentType, FieldEquipment)
	}
	return required
}

// Assemble validates sel against the dynamically computed required-field set
// and builds the record. now is taken in UTC as the submission instant.
func Assemble(sel Selection, tree OptionTree, reporter Reporter, now time.Time) (*Record, error) {
	var missing []Field
	for _, field := range RequiredFields(sel, tree) {
		if fieldValue(sel, field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	rec := &Record{
		ReporterID:     reporter.ID,
		ReporterName:   reporter.FullName,
		ReporterEmail:  reporter.Email,
		Site:           sel.Site,
		ActivityType:   sel.ActivityType,
		ApproxDuration: sel.ApproxDuration,
		SubmittedAt:    now.UTC(),
	}
	if sel.Pavilion != "" {
		rec.Pavilion = ptr(sel.Pavilion)
	}
	if sel.Environment != "" {
		rec.Environment = ptr(sel.Environment)
	}
	if sel.IncidentType != "" {
		rec.IncidentType = ptr(sel.IncidentType)
	}
	if sel.Equipment != "" {
		rec.Equipment = ptr(sel.Equipment)
	}
	return rec, nil
}

func fieldValue(sel Selection, field Field) string {
	switch field {
	case FieldReporter:
		return sel.Reporter
	case FieldSite:
		return sel.Site
	case FieldPavilion:
		return sel.Pavilion
	case FieldActivityType:
		return sel.ActivityType
	case FieldEnvironment:
		return sel.Environment
	case FieldIncidentType:
		return sel.IncidentType
	case FieldEquipment:
		return sel.Equipment
	case FieldApproxDuration:
		return sel.ApproxDuration
	}
	return ""
}

func ptr(s string) *string { return &s }
