package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"campus-soporte/core/form"
	"campus-soporte/core/schedule"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

// FormHandler serves the public incident form: option catalogs, the schedule
// gate and the submission endpoint. None of these require a session.
type FormHandler struct {
	settings  store.SettingsStore
	reporters store.ReportersStore
	incidents store.IncidentsStore
	audit     store.AuditStore
	logger    *utils.Logger
}

func NewFormHandler(settings store.SettingsStore, reporters store.ReportersStore,
	incidents store.IncidentsStore, audit store.AuditStore, logger *utils.Logger) *FormHandler {
	return &FormHandler{
		settings:  settings,
		reporters: reporters,
		incidents: incidents,
		audit:     audit,
		logger:    logger,
	}
}

// Options returns the full option tree, or, when ?campo= names a dependent
// field, only the values selectable under the selection given in the query.
func (h *FormHandler) Options(w http.ResponseWriter, r *http.Request) {
	tree, err := h.settings.OptionTree(r.Context())
	if err != nil {
		h.logger.Errorf("option tree: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	q := r.URL.Query()
	field := form.Field(strings.TrimSpace(q.Get("campo")))
	if field == "" {
		writeJSON(w, http.StatusOK, tree)
		return
	}
	if !knownFields[field] {
		writeError(w, http.StatusBadRequest, "campo_invalido", "campo desconocido")
		return
	}
	sel := form.Selection{
		Site:         q.Get("sede"),
		Pavilion:     q.Get("pabellon"),
		ActivityType: q.Get("tipo_actividad"),
		IncidentType: q.Get("tipo_incidencia"),
	}
	opts := form.OptionsFor(field, sel, tree)
	if opts == nil {
		opts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"campo":    field,
		"opciones": opts,
	})
}

var knownFields = map[form.Field]bool{
	form.FieldReporter:       true,
	form.FieldSite:           true,
	form.FieldPavilion:       true,
	form.FieldActivityType:   true,
	form.FieldEnvironment:    true,
	form.FieldIncidentType:   true,
	form.FieldEquipment:      true,
	form.FieldApproxDuration: true,
}

// Change applies one field edit to a selection and returns the selection with
// its dependents cleared, plus the fresh option lists for those dependents.
func (h *FormHandler) Change(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field     form.Field     `json:"campo"`
		Value     string         `json:"valor"`
		Selection form.Selection `json:"seleccion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	if !knownFields[body.Field] {
		writeError(w, http.StatusBadRequest, "campo_invalido", "campo desconocido")
		return
	}
	tree, err := h.settings.OptionTree(r.Context())
	if err != nil {
		h.logger.Errorf("option tree: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	sel := form.ApplyChange(body.Field, body.Value, body.Selection)
	writeJSON(w, http.StatusOK, map[string]any{
		"seleccion":         sel,
		"pabellones":        orEmpty(form.OptionsFor(form.FieldPavilion, sel, tree)),
		"ambientes":         orEmpty(form.OptionsFor(form.FieldEnvironment, sel, tree)),
		"equipos":           orEmpty(form.OptionsFor(form.FieldEquipment, sel, tree)),
		"requiere_pabellon": form.RequiresPavilion(sel, tree),
		"requiere_detalle":  form.RequiresIncidentFields(sel),
	})
}

func orEmpty(opts []string) []string {
	if opts == nil {
		return []string{}
	}
	return opts
}

// Schedule reports whether the form is currently open. A failed settings read
// falls back to the configured window so the form never locks up on a bad row.
func (h *FormHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.evaluateGate(r))
}

func (h *FormHandler) evaluateGate(r *http.Request) schedule.Result {
	// ScheduleWindow returns the configured fallback alongside any read
	// error, so the gate stays predictable on a bad settings row.
	window, err := h.settings.ScheduleWindow(r.Context())
	if err != nil {
		h.logger.Errorf("schedule window: %v", err)
	}
	return schedule.Evaluate(window, utils.NowUTC())
}

// Reporters lists the active directory entries the form's user dropdown shows.
func (h *FormHandler) Reporters(w http.ResponseWriter, r *http.Request) {
	list, err := h.reporters.List(r.Context(), true)
	if err != nil {
		h.logger.Errorf("reporters list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuarios": list})
}

// Submit validates a selection against the schedule gate and the option tree,
// assembles the record and persists it.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	gate := h.evaluateGate(r)
	if !gate.Allowed {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{
				"code":    "fuera_de_horario",
				"message": gate.Message,
			},
			"horario": gate,
		})
		return
	}

	var sel form.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	rep, err := h.reporters.Get(r.Context(), strings.TrimSpace(sel.Reporter))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Errorf("reporter lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if rep == nil || !rep.Active {
		writeError(w, http.StatusBadRequest, "usuario_invalido", "usuario no registrado o inactivo")
		return
	}
	tree, err := h.settings.OptionTree(r.Context())
	if err != nil {
		h.logger.Errorf("option tree: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}

	rec, err := form.Assemble(sel, tree, form.Reporter{
		ID:       rep.ID,
		FullName: rep.FullName,
		Email:    rep.Email,
	}, utils.NowUTC())
	if err != nil {
		var missing *form.MissingFieldsError
		if errors.As(err, &missing) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": map[string]any{
					"code":    "campos_faltantes",
					"message": missing.Error(),
				},
				"campos": missing.Fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	inc, err := h.incidents.Insert(r.Context(), rec)
	if err != nil {
		h.logger.Errorf("incident insert: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "no se pudo registrar la incidencia")
		return
	}
	h.audit.Log(r.Context(), rep.FullName, "incident.submit", inc.ID)
	writeJSON(w, http.StatusCreated, inc)
}
