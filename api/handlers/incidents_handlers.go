package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"campus-soporte/core/auth"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

type IncidentsHandler struct {
	incidents store.IncidentsStore
	audit     store.AuditStore
	logger    *utils.Logger
}

func NewIncidentsHandler(incidents store.IncidentsStore, audit store.AuditStore, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents, audit: audit, logger: logger}
}

func incidentFilterFromQuery(r *http.Request) store.IncidentFilter {
	q := r.URL.Query()
	return store.IncidentFilter{
		From:         queryDate(r, "fecha_desde", false),
		To:           queryDate(r, "fecha_hasta", true),
		Site:         strings.TrimSpace(q.Get("sede")),
		ActivityType: strings.TrimSpace(q.Get("tipo_actividad")),
		ReporterID:   strings.TrimSpace(q.Get("usuario_id")),
		Limit:        queryInt(r, "limit", 100),
		Offset:       queryInt(r, "offset", 0),
	}
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.incidents.List(r.Context(), incidentFilterFromQuery(r))
	if err != nil {
		h.logger.Errorf("incidents list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"incidencias": list, "total": len(list)})
}

func (h *IncidentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	inc, err := h.incidents.Get(r.Context(), pathParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "incidencia no encontrada")
		return
	}
	if err != nil {
		h.logger.Errorf("incident get: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// UpdateTriage changes the workflow fields. Empty fields keep their current
// value; the store validates the ones supplied.
func (h *IncidentsHandler) UpdateTriage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status   string `json:"estado"`
		Priority string `json:"prioridad"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	id := pathParam(r, "id")
	inc, err := h.incidents.UpdateTriage(r.Context(), id, body.Status, body.Priority)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "incidencia no encontrada")
		return
	}
	if errors.Is(err, store.ErrInvalidTriage) {
		writeError(w, http.StatusBadRequest, "triage_invalido", err.Error())
		return
	}
	if err != nil {
		h.logger.Errorf("incident triage: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "incident.triage", id)
	}
	writeJSON(w, http.StatusOK, inc)
}
