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

// ReportersHandler is the admin CRUD over the reporter directory. The public
// read side lives on FormHandler.
type ReportersHandler struct {
	reporters store.ReportersStore
	audit     store.AuditStore
	logger    *utils.Logger
}

func NewReportersHandler(reporters store.ReportersStore, audit store.AuditStore, logger *utils.Logger) *ReportersHandler {
	return &ReportersHandler{reporters: reporters, audit: audit, logger: logger}
}

func (h *ReportersHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activos") == "true"
	list, err := h.reporters.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Errorf("reporters list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usuarios": list})
}

func (h *ReportersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"nombre_completo"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	body.FullName = strings.TrimSpace(body.FullName)
	if body.FullName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "nombre_completo es obligatorio")
		return
	}
	if err := utils.ValidateEmail(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	rep, err := h.reporters.Create(r.Context(), &store.Reporter{
		FullName: body.FullName,
		Email:    strings.TrimSpace(body.Email),
		Active:   true,
	})
	if err != nil {
		h.logger.Errorf("reporter create: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "reporter.create", rep.ID)
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (h *ReportersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"nombre_completo"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	body.FullName = strings.TrimSpace(body.FullName)
	if body.FullName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "nombre_completo es obligatorio")
		return
	}
	if err := utils.ValidateEmail(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	id := pathParam(r, "id")
	rep, err := h.reporters.Update(r.Context(), id, body.FullName, strings.TrimSpace(body.Email))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "usuario no encontrado")
		return
	}
	if err != nil {
		h.logger.Errorf("reporter update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "reporter.update", id)
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *ReportersHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"activo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	id := pathParam(r, "id")
	err := h.reporters.SetActive(r.Context(), id, body.Active)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "usuario no encontrado")
		return
	}
	if err != nil {
		h.logger.Errorf("reporter set active: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "reporter.set_active", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "activo": body.Active})
}
