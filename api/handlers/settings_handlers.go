package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-soporte/core/auth"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

// SettingsHandler manages the option catalogs and the form schedule window.
type SettingsHandler struct {
	settings store.SettingsStore
	audit    store.AuditStore
	logger   *utils.Logger
}

func NewSettingsHandler(settings store.SettingsStore, audit store.AuditStore, logger *utils.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, audit: audit, logger: logger}
}

func (h *SettingsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	tree, err := h.settings.OptionTree(r.Context())
	if err != nil {
		h.logger.Errorf("option tree: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// UpdateOptions replaces only the catalog keys present in the body; unknown
// keys reject the whole request.
func (h *SettingsHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var partial map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	if len(partial) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "sin claves que actualizar")
		return
	}
	if err := h.settings.UpdateOptionTree(r.Context(), partial); err != nil {
		if errors.Is(err, store.ErrUnknownSettingKey) {
			writeError(w, http.StatusBadRequest, "clave_desconocida", err.Error())
			return
		}
		h.logger.Errorf("update options: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		for key := range partial {
			h.audit.Log(r.Context(), sess.Username, "settings.update", key)
		}
	}
	h.GetOptions(w, r)
}

func (h *SettingsHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	window, err := h.settings.ScheduleWindow(r.Context())
	if err != nil {
		h.logger.Errorf("schedule window: %v", err)
	}
	writeJSON(w, http.StatusOK, window)
}

// PutSchedule saves the submission window. The body is decoded over the
// current window, so a request that only adjusts the hours does not flip
// habilitado to false just because it omitted the field.
func (h *SettingsHandler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	window, err := h.settings.ScheduleWindow(r.Context())
	if err != nil {
		h.logger.Errorf("schedule window: %v", err)
	}
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	if err := h.settings.SetScheduleWindow(r.Context(), window); err != nil {
		writeError(w, http.StatusBadRequest, "horario_invalido", err.Error())
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "settings.schedule", window.String())
	}
	writeJSON(w, http.StatusOK, window)
}
