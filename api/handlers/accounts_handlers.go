package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/rbac"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

// AccountsHandler manages admin-panel accounts and the audit trail.
type AccountsHandler struct {
	users  store.UsersStore
	audit  store.AuditStore
	policy *rbac.Policy
	cfg    *config.AppConfig
	logger *utils.Logger
}

func NewAccountsHandler(users store.UsersStore, audit store.AuditStore,
	policy *rbac.Policy, cfg *config.AppConfig, logger *utils.Logger) *AccountsHandler {
	return &AccountsHandler{users: users, audit: audit, policy: policy, cfg: cfg, logger: logger}
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Errorf("users list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list})
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string   `json:"username"`
		Password string   `json:"password"`
		Email    string   `json:"email"`
		FullName string   `json:"full_name"`
		Roles    []string `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	body.Username = strings.ToLower(strings.TrimSpace(body.Username))
	if err := utils.ValidateUsername(body.Username); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := utils.ValidatePassword(body.Password); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}
	if err := utils.ValidateEmail(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	roles, err := h.policy.ValidRoles(body.Roles)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	hash, err := auth.HashPassword(body.Password, h.cfg.Pepper)
	if err != nil {
		h.logger.Errorf("hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	user := &store.User{
		Username:     body.Username,
		Email:        strings.TrimSpace(body.Email),
		FullName:     strings.TrimSpace(body.FullName),
		PasswordHash: hash.Hash,
		Salt:         hash.Salt,
		Active:       true,
	}
	id, err := h.users.Create(r.Context(), user, roles)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "conflict", "el nombre de usuario ya existe")
			return
		}
		h.logger.Errorf("user create: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "account.create", body.Username)
	}
	user.ID = id
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "roles": roles})
}

func (h *AccountsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id inválido")
		return
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	sess := auth.SessionFromContext(r.Context())
	if sess != nil && sess.UserID == id && !body.Active {
		writeError(w, http.StatusBadRequest, "bad_request", "no puede desactivar su propia cuenta")
		return
	}
	if err := h.users.SetActive(r.Context(), id, body.Active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "cuenta no encontrada")
			return
		}
		h.logger.Errorf("user set active: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess != nil {
		h.audit.Log(r.Context(), sess.Username, "account.set_active", strconv.FormatInt(id, 10))
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": body.Active})
}

func (h *AccountsHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "id inválido")
		return
	}
	var body struct {
		Roles []string `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	roles, err := h.policy.ValidRoles(body.Roles)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.users.SetRoles(r.Context(), id, roles); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "cuenta no encontrada")
			return
		}
		h.logger.Errorf("user set roles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "account.set_roles", strconv.FormatInt(id, 10))
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "roles": roles})
}

func (h *AccountsHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.List(r.Context(), queryInt(r, "limit", 200))
	if err != nil {
		h.logger.Errorf("audit list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
