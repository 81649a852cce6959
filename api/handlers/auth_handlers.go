package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type AuthHandler struct {
	users   store.UsersStore
	manager *auth.SessionManager
	audit   store.AuditStore
	cfg     *config.AppConfig
	logger  *utils.Logger

	// ClientIP is injected by the server so lockout and session records see
	// the proxy-aware address.
	ClientIP func(*http.Request) string
}

func NewAuthHandler(users store.UsersStore, manager *auth.SessionManager,
	audit store.AuditStore, cfg *config.AppConfig, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{
		users:   users,
		manager: manager,
		audit:   audit,
		cfg:     cfg,
		logger:  logger,
		ClientIP: func(r *http.Request) string {
			return r.RemoteAddr
		},
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	creds.Username = strings.ToLower(strings.TrimSpace(creds.Username))

	user, roles, err := h.users.FindByUsername(r.Context(), creds.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Errorf("login lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if user == nil || !user.Active {
		writeError(w, http.StatusUnauthorized, "unauthorized", "credenciales inválidas")
		return
	}
	now := utils.NowUTC()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		writeError(w, http.StatusForbidden, "locked", "cuenta bloqueada temporalmente")
		return
	}

	hash, err := auth.ParsePasswordHash(user.PasswordHash, user.Salt)
	if err != nil {
		h.logger.Errorf("stored hash for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	ok, err := auth.VerifyPassword(creds.Password, h.cfg.Pepper, hash)
	if err != nil {
		h.logger.Errorf("verify password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if !ok {
		h.recordFailure(r.Context(), user, now)
		writeError(w, http.StatusUnauthorized, "unauthorized", "credenciales inválidas")
		return
	}

	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := h.users.Update(r.Context(), user); err != nil {
		h.logger.Errorf("login update: %v", err)
	}

	sess, err := h.manager.Create(r.Context(), user, roles, h.ClientIP(r), r.UserAgent())
	if err != nil {
		h.logger.Errorf("session create: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	h.setSessionCookie(w, sess.ID)
	h.audit.Log(r.Context(), user.Username, "auth.login", h.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"username":   user.Username,
		"roles":      roles,
		"csrf_token": sess.CSRFToken,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *AuthHandler) recordFailure(ctx context.Context, user *store.User, now time.Time) {
	user.FailedAttempts++
	if user.FailedAttempts >= maxFailedLogins {
		until := now.Add(lockoutDuration)
		user.LockedUntil = &until
		user.FailedAttempts = 0
		h.audit.Log(ctx, user.Username, "auth.lockout", "")
	}
	if err := h.users.Update(ctx, user); err != nil {
		h.logger.Errorf("login failure update: %v", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.manager.Delete(r.Context(), sess.ID); err != nil {
			h.logger.Errorf("session delete: %v", err)
		}
		h.audit.Log(r.Context(), sess.Username, "auth.logout", "")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sesión requerida")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":   sess.Username,
		"roles":      sess.Roles,
		"expires_at": sess.ExpiresAt,
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sesión requerida")
		return
	}
	var body struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "cuerpo JSON inválido")
		return
	}
	if err := utils.ValidatePassword(body.New); err != nil {
		writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}
	user, _, err := h.users.Get(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Errorf("change password lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	hash, err := auth.ParsePasswordHash(user.PasswordHash, user.Salt)
	if err != nil {
		h.logger.Errorf("stored hash for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	ok, err := auth.VerifyPassword(body.Current, h.cfg.Pepper, hash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "contraseña actual incorrecta")
		return
	}
	fresh, err := auth.HashPassword(body.New, h.cfg.Pepper)
	if err != nil {
		h.logger.Errorf("hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, fresh.Hash, fresh.Salt); err != nil {
		h.logger.Errorf("update password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	h.audit.Log(r.Context(), sess.Username, "auth.change_password", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.manager.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.cfg.AppEnv == "production",
	})
}
