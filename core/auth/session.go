package auth

import (
	"context"
	"time"

	"campus-soporte/config"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"

	"github.com/gofrs/uuid/v5"
)

type contextKey string

// SessionContextKey holds the *store.SessionRecord for the current request.
const SessionContextKey contextKey = "session"

// SessionCookieName is the cookie both the login handler and the session
// middleware read.
const SessionCookieName = "soporte_session"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionManager struct {
	store  store.SessionStore
	cfg    *config.AppConfig
	logger *utils.Logger
}

func NewSessionManager(sessions store.SessionStore, cfg *config.AppConfig, logger *utils.Logger) *SessionManager {
	return &SessionManager{store: sessions, cfg: cfg, logger: logger}
}

func (m *SessionManager) Create(ctx context.Context, user *store.User, roles []string, ip, userAgent string) (*store.SessionRecord, error) {
	id := uuid.Must(uuid.NewV4()).String()
	var csrf string
	var err error
	if m.cfg.CSRFKey != "" {
		csrf = GenerateCSRF(m.cfg.CSRFKey, id)
	} else {
		csrf, err = utils.RandString(32)
		if err != nil {
			return nil, err
		}
	}
	now := utils.NowUTC()
	rec := &store.SessionRecord{
		ID:         id,
		UserID:     user.ID,
		Username:   user.Username,
		Roles:      roles,
		CSRFToken:  csrf,
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.cfg.EffectiveSessionTTL()),
	}
	if err := m.store.SaveSession(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *SessionManager) Refresh(ctx context.Context, sessID string) error {
	return m.store.UpdateActivity(ctx, sessID, utils.NowUTC(), m.cfg.EffectiveSessionTTL())
}

func (m *SessionManager) Delete(ctx context.Context, sessID string) error {
	return m.store.DeleteSession(ctx, sessID)
}

// SessionFromContext returns the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *store.SessionRecord {
	v := ctx.Value(SessionContextKey)
	if v == nil {
		return nil
	}
	rec, _ := v.(*store.SessionRecord)
	return rec
}

// TTL exposes the effective session lifetime for cookie Max-Age.
func (m *SessionManager) TTL() time.Duration {
	return m.cfg.EffectiveSessionTTL()
}
