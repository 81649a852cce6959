package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/rbac"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

func TestRequirePermissionDeniesViewer(t *testing.T) {
	s := &Server{policy: rbac.NewPolicy(rbac.DefaultRoles())}
	handler := s.requirePermission(rbac.PermAccountsManage)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/accounts", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, &store.SessionRecord{
		Username: "spectator",
		Roles:    []string{"viewer"},
	}))
	rr := httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", rr.Code)
	}
}

func TestRequirePermissionAllowsAdmin(t *testing.T) {
	s := &Server{policy: rbac.NewPolicy(rbac.DefaultRoles())}
	handler := s.requirePermission(rbac.PermSettingsManage)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings/options", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, &store.SessionRecord{
		Username: "root",
		Roles:    []string{"admin"},
	}))
	rr := httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected ok, got %d", rr.Code)
	}
}

func TestClientIPHonorsTrustedProxyOnly(t *testing.T) {
	s := &Server{cfg: &config.AppConfig{
		Security: config.SecurityConfig{TrustedProxies: []string{"10.0.0.10"}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.10:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.10")
	if got := s.clientIP(req); got != "203.0.113.7" {
		t.Fatalf("trusted proxy: got %q", got)
	}

	req.RemoteAddr = "198.51.100.9:4321"
	if got := s.clientIP(req); got != "198.51.100.9" {
		t.Fatalf("untrusted peer must not spoof: got %q", got)
	}
}

func TestLoginLimiterSlidingWindow(t *testing.T) {
	l := newLoginLimiter()
	now := time.Now()
	for i := 0; i < loginMaxAttempts; i++ {
		if !l.allow("1.2.3.4", now) {
			t.Fatalf("attempt %d unexpectedly blocked", i)
		}
	}
	if l.allow("1.2.3.4", now) {
		t.Fatal("attempt over the limit allowed")
	}
	if !l.allow("5.6.7.8", now) {
		t.Fatal("other source blocked")
	}
	if !l.allow("1.2.3.4", now.Add(loginWindow+time.Second)) {
		t.Fatal("attempt after the window blocked")
	}
}

func TestWithSessionRejectsMissingCookie(t *testing.T) {
	s := &Server{logger: utils.NewLogger()}
	handler := s.withSession(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", rr.Code)
	}
}
