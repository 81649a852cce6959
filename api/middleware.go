package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"campus-soporte/core/auth"
	"campus-soporte/core/rbac"
)

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				http.Error(w, `{"error":{"code":"internal","message":"error interno"}}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Printf("%s %s %d %s %s", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond), s.clientIP(r))
	})
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withSession resolves the session cookie, enforces the CSRF header on
// mutating methods and puts the session record on the request context.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, `{"error":{"code":"unauthorized","message":"sesión requerida"}}`, http.StatusUnauthorized)
			return
		}
		sess, err := s.sessions.GetSession(r.Context(), cookie.Value)
		if err != nil {
			s.logger.Errorf("session lookup: %v", err)
			http.Error(w, `{"error":{"code":"internal","message":"error interno"}}`, http.StatusInternalServerError)
			return
		}
		if sess == nil {
			s.clearSessionCookie(w)
			http.Error(w, `{"error":{"code":"unauthorized","message":"sesión expirada"}}`, http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if !auth.ValidCSRF(r.Header.Get(csrfHeaderName), sess.CSRFToken) {
				http.Error(w, `{"error":{"code":"forbidden","message":"token CSRF inválido"}}`, http.StatusForbidden)
				return
			}
		}
		if err := s.manager.Refresh(r.Context(), sess.ID); err != nil {
			s.logger.Errorf("session refresh: %v", err)
		}
		ctx := context.WithValue(r.Context(), auth.SessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requirePermission(perm rbac.Permission) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess := auth.SessionFromContext(r.Context())
			if sess == nil || !s.policy.Allowed(sess.Roles, perm) {
				http.Error(w, `{"error":{"code":"forbidden","message":"permiso denegado"}}`, http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	for _, proxy := range s.cfg.Security.TrustedProxies {
		if host != proxy {
			continue
		}
		fwd := r.Header.Get("X-Forwarded-For")
		if fwd == "" {
			break
		}
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	return host
}

const (
	loginWindow      = time.Minute
	loginMaxAttempts = 10
)

// loginLimiter throttles login attempts per source IP with a sliding window.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{attempts: make(map[string][]time.Time)}
}

func (l *loginLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-loginWindow)
	kept := l.attempts[ip][:0]
	for _, t := range l.attempts[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= loginMaxAttempts {
		l.attempts[ip] = kept
		return false
	}
	l.attempts[ip] = append(kept, now)
	return true
}

func (s *Server) rateLimitLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.loginLimiter.allow(s.clientIP(r), time.Now()) {
			http.Error(w, `{"error":{"code":"rate_limited","message":"demasiados intentos, espere un minuto"}}`, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
