package api

import (
	"context"
	"net/http"

	"campus-soporte/api/handlers"
	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/rbac"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

const csrfHeaderName = "X-CSRF-Token"

// BackgroundWorker is anything the app starts alongside the HTTP listener
// and stops on shutdown.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context)
	StopWithContext(ctx context.Context) error
}

// Server owns the HTTP surface: routing, middleware and the handler set.
type Server struct {
	cfg      *config.AppConfig
	logger   *utils.Logger
	sessions store.SessionStore
	manager  *auth.SessionManager
	policy   *rbac.Policy

	authH      *handlers.AuthHandler
	formH      *handlers.FormHandler
	incidentsH *handlers.IncidentsHandler
	settingsH  *handlers.SettingsHandler
	accountsH  *handlers.AccountsHandler
	reportersH *handlers.ReportersHandler
	reportsH   *handlers.ReportsHandler

	loginLimiter *loginLimiter
}

// ServerDeps collects everything the HTTP layer needs. Handlers are built
// elsewhere so tests can compose a server around fakes.
type ServerDeps struct {
	Config   *config.AppConfig
	Logger   *utils.Logger
	Sessions store.SessionStore
	Manager  *auth.SessionManager
	Policy   *rbac.Policy

	Auth      *handlers.AuthHandler
	Form      *handlers.FormHandler
	Incidents *handlers.IncidentsHandler
	Settings  *handlers.SettingsHandler
	Accounts  *handlers.AccountsHandler
	Reporters *handlers.ReportersHandler
	Reports   *handlers.ReportsHandler
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		sessions:     deps.Sessions,
		manager:      deps.Manager,
		policy:       deps.Policy,
		authH:        deps.Auth,
		formH:        deps.Form,
		incidentsH:   deps.Incidents,
		settingsH:    deps.Settings,
		accountsH:    deps.Accounts,
		reportersH:   deps.Reporters,
		reportsH:     deps.Reports,
		loginLimiter: newLoginLimiter(),
	}
	if s.authH != nil {
		s.authH.ClientIP = s.clientIP
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.routes()
}
