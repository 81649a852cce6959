// Package appbootstrap wires config, storage, policies and the HTTP surface
// into a runnable application.
package appbootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"campus-soporte/api"
	"campus-soporte/api/handlers"
	"campus-soporte/config"
	"campus-soporte/core/auth"
	"campus-soporte/core/bootstrap"
	"campus-soporte/core/rbac"
	"campus-soporte/core/schedule"
	"campus-soporte/core/store"
	"campus-soporte/core/tasks"
	"campus-soporte/core/utils"
)

// App holds the composed application. Close releases the database.
type App struct {
	Config  *config.AppConfig
	Logger  *utils.Logger
	DB      *sql.DB
	Server  *api.Server
	Workers []api.BackgroundWorker

	Sessions store.SessionStore
	Users    store.UsersStore
	Audit    store.AuditStore
}

func Compose(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*App, error) {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	settings := store.NewSettingsStore(db, fallbackWindow(cfg.Schedule))
	incidents := store.NewIncidentsStore(db)
	reporters := store.NewReportersStore(db)
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	audit := store.NewAuditStore(db)

	policy := rbac.NewPolicy(rbac.DefaultRoles())
	manager := auth.NewSessionManager(sessions, cfg, logger)

	if err := bootstrap.EnsureDefaultAdmin(ctx, users, cfg, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	server := api.NewServer(api.ServerDeps{
		Config:   cfg,
		Logger:   logger,
		Sessions: sessions,
		Manager:  manager,
		Policy:   policy,

		Auth:      handlers.NewAuthHandler(users, manager, audit, cfg, logger),
		Form:      handlers.NewFormHandler(settings, reporters, incidents, audit, logger),
		Incidents: handlers.NewIncidentsHandler(incidents, audit, logger),
		Settings:  handlers.NewSettingsHandler(settings, audit, logger),
		Accounts:  handlers.NewAccountsHandler(users, audit, policy, cfg, logger),
		Reporters: handlers.NewReportersHandler(reporters, audit, logger),
		Reports:   handlers.NewReportsHandler(incidents, audit, logger),
	})

	retention := tasks.NewRetentionWorker(cfg.Retention, sessions, audit, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Server:   server,
		Workers:  []api.BackgroundWorker{retention},
		Sessions: sessions,
		Users:    users,
		Audit:    audit,
	}, nil
}

// fallbackWindow turns the configured schedule into the window the store
// serves before an admin saves one. Out-of-range values revert to the
// built-in default rather than opening the form around the clock.
func fallbackWindow(c config.ScheduleConfig) schedule.Window {
	w := schedule.Window{
		Enabled:     true,
		StartHour:   c.StartHour,
		StartMinute: c.StartMinute,
		EndHour:     c.EndHour,
		EndMinute:   c.EndMinute,
	}
	if !w.Valid() {
		return schedule.DefaultWindow()
	}
	return w
}

func (a *App) Close() error {
	return a.DB.Close()
}
