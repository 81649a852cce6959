package api

import (
	"net/http"

	"campus-soporte/core/rbac"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware, s.loggingMiddleware, s.securityHeadersMiddleware)

	r.Route("/api", func(api chi.Router) {
		// Public form surface, no session required.
		api.Route("/form", func(form chi.Router) {
			form.Get("/options", s.formH.Options)
			form.Get("/schedule", s.formH.Schedule)
			form.Get("/reporters", s.formH.Reporters)
			form.Post("/selection", s.formH.Change)
			form.Post("/incidents", s.formH.Submit)
		})

		api.Route("/auth", func(a chi.Router) {
			a.Post("/login", s.rateLimitLogin(s.authH.Login))
			a.Post("/logout", s.withSession(s.authH.Logout))
			a.Get("/me", s.withSession(s.authH.Me))
			a.Post("/change-password", s.withSession(s.authH.ChangePassword))
		})

		api.Route("/admin", func(admin chi.Router) {
			settings := s.requirePermission(rbac.PermSettingsManage)
			incView := s.requirePermission(rbac.PermIncidentsView)
			incManage := s.requirePermission(rbac.PermIncidentsManage)
			accounts := s.requirePermission(rbac.PermAccountsManage)
			reports := s.requirePermission(rbac.PermReportsView)

			admin.Get("/settings/options", s.withSession(settings(s.settingsH.GetOptions)))
			admin.Put("/settings/options", s.withSession(settings(s.settingsH.UpdateOptions)))
			admin.Get("/settings/schedule", s.withSession(settings(s.settingsH.GetSchedule)))
			admin.Put("/settings/schedule", s.withSession(settings(s.settingsH.PutSchedule)))

			admin.Get("/incidents", s.withSession(incView(s.incidentsH.List)))
			admin.Get("/incidents/{id}", s.withSession(incView(s.incidentsH.Get)))
			admin.Patch("/incidents/{id}", s.withSession(incManage(s.incidentsH.UpdateTriage)))

			admin.Get("/reporters", s.withSession(accounts(s.reportersH.List)))
			admin.Post("/reporters", s.withSession(accounts(s.reportersH.Create)))
			admin.Put("/reporters/{id}", s.withSession(accounts(s.reportersH.Update)))
			admin.Patch("/reporters/{id}/active", s.withSession(accounts(s.reportersH.SetActive)))

			admin.Get("/accounts", s.withSession(accounts(s.accountsH.List)))
			admin.Post("/accounts", s.withSession(accounts(s.accountsH.Create)))
			admin.Patch("/accounts/{id}/active", s.withSession(accounts(s.accountsH.SetActive)))
			admin.Put("/accounts/{id}/roles", s.withSession(accounts(s.accountsH.SetRoles)))
			admin.Get("/audit", s.withSession(accounts(s.accountsH.AuditLog)))

			admin.Get("/reports/stats", s.withSession(reports(s.reportsH.Stats)))
			admin.Get("/reports/export.xlsx", s.withSession(reports(s.reportsH.ExportXLSX)))
			admin.Get("/reports/export.csv", s.withSession(reports(s.reportsH.ExportCSV)))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
