package handlers

import (
	"fmt"
	"net/http"
	"time"

	"campus-soporte/core/auth"
	"campus-soporte/core/export"
	"campus-soporte/core/reports"
	"campus-soporte/core/store"
	"campus-soporte/core/utils"
)

// ReportsHandler aggregates incidents into stats and serves file exports.
type ReportsHandler struct {
	incidents store.IncidentsStore
	audit     store.AuditStore
	logger    *utils.Logger
}

func NewReportsHandler(incidents store.IncidentsStore, audit store.AuditStore, logger *utils.Logger) *ReportsHandler {
	return &ReportsHandler{incidents: incidents, audit: audit, logger: logger}
}

// exportLimit bounds how many rows a stats or export query pulls in one go.
const exportLimit = 10000

func (h *ReportsHandler) load(r *http.Request) ([]store.Incident, error) {
	filter := incidentFilterFromQuery(r)
	filter.Limit = exportLimit
	filter.Offset = 0
	return h.incidents.List(r.Context(), filter)
}

func (h *ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.load(r)
	if err != nil {
		h.logger.Errorf("stats load: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	writeJSON(w, http.StatusOK, reports.Compute(incidents, utils.NowUTC()))
}

func (h *ReportsHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.load(r)
	if err != nil {
		h.logger.Errorf("export load: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	stats := reports.Compute(incidents, utils.NowUTC())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="incidencias_%s.xlsx"`, time.Now().Format("2006-01-02")))
	if err := export.WriteXLSX(w, incidents, stats); err != nil {
		h.logger.Errorf("export xlsx: %v", err)
		return
	}
	h.logExport(r, "xlsx", len(incidents))
}

func (h *ReportsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.load(r)
	if err != nil {
		h.logger.Errorf("export load: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "error interno")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="incidencias_%s.csv"`, time.Now().Format("2006-01-02")))
	if err := export.WriteCSV(w, incidents); err != nil {
		h.logger.Errorf("export csv: %v", err)
		return
	}
	h.logExport(r, "csv", len(incidents))
}

func (h *ReportsHandler) logExport(r *http.Request, format string, rows int) {
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		h.audit.Log(r.Context(), sess.Username, "reports.export", fmt.Sprintf("%s %d filas", format, rows))
	}
}
