// Package export serializes incident lists and report statistics into
// downloadable spreadsheet and CSV files.
package export

import (
	"fmt"
	"io"
	"sort"

	"campus-soporte/core/reports"
	"campus-soporte/core/store"

	"github.com/xuri/excelize/v2"
)

var incidentHeader = []string{
	"Fecha y Hora", "Usuario", "Email", "Sede", "Pabellón", "Tipo de Actividad",
	"Ambiente", "Tipo de Incidencia", "Equipo Afectado", "Tiempo Aproximado",
	"Estado", "Prioridad",
}

func incidentRow(inc store.Incident) []any {
	return []any{
		inc.SubmittedAt.UTC().Format("2006-01-02 15:04"),
		inc.ReporterName,
		inc.ReporterEmail,
		inc.Site,
		deref(inc.Pavilion),
		inc.ActivityType,
		deref(inc.Environment),
		deref(inc.IncidentType),
		deref(inc.Equipment),
		inc.ApproxDuration,
		inc.Status,
		inc.Priority,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteXLSX writes a workbook with an incidents sheet and a statistics
// summary sheet.
func WriteXLSX(w io.Writer, incidents []store.Incident, stats reports.Stats) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Incidencias"
	f.SetSheetName("Sheet1", sheet)
	if err := writeRow(f, sheet, 1, toAny(incidentHeader)); err != nil {
		return err
	}
	for i, inc := range incidents {
		if err := writeRow(f, sheet, i+2, incidentRow(inc)); err != nil {
			return err
		}
	}

	const summary = "Resumen"
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	row := 1
	put := func(cells []any) error {
		err := writeRow(f, summary, row, cells)
		row++
		return err
	}
	if err := put([]any{"Total de incidencias", stats.Total}); err != nil {
		return err
	}
	if err := putCounts(put, "Incidencias por sede", stats.BySite); err != nil {
		return err
	}
	if err := putCounts(put, "Por tipo de actividad", stats.ByActivityType); err != nil {
		return err
	}
	if err := putCounts(put, "Equipos más afectados", stats.ByEquipment); err != nil {
		return err
	}
	if err := put([]any{}); err != nil {
		return err
	}
	if err := put([]any{"Tiempo promedio (minutos)"}); err != nil {
		return err
	}
	for _, key := range sortedKeysFloat(stats.AvgDurationMin) {
		if err := put([]any{key, stats.AvgDurationMin[key]}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func putCounts(put func([]any) error, title string, counts map[string]int) error {
	if err := put([]any{}); err != nil {
		return err
	}
	if err := put([]any{title}); err != nil {
		return err
	}
	for _, key := range sortedKeys(counts) {
		if err := put([]any{key, counts[key]}); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysFloat(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
