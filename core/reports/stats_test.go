package reports

import (
	"testing"
	"time"

	"campus-soporte/core/store"
)

func inc(site, activity, duration string, equipment string, submitted time.Time) store.Incident {
	i := store.Incident{
		Site:           site,
		ActivityType:   activity,
		ApproxDuration: duration,
		SubmittedAt:    submitted,
	}
	if equipment != "" {
		i.Equipment = &equipment
	}
	return i
}

func TestComputeCountsAndAverages(t *testing.T) {
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	incidents := []store.Incident{
		inc("Moche", "Incidencia", "5 minutos", "Proyector", now),
		inc("Moche", "Incidencia", "Mayor a 20 minutos", "Proyector", now),
		inc("Colón", "Mudanza", "10 minutos", "", now.AddDate(0, 0, -1)),
	}
	stats := Compute(incidents, now)
	if stats.Total != 3 {
		t.Fatalf("total = %d", stats.Total)
	}
	if stats.BySite["Moche"] != 2 || stats.BySite["Colón"] != 1 {
		t.Fatalf("by site = %v", stats.BySite)
	}
	if stats.ByEquipment["Proyector"] != 2 {
		t.Fatalf("by equipment = %v", stats.ByEquipment)
	}
	// (5 + 30) / 2 = 17.5
	if got := stats.AvgDurationMin["Incidencia"]; got != 17.5 {
		t.Fatalf("avg Incidencia = %v", got)
	}
	if got := stats.AvgDurationMin["Mudanza"]; got != 10 {
		t.Fatalf("avg Mudanza = %v", got)
	}
}

func TestDurationMinutesLabels(t *testing.T) {
	cases := map[string]int{
		"5 minutos":          5,
		"15 minutos":         15,
		"Mayor a 20 minutos": 30,
		"45 minutos":         45,
		"indeterminado":      0,
	}
	for label, want := range cases {
		if got := durationMinutes(label); got != want {
			t.Errorf("durationMinutes(%q) = %d, want %d", label, got, want)
		}
	}
}

func TestTrendCoversThirtyDays(t *testing.T) {
	now := time.Date(2026, 5, 20, 23, 30, 0, 0, time.UTC)
	incidents := []store.Incident{
		inc("Moche", "Incidencia", "5 minutos", "", now),
		inc("Moche", "Incidencia", "5 minutos", "", now),
		inc("Moche", "Incidencia", "5 minutos", "", now.AddDate(0, 0, -29)),
		// Outside the window, must not appear.
		inc("Moche", "Incidencia", "5 minutos", "", now.AddDate(0, 0, -30)),
	}
	points := Compute(incidents, now).Trend
	if len(points) != 30 {
		t.Fatalf("trend length = %d", len(points))
	}
	if points[0].Date != "2026-04-21" || points[0].Count != 1 {
		t.Fatalf("first point = %+v", points[0])
	}
	if points[29].Date != "2026-05-20" || points[29].Count != 2 {
		t.Fatalf("last point = %+v", points[29])
	}
}
