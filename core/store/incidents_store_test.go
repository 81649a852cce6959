package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-soporte/core/form"
)

func sampleRecord(site, activity string, submitted time.Time) *form.Record {
	pav := "P. Principal"
	return &form.Record{
		ReporterID:     "rep-1",
		ReporterName:   "Ana Torres",
		ReporterEmail:  "ana@uni.edu",
		Site:           site,
		Pavilion:       &pav,
		ActivityType:   activity,
		ApproxDuration: "10 minutos",
		SubmittedAt:    submitted,
	}
}

func TestIncidentsInsertDefaultsTriage(t *testing.T) {
	db := testDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	inc, err := incidents.Insert(ctx, sampleRecord("Moche", "Mudanza", time.Now().UTC()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inc.ID == "" {
		t.Fatal("expected generated id")
	}
	if inc.Status != "pendiente" || inc.Priority != "media" {
		t.Fatalf("triage defaults = %s/%s", inc.Status, inc.Priority)
	}
	if inc.Environment != nil || inc.IncidentType != nil || inc.Equipment != nil {
		t.Fatalf("optional fields must stay nil: %+v", inc)
	}
}

func TestIncidentsListFilters(t *testing.T) {
	db := testDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	if _, err := incidents.Insert(ctx, sampleRecord("Moche", "Incidencia", base)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := incidents.Insert(ctx, sampleRecord("Colón", "Mudanza", base.AddDate(0, 0, 2))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	bySite, err := incidents.List(ctx, IncidentFilter{Site: "Moche"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bySite) != 1 || bySite[0].Site != "Moche" {
		t.Fatalf("site filter got %+v", bySite)
	}

	byDate, err := incidents.List(ctx, IncidentFilter{From: base.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byDate) != 1 || byDate[0].Site != "Colón" {
		t.Fatalf("date filter got %+v", byDate)
	}

	limited, err := incidents.List(ctx, IncidentFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d rows", len(limited))
	}
}

func TestIncidentsUpdateTriage(t *testing.T) {
	db := testDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	inc, err := incidents.Insert(ctx, sampleRecord("Moche", "Incidencia", time.Now().UTC()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := incidents.UpdateTriage(ctx, inc.ID, "resuelto", "")
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if updated.Status != "resuelto" || updated.Priority != "media" {
		t.Fatalf("got %s/%s", updated.Status, updated.Priority)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("updated_at not set")
	}

	if _, err := incidents.UpdateTriage(ctx, inc.ID, "archivado", ""); !errors.Is(err, ErrInvalidTriage) {
		t.Fatalf("expected ErrInvalidTriage, got %v", err)
	}
	if _, err := incidents.UpdateTriage(ctx, "nope", "resuelto", "alta"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
