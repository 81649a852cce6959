package form

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var testReporter = Reporter{ID: "r1", FullName: "Ana Torres", Email: "ana@uni.edu"}

func TestAssembleIncidentComplete(t *testing.T) {
	tree := DefaultOptionTree()
	sel := Selection{
		Reporter:       "r1",
		Site:           "Moche",
		Pavilion:       "P. Principal",
		ActivityType:   ActivityIncident,
		Environment:    "Administrativo",
		IncidentType:   "Hardware",
		Equipment:      "Proyector",
		ApproxDuration: "15 minutos",
	}
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	rec, err := Assemble(sel, tree, testReporter, now)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if rec.ReporterName != "Ana Torres" || rec.Site != "Moche" {
		t.Fatalf("record %+v", rec)
	}
	if rec.Pavilion == nil || *rec.Pavilion != "P. Principal" {
		t.Fatalf("pavilion not carried: %+v", rec.Pavilion)
	}
	if !rec.SubmittedAt.Equal(now) {
		t.Fatalf("submitted at %v, want %v", rec.SubmittedAt, now)
	}
}

func TestAssembleMudanzaSkipsIncidentFields(t *testing.T) {
	tree := DefaultOptionTree()
	sel := Selection{
		Reporter:       "r1",
		Site:           "Moche",
		Pavilion:       "Explanada",
		ActivityType:   "Mudanza",
		ApproxDuration: "20 minutos",
	}
	rec, err := Assemble(sel, tree, testReporter, time.Now())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if rec.Environment != nil || rec.IncidentType != nil || rec.Equipment != nil {
		t.Fatalf("optional fields must stay nil: %+v", rec)
	}
}

func TestAssembleReportsAllMissingFields(t *testing.T) {
	tree := DefaultOptionTree()
	sel := Selection{
		Site:         "Moche",
		ActivityType: ActivityIncident,
	}
	_, err := Assemble(sel, tree, testReporter, time.Now())
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	want := []Field{FieldReporter, FieldApproxDuration, FieldPavilion,
		FieldEnvironment, FieldIncidentType, FieldEquipment}
	if !reflect.DeepEqual(missing.Fields, want) {
		t.Fatalf("missing = %v, want %v", missing.Fields, want)
	}
}

func TestRequiredFieldsPavilionlessSite(t *testing.T) {
	tree := OptionTree{
		Sites:           []string{"Anexo"},
		PavilionsBySite: map[string][]string{},
	}
	got := RequiredFields(Selection{Site: "Anexo", ActivityType: "Mudanza"}, tree)
	want := []Field{FieldReporter, FieldSite, FieldActivityType, FieldApproxDuration}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("required = %v, want %v", got, want)
	}
}
