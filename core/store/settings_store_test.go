package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"campus-soporte/core/form"
	"campus-soporte/core/schedule"
)

func TestSettingsOptionTreeDefaults(t *testing.T) {
	db := testDB(t)
	settings := NewSettingsStore(db, schedule.DefaultWindow())
	ctx := context.Background()

	tree, err := settings.OptionTree(ctx)
	if err != nil {
		t.Fatalf("option tree: %v", err)
	}
	want := form.DefaultOptionTree()
	if !reflect.DeepEqual(tree.Sites, want.Sites) {
		t.Fatalf("sites = %v", tree.Sites)
	}
	if !reflect.DeepEqual(tree.ApproxDurations, want.ApproxDurations) {
		t.Fatalf("durations = %v", tree.ApproxDurations)
	}
}

func TestSettingsUpdateOptionTreePartial(t *testing.T) {
	db := testDB(t)
	settings := NewSettingsStore(db, schedule.DefaultWindow())
	ctx := context.Background()

	sites, _ := json.Marshal([]string{"Moche", "Huanchaco"})
	err := settings.UpdateOptionTree(ctx, map[string]json.RawMessage{KeySites: sites})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	tree, err := settings.OptionTree(ctx)
	if err != nil {
		t.Fatalf("option tree: %v", err)
	}
	if !reflect.DeepEqual(tree.Sites, []string{"Moche", "Huanchaco"}) {
		t.Fatalf("sites = %v", tree.Sites)
	}
	// Untouched keys keep their defaults.
	if len(tree.IncidentTypes) != len(form.DefaultOptionTree().IncidentTypes) {
		t.Fatalf("incident types lost: %v", tree.IncidentTypes)
	}
}

func TestSettingsUpdateRejectsUnknownKey(t *testing.T) {
	db := testDB(t)
	settings := NewSettingsStore(db, schedule.DefaultWindow())

	err := settings.UpdateOptionTree(context.Background(), map[string]json.RawMessage{
		"colores": json.RawMessage(`["rojo"]`),
	})
	if !errors.Is(err, ErrUnknownSettingKey) {
		t.Fatalf("expected ErrUnknownSettingKey, got %v", err)
	}
}

func TestSettingsScheduleWindowConfiguredFallback(t *testing.T) {
	db := testDB(t)
	fallback := schedule.Window{Enabled: true, StartHour: 8, StartMinute: 30, EndHour: 20, EndMinute: 15}
	settings := NewSettingsStore(db, fallback)
	ctx := context.Background()

	w, err := settings.ScheduleWindow(ctx)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !reflect.DeepEqual(w, fallback) {
		t.Fatalf("expected configured fallback, got %+v", w)
	}

	// A saved window takes over; the fallback only covers the missing row.
	saved := schedule.Window{Enabled: true, StartHour: 9, EndHour: 17}
	if err := settings.SetScheduleWindow(ctx, saved); err != nil {
		t.Fatalf("set window: %v", err)
	}
	if got, _ := settings.ScheduleWindow(ctx); !reflect.DeepEqual(got, saved) {
		t.Fatalf("window = %+v", got)
	}
}

func TestSettingsScheduleWindowInvalidFallbackReverts(t *testing.T) {
	db := testDB(t)
	settings := NewSettingsStore(db, schedule.Window{Enabled: true, StartHour: 99})

	w, err := settings.ScheduleWindow(context.Background())
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !reflect.DeepEqual(w, schedule.DefaultWindow()) {
		t.Fatalf("expected default window, got %+v", w)
	}
}

func TestSettingsScheduleWindowRoundTrip(t *testing.T) {
	db := testDB(t)
	settings := NewSettingsStore(db, schedule.DefaultWindow())
	ctx := context.Background()

	w, err := settings.ScheduleWindow(ctx)
	if err != nil {
		t.Fatalf("default window: %v", err)
	}
	if !reflect.DeepEqual(w, schedule.DefaultWindow()) {
		t.Fatalf("expected default window, got %+v", w)
	}

	custom := schedule.Window{Enabled: true, StartHour: 8, StartMinute: 30, EndHour: 18}
	if err := settings.SetScheduleWindow(ctx, custom); err != nil {
		t.Fatalf("set window: %v", err)
	}
	got, err := settings.ScheduleWindow(ctx)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if !reflect.DeepEqual(got, custom) {
		t.Fatalf("window = %+v", got)
	}

	if err := settings.SetScheduleWindow(ctx, schedule.Window{StartHour: 25}); err == nil {
		t.Fatal("invalid window accepted")
	}
}
