package schedule

import (
	"strings"
	"testing"
	"time"
)

// limaTime builds an instant whose wall clock in Lima is the given time.
func limaTime(hour, minute int) time.Time {
	return time.Date(2026, 4, 15, hour, minute, 0, 0, Lima)
}

func TestEvaluateWindowBounds(t *testing.T) {
	w := DefaultWindow() // 07:00 - 22:00
	cases := []struct {
		hour, minute int
		allowed      bool
	}{
		{6, 59, false},
		{7, 0, true},
		{12, 30, true},
		{22, 0, true},
		{22, 1, false},
	}
	for _, tc := range cases {
		res := Evaluate(w, limaTime(tc.hour, tc.minute))
		if res.Allowed != tc.allowed {
			t.Errorf("%02d:%02d allowed = %v, want %v", tc.hour, tc.minute, res.Allowed, tc.allowed)
		}
	}
}

func TestEvaluateConvertsToLima(t *testing.T) {
	w := DefaultWindow()
	// 03:00 UTC is 22:00 in Lima, still inside the window.
	res := Evaluate(w, time.Date(2026, 4, 16, 3, 0, 0, 0, time.UTC))
	if !res.Allowed {
		t.Fatalf("expected 22:00 Lima to be allowed: %+v", res)
	}
	if res.CurrentTime != "22:00" {
		t.Fatalf("current time %q, want 22:00", res.CurrentTime)
	}
}

func TestEvaluateDisabledWindowAlwaysOpen(t *testing.T) {
	w := Window{Enabled: false, StartHour: 9, EndHour: 10}
	res := Evaluate(w, limaTime(3, 0))
	if !res.Allowed {
		t.Fatalf("disabled window must allow: %+v", res)
	}
}

func TestEvaluateInvertedWindowNeverOpens(t *testing.T) {
	w := Window{Enabled: true, StartHour: 22, EndHour: 7}
	for _, hm := range [][2]int{{23, 0}, {3, 0}, {12, 0}} {
		res := Evaluate(w, limaTime(hm[0], hm[1]))
		if res.Allowed {
			t.Errorf("%02d:%02d allowed under inverted window", hm[0], hm[1])
		}
	}
}

func TestEvaluateMessages(t *testing.T) {
	w := DefaultWindow()
	open := Evaluate(w, limaTime(10, 15))
	if !strings.Contains(open.Message, "disponible") || !strings.Contains(open.Message, "10:15") {
		t.Fatalf("open message %q", open.Message)
	}
	closed := Evaluate(w, limaTime(23, 0))
	if !strings.Contains(closed.Message, "07:00 - 22:00") {
		t.Fatalf("closed message %q", closed.Message)
	}
	if closed.AllowedWindow != "07:00 - 22:00" {
		t.Fatalf("allowed window %q", closed.AllowedWindow)
	}
}

func TestWindowValid(t *testing.T) {
	if !DefaultWindow().Valid() {
		t.Fatal("default window must be valid")
	}
	bad := Window{StartHour: 24}
	if bad.Valid() {
		t.Fatal("hour 24 must be invalid")
	}
}
