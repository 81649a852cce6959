// Package schedule decides whether the submission form is open at a given
// instant, based on an admin-configured daily window in Peru civil time.
package schedule

import (
	"fmt"
	"time"
)

// Lima is the fixed civil timezone submissions are judged in. Peru does not
// observe daylight saving, so a fixed offset is exact and keeps the gate
// independent of the host's tzdata.
var Lima = time.FixedZone("America/Lima", -5*60*60)

// Window is a daily inclusive window, hours 0-23 and minutes 0-59. A window
// whose start is after its end never opens; it does not wrap past midnight.
type Window struct {
	Enabled     bool `json:"habilitado"`
	StartHour   int  `json:"hora_inicio"`
	StartMinute int  `json:"minuto_inicio"`
	EndHour     int  `json:"hora_fin"`
	EndMinute   int  `json:"minuto_fin"`
}

// DefaultWindow is the fallback used when the configured window cannot be
// read: 07:00-22:00, gate enabled. Availability fails open, not closed.
func DefaultWindow() Window {
	return Window{Enabled: true, StartHour: 7, EndHour: 22}
}

func (w Window) Valid() bool {
	return w.StartHour >= 0 && w.StartHour <= 23 &&
		w.EndHour >= 0 && w.EndHour <= 23 &&
		w.StartMinute >= 0 && w.StartMinute <= 59 &&
		w.EndMinute >= 0 && w.EndMinute <= 59
}

// String renders the window as "HH:MM - HH:MM" in 24-hour format.
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d", w.StartHour, w.StartMinute, w.EndHour, w.EndMinute)
}

// Result is the gate verdict plus the user-facing status message.
type Result struct {
	Allowed       bool   `json:"es_valido"`
	Message       string `json:"mensaje"`
	CurrentTime   string `json:"hora_actual"`
	AllowedWindow string `json:"horario_permitido"`
}

// Evaluate checks now against the window. now may be in any location; it is
// converted to Lima time before comparing. Both window ends are inclusive.
func Evaluate(w Window, now time.Time) Result {
	local := now.In(Lima)
	current := fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute())
	res := Result{
		CurrentTime:   current,
		AllowedWindow: w.String(),
	}
	if !w.Enabled {
		res.Allowed = true
		res.Message = fmt.Sprintf("El formulario está disponible. Hora actual: %s (Perú)", current)
		return res
	}
	currentMinutes := local.Hour()*60 + local.Minute()
	startMinutes := w.StartHour*60 + w.StartMinute
	endMinutes := w.EndHour*60 + w.EndMinute
	res.Allowed = currentMinutes >= startMinutes && currentMinutes <= endMinutes
	if res.Allowed {
		res.Message = fmt.Sprintf("El formulario está disponible. Hora actual: %s (Perú)", current)
	} else {
		res.Message = fmt.Sprintf("El formulario solo está disponible de %s (hora Perú). Hora actual: %s", w.String(), current)
	}
	return res
}
