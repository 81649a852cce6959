// Package reports aggregates stored submissions into the figures the admin
// dashboard charts and exports are built from. Aggregation is a pure fold
// over already-fetched rows; filtering happens in the store.
package reports

import (
	"strconv"
	"strings"
	"time"

	"campus-soporte/core/store"
)

const trendDays = 30

type TrendPoint struct {
	Date  string `json:"fecha"`
	Count int    `json:"cantidad"`
}

type Stats struct {
	Total          int                `json:"total_incidencias"`
	BySite         map[string]int     `json:"incidencias_por_sede"`
	ByActivityType map[string]int     `json:"tipos_actividad"`
	ByEquipment    map[string]int     `json:"equipos_mas_afectados"`
	AvgDurationMin map[string]float64 `json:"tiempo_promedio"`
	Trend          []TrendPoint       `json:"tendencia_temporal"`
}

// durationMinutes maps the duration labels to minute estimates. "Mayor a 20
// minutos" counts as 30 so open-ended work still weighs into the average.
func durationMinutes(label string) int {
	switch label {
	case "5 minutos":
		return 5
	case "10 minutos":
		return 10
	case "15 minutos":
		return 15
	case "20 minutos":
		return 20
	case "Mayor a 20 minutos":
		return 30
	}
	// Custom labels: take a leading number of minutes if there is one.
	fields := strings.Fields(label)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// Compute aggregates incidents. now anchors the 30-day trend window.
func Compute(incidents []store.Incident, now time.Time) Stats {
	stats := Stats{
		Total:          len(incidents),
		BySite:         map[string]int{},
		ByActivityType: map[string]int{},
		ByEquipment:    map[string]int{},
		AvgDurationMin: map[string]float64{},
	}
	sums := map[string]int{}
	counts := map[string]int{}
	for _, inc := range incidents {
		stats.BySite[inc.Site]++
		stats.ByActivityType[inc.ActivityType]++
		if inc.Equipment != nil && *inc.Equipment != "" {
			stats.ByEquipment[*inc.Equipment]++
		}
		sums[inc.ActivityType] += durationMinutes(inc.ApproxDuration)
		counts[inc.ActivityType]++
	}
	for activity, sum := range sums {
		n := counts[activity]
		if n == 0 {
			continue
		}
		// one decimal
		stats.AvgDurationMin[activity] = float64(int(float64(sum)/float64(n)*10+0.5)) / 10
	}
	stats.Trend = trend(incidents, now)
	return stats
}

func trend(incidents []store.Incident, now time.Time) []TrendPoint {
	byDay := map[string]int{}
	for _, inc := range incidents {
		byDay[inc.SubmittedAt.UTC().Format("2006-01-02")]++
	}
	points := make([]TrendPoint, 0, trendDays)
	day := now.UTC().AddDate(0, 0, -(trendDays - 1))
	for i := 0; i < trendDays; i++ {
		date := day.Format("2006-01-02")
		points = append(points, TrendPoint{Date: date, Count: byDay[date]})
		day = day.AddDate(0, 0, 1)
	}
	return points
}
