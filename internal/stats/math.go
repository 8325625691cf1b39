package stats

import (
	"fmt"
	"math"
)

// Direction is the sign of a trend.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Trend is the period-over-period change of a metric.
type Trend struct {
	Value     float64   `json:"value"`
	Label     string    `json:"label"`
	Direction Direction `json:"direction"`
	Baseline  float64   `json:"baseline"`
	// Estimated marks a trend that could not be computed from real history.
	Estimated bool `json:"estimated,omitempty"`
}

// CalculateTrend returns the percentage change from previous to current.
// Without a positive baseline there is nothing to compare against and the result is 0.
func CalculateTrend(current, previous float64) float64 {
	current, previous = clamp(current), clamp(previous)
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// NewTrend builds a labelled trend for current vs previous.
func NewTrend(current, previous float64) Trend {
	v := CalculateTrend(current, previous)
	return Trend{
		Value:     v,
		Label:     trendLabel(v),
		Direction: direction(math.Round(v)),
		Baseline:  clamp(previous),
	}
}

// EstimatedTrend stands in when no comparable previous period exists.
func EstimatedTrend() Trend {
	return Trend{
		Value:     0,
		Label:     "No comparable previous period",
		Direction: DirectionStable,
		Estimated: true,
	}
}

func trendLabel(v float64) string {
	rounded := math.Round(v)
	if rounded == 0 {
		return "No change vs previous period"
	}
	return fmt.Sprintf("%+.0f%% vs previous period", rounded)
}

func direction(v float64) Direction {
	switch {
	case v > 0:
		return DirectionUp
	case v < 0:
		return DirectionDown
	}
	return DirectionStable
}

// clamp maps negative and NaN values to zero.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// percentage returns part/whole*100, or 0 for an empty whole.
func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
