package analytics

import (
	"math"
	"sort"
)

// Stats holds a statistical summary of a sample.
type Stats struct {
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"stdDev"` // Population standard deviation
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

// Summarize computes Stats for values. The input slice is not modified.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	var variance float64
	for _, v := range sorted {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(sorted))

	return Stats{
		Mean:    mean,
		Median:  median,
		StdDev:  math.Sqrt(variance),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Samples: len(sorted),
	}
}

// Variability returns the coefficient of variation (StdDev/Mean).
func (s Stats) Variability() float64 {
	if s.Mean == 0 {
		return 0
	}
	return s.StdDev / s.Mean
}

// IsConsistent returns true if the coefficient of variation is below limit.
func (s Stats) IsConsistent(limit float64) bool {
	return s.Variability() <= limit
}
