// Package analytics provides throughput and distribution statistics used by health scoring.
package analytics

import "time"

// TrendDirection indicates the direction of throughput change between two windows.
type TrendDirection string

const (
	// TrendIncreasing indicates more work finished in the current window.
	TrendIncreasing TrendDirection = "increasing"
	// TrendDecreasing indicates less work finished in the current window.
	TrendDecreasing TrendDirection = "decreasing"
	// TrendStable indicates throughput within tolerance of the previous window.
	TrendStable TrendDirection = "stable"
)

// VelocityWindow is throughput over one time window.
type VelocityWindow struct {
	Days     float64 `json:"days"`     // Length of the window in days
	Velocity float64 `json:"velocity"` // Tasks completed per day
	Count    int     `json:"count"`    // Tasks completed in the window
}

// NewVelocityWindow computes the per-day rate of count completions over span.
func NewVelocityWindow(count int, span time.Duration) VelocityWindow {
	days := span.Hours() / 24
	w := VelocityWindow{Days: days, Count: count}
	if days > 0 {
		w.Velocity = float64(count) / days
	}
	return w
}

// VelocityTrend compares the current window with the equal-length window before it.
type VelocityTrend struct {
	Current  int            `json:"current"`
	Previous int            `json:"previous"`
	Trend    TrendDirection `json:"trend"`
}

// CompareWindows classifies the change from previous to current.
// Changes within tolerance (a fraction of previous) are stable.
func CompareWindows(current, previous VelocityWindow, tolerance float64) VelocityTrend {
	t := VelocityTrend{Current: current.Count, Previous: previous.Count, Trend: TrendStable}
	cur, prev := float64(current.Count), float64(previous.Count)
	switch {
	case prev == 0 && cur > 0:
		t.Trend = TrendIncreasing
	case cur > prev*(1+tolerance):
		t.Trend = TrendIncreasing
	case cur < prev*(1-tolerance):
		t.Trend = TrendDecreasing
	}
	return t
}

// Delta returns current minus previous.
func (t VelocityTrend) Delta() int {
	return t.Current - t.Previous
}

// IsPositive returns true if throughput is increasing.
func (t VelocityTrend) IsPositive() bool {
	return t.Trend == TrendIncreasing
}

// IsNegative returns true if throughput is decreasing.
func (t VelocityTrend) IsNegative() bool {
	return t.Trend == TrendDecreasing
}
