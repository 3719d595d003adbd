package health

import (
	"fmt"
	"strings"
	"time"
)

// Depth selects how far back an analysis looks.
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthDetailed      Depth = "detailed"
	DepthComprehensive Depth = "comprehensive"
)

// ParseDepth normalizes user input. An empty string yields DepthDetailed.
func ParseDepth(s string) (Depth, error) {
	d := Depth(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return DepthDetailed, nil
	}
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDepth, s)
	}
	return d, nil
}

// IsValid returns true for the three supported depths.
func (d Depth) IsValid() bool {
	switch d {
	case DepthBasic, DepthDetailed, DepthComprehensive:
		return true
	default:
		return false
	}
}

// Lookback returns the window length for the depth.
func (d Depth) Lookback() (time.Duration, error) {
	switch d {
	case DepthBasic:
		return 7 * 24 * time.Hour, nil
	case DepthDetailed:
		return 30 * 24 * time.Hour, nil
	case DepthComprehensive:
		return 90 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDepth, string(d))
	}
}

// Timeframe is the half-open analysis window. End doubles as "now" for all age
// and overdue computations, which keeps scoring independent of the wall clock.
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeframe builds the window ending at end for the given depth.
func NewTimeframe(depth Depth, end time.Time) (Timeframe, error) {
	lookback, err := depth.Lookback()
	if err != nil {
		return Timeframe{}, err
	}
	return Timeframe{Start: end.Add(-lookback), End: end}, nil
}

// Validate returns ErrInvalidTimeframe unless Start < End.
func (tf Timeframe) Validate() error {
	if !tf.End.After(tf.Start) {
		return ErrInvalidTimeframe
	}
	return nil
}

// Duration returns End - Start.
func (tf Timeframe) Duration() time.Duration {
	return tf.End.Sub(tf.Start)
}

// Previous returns the equal-length window immediately before tf.
func (tf Timeframe) Previous() Timeframe {
	return Timeframe{Start: tf.Start.Add(-tf.Duration()), End: tf.Start}
}
