package health

import "errors"

// Health domain errors.
var (
	// ErrInvalidTimeframe indicates a timeframe whose end is not after its start.
	ErrInvalidTimeframe = errors.New("invalid timeframe: end must be after start")
	// ErrUnknownDepth indicates an analysis depth outside basic, detailed, comprehensive.
	ErrUnknownDepth = errors.New("unknown analysis depth")
	// ErrInvalidConfig indicates weights or thresholds that cannot produce a valid score.
	ErrInvalidConfig = errors.New("invalid health configuration")
)
