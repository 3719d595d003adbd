package health

// Direction is the directional label of a trend.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDeclining Direction = "declining"
)

// Trends holds directional signals for velocity, quality, and timeline.
type Trends struct {
	VelocityTrend Direction `json:"velocityTrend"`
	QualityTrend  Direction `json:"qualityTrend"`
	TimelineTrend Direction `json:"timelineTrend"`
}

// AnalyzeTrends maps metrics to directions. A score at the improving cutoff
// improves; only scores strictly below the declining cutoff decline.
func AnalyzeTrends(m DetailedHealthMetrics, t Thresholds) Trends {
	velocity := DirectionStable
	switch {
	case m.VelocityTrend.IsPositive():
		velocity = DirectionImproving
	case m.VelocityTrend.IsNegative():
		velocity = DirectionDeclining
	}
	return Trends{
		VelocityTrend: velocity,
		QualityTrend:  classify(m.QualityIndicators.QualityScore, t.QualityImproving, t.QualityDeclining),
		TimelineTrend: classify(m.TimelineAdherence.AdherenceScore, t.TimelineImproving, t.TimelineDeclining),
	}
}

func classify(score, improving, declining float64) Direction {
	switch {
	case score >= improving:
		return DirectionImproving
	case score < declining:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}
