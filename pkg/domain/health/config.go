package health

import (
	"fmt"
	"math"
)

// Weights sets the contribution of each normalized sub-score to the overall score.
type Weights struct {
	Completion float64 `yaml:"completion" json:"completion"`
	Velocity   float64 `yaml:"velocity" json:"velocity"`
	Workload   float64 `yaml:"workload" json:"workload"`
	Dependency float64 `yaml:"dependency" json:"dependency"`
	Quality    float64 `yaml:"quality" json:"quality"`
	Timeline   float64 `yaml:"timeline" json:"timeline"`
}

// DefaultWeights favors completion and splits the remainder evenly.
var DefaultWeights = Weights{
	Completion: 0.25,
	Velocity:   0.15,
	Workload:   0.15,
	Dependency: 0.15,
	Quality:    0.15,
	Timeline:   0.15,
}

func (w Weights) values() []float64 {
	return []float64{w.Completion, w.Velocity, w.Workload, w.Dependency, w.Quality, w.Timeline}
}

// Validate requires every weight to be positive and finite.
func (w Weights) Validate() error {
	for _, v := range w.values() {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights must be positive, got %+v", ErrInvalidConfig, w)
		}
	}
	return nil
}

// Normalize scales the weights so they sum to 1.
func (w Weights) Normalize() Weights {
	var sum float64
	for _, v := range w.values() {
		sum += v
	}
	if sum == 0 {
		return DefaultWeights
	}
	return Weights{
		Completion: w.Completion / sum,
		Velocity:   w.Velocity / sum,
		Workload:   w.Workload / sum,
		Dependency: w.Dependency / sum,
		Quality:    w.Quality / sum,
		Timeline:   w.Timeline / sum,
	}
}

// Thresholds holds every cutoff used by scoring, risk, insight, and trend rules.
type Thresholds struct {
	// Metrics engine
	VelocityTolerance     float64 `yaml:"velocity_tolerance" json:"velocity_tolerance"`
	WorkloadMaxVariation  float64 `yaml:"workload_max_variation" json:"workload_max_variation"`
	OverloadFactor        float64 `yaml:"overload_factor" json:"overload_factor"`
	LowCompletion         float64 `yaml:"low_completion" json:"low_completion"`
	StaleTaskAgeDays      float64 `yaml:"stale_task_age_days" json:"stale_task_age_days"`
	LatenessPenaltyPerDay float64 `yaml:"lateness_penalty_per_day" json:"lateness_penalty_per_day"`
	LatenessPenaltyCap    float64 `yaml:"lateness_penalty_cap" json:"lateness_penalty_cap"`

	// Risk assessor
	ScoreCritical        float64 `yaml:"score_critical" json:"score_critical"`
	ScoreHigh            float64 `yaml:"score_high" json:"score_high"`
	ScoreMedium          float64 `yaml:"score_medium" json:"score_medium"`
	OverdueCritical      int     `yaml:"overdue_critical" json:"overdue_critical"`
	OverdueHigh          int     `yaml:"overdue_high" json:"overdue_high"`
	BlockedHigh          int     `yaml:"blocked_high" json:"blocked_high"`
	DependencyMedium     float64 `yaml:"dependency_medium" json:"dependency_medium"`
	DependencyHigh       float64 `yaml:"dependency_high" json:"dependency_high"`
	TimelineMedium       float64 `yaml:"timeline_medium" json:"timeline_medium"`
	TimelineHigh         float64 `yaml:"timeline_high" json:"timeline_high"`
	QualityMedium        float64 `yaml:"quality_medium" json:"quality_medium"`
	QualityHigh          float64 `yaml:"quality_high" json:"quality_high"`
	ConfidenceSampleSize int     `yaml:"confidence_sample_size" json:"confidence_sample_size"`

	// Insight synthesizer
	StrongCompletion       float64 `yaml:"strong_completion" json:"strong_completion"`
	StrongQuality          float64 `yaml:"strong_quality" json:"strong_quality"`
	WeakTimeline           float64 `yaml:"weak_timeline" json:"weak_timeline"`
	WeakDependency         float64 `yaml:"weak_dependency" json:"weak_dependency"`
	CriticalOverdueInsight int     `yaml:"critical_overdue_insight" json:"critical_overdue_insight"`

	// Trend classifier
	QualityImproving  float64 `yaml:"quality_improving" json:"quality_improving"`
	QualityDeclining  float64 `yaml:"quality_declining" json:"quality_declining"`
	TimelineImproving float64 `yaml:"timeline_improving" json:"timeline_improving"`
	TimelineDeclining float64 `yaml:"timeline_declining" json:"timeline_declining"`
}

// DefaultThresholds are the reference cutoffs.
var DefaultThresholds = Thresholds{
	VelocityTolerance:     0.1,
	WorkloadMaxVariation:  0.5,
	OverloadFactor:        1.5,
	LowCompletion:         50,
	StaleTaskAgeDays:      30,
	LatenessPenaltyPerDay: 2,
	LatenessPenaltyCap:    15,

	ScoreCritical:        40,
	ScoreHigh:            60,
	ScoreMedium:          70,
	OverdueCritical:      10,
	OverdueHigh:          5,
	BlockedHigh:          5,
	DependencyMedium:     70,
	DependencyHigh:       50,
	TimelineMedium:       70,
	TimelineHigh:         50,
	QualityMedium:        70,
	QualityHigh:          50,
	ConfidenceSampleSize: 20,

	StrongCompletion:       80,
	StrongQuality:          80,
	WeakTimeline:           70,
	WeakDependency:         70,
	CriticalOverdueInsight: 10,

	QualityImproving:  75,
	QualityDeclining:  60,
	TimelineImproving: 80,
	TimelineDeclining: 60,
}

// Validate checks that paired cutoffs are ordered.
func (t Thresholds) Validate() error {
	switch {
	case t.VelocityTolerance < 0 || t.VelocityTolerance >= 1:
		return fmt.Errorf("%w: velocity_tolerance must be in [0,1)", ErrInvalidConfig)
	case t.WorkloadMaxVariation <= 0:
		return fmt.Errorf("%w: workload_max_variation must be positive", ErrInvalidConfig)
	case !(t.ScoreCritical <= t.ScoreHigh && t.ScoreHigh <= t.ScoreMedium):
		return fmt.Errorf("%w: score cutoffs must satisfy critical <= high <= medium", ErrInvalidConfig)
	case t.OverdueHigh > t.OverdueCritical:
		return fmt.Errorf("%w: overdue_high must not exceed overdue_critical", ErrInvalidConfig)
	case t.DependencyHigh > t.DependencyMedium, t.TimelineHigh > t.TimelineMedium, t.QualityHigh > t.QualityMedium:
		return fmt.Errorf("%w: high cutoffs must not exceed medium cutoffs", ErrInvalidConfig)
	case t.QualityDeclining > t.QualityImproving, t.TimelineDeclining > t.TimelineImproving:
		return fmt.Errorf("%w: declining cutoffs must not exceed improving cutoffs", ErrInvalidConfig)
	}
	return nil
}

// GradeBand maps scores at or above Min to a letter grade and status.
type GradeBand struct {
	Min    float64 `yaml:"min" json:"min"`
	Grade  Grade   `yaml:"grade" json:"grade"`
	Status Status  `yaml:"status" json:"status"`
}

// DefaultGradeBands are checked top-down; scores below the last band are F/critical.
var DefaultGradeBands = []GradeBand{
	{Min: 90, Grade: GradeA, Status: StatusExcellent},
	{Min: 80, Grade: GradeB, Status: StatusGood},
	{Min: 70, Grade: GradeC, Status: StatusFair},
	{Min: 60, Grade: GradeD, Status: StatusPoor},
}

// Config is injected into the pipeline at construction time.
type Config struct {
	Weights    Weights        `yaml:"weights" json:"weights"`
	Thresholds Thresholds     `yaml:"thresholds" json:"thresholds"`
	GradeBands []GradeBand    `yaml:"grade_bands" json:"grade_bands"`
	Rules      []KeywordRule  `yaml:"recommendation_rules" json:"recommendation_rules"`
	Defaults   BucketDefaults `yaml:"recommendation_defaults" json:"recommendation_defaults"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights,
		Thresholds: DefaultThresholds,
		GradeBands: append([]GradeBand(nil), DefaultGradeBands...),
		Rules:      append([]KeywordRule(nil), DefaultKeywordRules...),
		Defaults:   DefaultBucketDefaults,
	}
}

// Validate checks weights, thresholds, grade bands, and rules.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if len(c.GradeBands) == 0 {
		return fmt.Errorf("%w: at least one grade band is required", ErrInvalidConfig)
	}
	for i := 1; i < len(c.GradeBands); i++ {
		if c.GradeBands[i].Min >= c.GradeBands[i-1].Min {
			return fmt.Errorf("%w: grade bands must be strictly descending", ErrInvalidConfig)
		}
	}
	// Scores below the last band must still raise a high overall finding.
	if lowest := c.GradeBands[len(c.GradeBands)-1].Min; c.Thresholds.ScoreHigh < lowest {
		return fmt.Errorf("%w: thresholds.score_high %.1f is below the lowest grade band %.1f",
			ErrInvalidConfig, c.Thresholds.ScoreHigh, lowest)
	}
	for _, r := range c.Rules {
		if r.Keyword == "" || !r.Bucket.IsValid() {
			return fmt.Errorf("%w: recommendation rule %+v", ErrInvalidConfig, r)
		}
	}
	return nil
}
