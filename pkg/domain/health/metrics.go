package health

import "github.com/felixgeelhaar/vitals/pkg/domain/analytics"

// DetailedHealthMetrics is the full output of the metrics engine for one snapshot.
type DetailedHealthMetrics struct {
	OverallScore         float64                 `json:"overallScore"`
	TaskCompletionRate   float64                 `json:"taskCompletionRate"`
	OverdueTasksCount    int                     `json:"overdueTasksCount"`
	BlockedTasksCount    int                     `json:"blockedTasksCount"`
	AverageTaskAge       float64                 `json:"averageTaskAge"` // days
	TeamVelocity         float64                 `json:"teamVelocity"`   // tasks per day
	VelocityTrend        analytics.VelocityTrend `json:"velocityTrend"`
	WorkloadDistribution WorkloadDistribution    `json:"workloadDistribution"`
	DependencyHealth     DependencyHealth        `json:"dependencyHealth"`
	QualityIndicators    QualityIndicators       `json:"qualityIndicators"`
	TimelineAdherence    TimelineAdherence       `json:"timelineAdherence"`
	RiskFactors          []string                `json:"riskFactors"`
	Recommendations      []string                `json:"recommendations"`
	TotalTasks           int                     `json:"totalTasks"`
	SubScores            SubScores               `json:"subScores"`
}

// SubScores are the six normalized [0,100] inputs of OverallScore.
type SubScores struct {
	Completion float64 `json:"completion"`
	Velocity   float64 `json:"velocity"`
	Workload   float64 `json:"workload"`
	Dependency float64 `json:"dependency"`
	Quality    float64 `json:"quality"`
	Timeline   float64 `json:"timeline"`
}

// Weighted returns the weighted sum of the sub-scores.
func (s SubScores) Weighted(w Weights) float64 {
	return s.Completion*w.Completion +
		s.Velocity*w.Velocity +
		s.Workload*w.Workload +
		s.Dependency*w.Dependency +
		s.Quality*w.Quality +
		s.Timeline*w.Timeline
}

// MemberLoad is the open work assigned to one roster member.
type MemberLoad struct {
	MemberID  string  `json:"memberId"`
	Name      string  `json:"name"`
	OpenTasks int     `json:"openTasks"`
	Share     float64 `json:"share"` // percentage of assigned open tasks
}

// WorkloadDistribution describes how evenly open work is spread across the roster.
type WorkloadDistribution struct {
	Balanced          bool         `json:"balanced"`
	Score             float64      `json:"score"`
	Variation         float64      `json:"variation"` // coefficient of variation of member loads
	Members           []MemberLoad `json:"members"`
	OverloadedMembers []string     `json:"overloadedMembers"`
	UnassignedTasks   int          `json:"unassignedTasks"`
}

// DependencyHealth is the inverse of blocking relationship density.
type DependencyHealth struct {
	HealthScore          float64 `json:"healthScore"`
	BlockedTasks         int     `json:"blockedTasks"`
	BlockingTasks        int     `json:"blockingTasks"`
	Relationships        int     `json:"relationships"`
	CircularDependencies bool    `json:"circularDependencies"`
}

// QualityIndicators is the inverse of the defect and rework rate.
type QualityIndicators struct {
	QualityScore float64 `json:"qualityScore"`
	DefectCount  int     `json:"defectCount"`
	ReworkCount  int     `json:"reworkCount"`
	DefectRate   float64 `json:"defectRate"` // percentage of records flagged defect or rework
}

// TimelineAdherence is the share of dated work finished on time, penalized by lateness spread.
type TimelineAdherence struct {
	AdherenceScore   float64 `json:"adherenceScore"`
	OnTime           int     `json:"onTime"`
	Late             int     `json:"late"`
	Tracked          int     `json:"tracked"`
	AverageDelayDays float64 `json:"averageDelayDays"`
	DelayStdDevDays  float64 `json:"delayStdDevDays"`
}
