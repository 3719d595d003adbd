package health

import (
	"fmt"
	"math"
)

// Severity is the ordinal classification of a detected problem.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities; higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// RiskCategory names the condition a finding describes. Each category yields at most one finding.
type RiskCategory string

const (
	RiskOverallHealth RiskCategory = "overall_health"
	RiskOverdueTasks  RiskCategory = "overdue_tasks"
	RiskDependencies  RiskCategory = "dependencies"
	RiskTimeline      RiskCategory = "timeline"
	RiskQuality       RiskCategory = "quality"
	RiskWorkload      RiskCategory = "workload"
	RiskVelocity      RiskCategory = "velocity"
)

// RiskAssessment is one classified finding with a remediation hint.
type RiskAssessment struct {
	Category       RiskCategory `json:"category"`
	Level          Severity     `json:"level"`
	Description    string       `json:"description"`
	Recommendation string       `json:"recommendation"`
	Confidence     float64      `json:"confidence,omitempty"`
}

// RiskAssessor applies threshold rules to computed metrics.
type RiskAssessor struct {
	thresholds Thresholds
}

// NewRiskAssessor creates an assessor using cfg's thresholds.
func NewRiskAssessor(cfg Config) *RiskAssessor {
	return &RiskAssessor{thresholds: cfg.Thresholds}
}

// AnalyzeRisks returns findings ordered by rule, never two for the same category.
func (a *RiskAssessor) AnalyzeRisks(m DetailedHealthMetrics) []RiskAssessment {
	t := a.thresholds
	risks := []RiskAssessment{}
	add := func(c RiskCategory, level Severity, desc, rec string) {
		risks = append(risks, RiskAssessment{
			Category:       c,
			Level:          level,
			Description:    desc,
			Recommendation: rec,
			Confidence:     a.confidence(m),
		})
	}

	switch score := m.OverallScore; {
	case score < t.ScoreCritical:
		add(RiskOverallHealth, SeverityCritical,
			fmt.Sprintf("Project health is critical with an overall score of %.1f", score),
			"Escalate to project leadership and run a recovery review immediately")
	case score < t.ScoreHigh:
		add(RiskOverallHealth, SeverityHigh,
			fmt.Sprintf("Project health is poor with an overall score of %.1f", score),
			"Review project scope, staffing and priorities with stakeholders")
	case score < t.ScoreMedium:
		add(RiskOverallHealth, SeverityMedium,
			fmt.Sprintf("Project health needs attention with an overall score of %.1f", score),
			"Review the weakest health indicators in the next planning session")
	}

	switch n := m.OverdueTasksCount; {
	case n > t.OverdueCritical:
		add(RiskOverdueTasks, SeverityCritical,
			fmt.Sprintf("%d tasks are overdue", n),
			"Triage overdue tasks immediately and reset realistic due dates")
	case n > t.OverdueHigh:
		add(RiskOverdueTasks, SeverityHigh,
			fmt.Sprintf("%d tasks are overdue", n),
			"Review overdue tasks and reassign or reschedule them")
	}

	// Blocked work feeds dependency health, so both share one finding.
	switch score, blocked := m.DependencyHealth.HealthScore, m.BlockedTasksCount; {
	case blocked > t.BlockedHigh:
		add(RiskDependencies, SeverityHigh,
			fmt.Sprintf("%d tasks are blocked and dependency health is %.1f", blocked, score),
			"Hold a dependency review to unblock stalled work")
	case score < t.DependencyHigh:
		add(RiskDependencies, SeverityHigh,
			fmt.Sprintf("Dependency health is low (%.1f)", score),
			"Map blocking chains and remove the critical blockers first")
	case score < t.DependencyMedium:
		add(RiskDependencies, SeverityMedium,
			fmt.Sprintf("Dependency health is below target (%.1f)", score),
			"Reduce cross-task blocking by splitting dependent work")
	}

	switch score := m.TimelineAdherence.AdherenceScore; {
	case score < t.TimelineHigh:
		add(RiskTimeline, SeverityHigh,
			fmt.Sprintf("Timeline adherence is low (%.1f%%)", score),
			"Review estimates and commitments for upcoming due dates")
	case score < t.TimelineMedium:
		add(RiskTimeline, SeverityMedium,
			fmt.Sprintf("Timeline adherence is below target (%.1f%%)", score),
			"Add buffer to estimates and track due dates more closely")
	}

	switch score := m.QualityIndicators.QualityScore; {
	case score < t.QualityHigh:
		add(RiskQuality, SeverityHigh,
			fmt.Sprintf("Quality score is low (%.1f) with %.1f%% defect or rework rate", score, m.QualityIndicators.DefectRate),
			"Implement mandatory code review and regression testing")
	case score < t.QualityMedium:
		add(RiskQuality, SeverityMedium,
			fmt.Sprintf("Quality score is below target (%.1f)", score),
			"Strengthen acceptance criteria and testing before completion")
	}

	if !m.WorkloadDistribution.Balanced {
		add(RiskWorkload, SeverityMedium,
			fmt.Sprintf("Workload is unevenly distributed (variation %.2f)", m.WorkloadDistribution.Variation),
			"Rebalance open tasks across team members to reduce overload")
	}

	if m.VelocityTrend.IsNegative() {
		add(RiskVelocity, SeverityLow,
			fmt.Sprintf("Velocity decreased from %d to %d completed tasks", m.VelocityTrend.Previous, m.VelocityTrend.Current),
			"Monitor throughput and look for new sources of friction")
	}

	return risks
}

// confidence grows with the number of records behind the metrics.
func (a *RiskAssessor) confidence(m DetailedHealthMetrics) float64 {
	if m.TotalTasks == 0 || a.thresholds.ConfidenceSampleSize <= 0 {
		return 0
	}
	c := math.Min(1, float64(m.TotalTasks)/float64(a.thresholds.ConfidenceSampleSize))
	return math.Round(c*100) / 100
}

// CountBySeverity tallies findings per level.
func CountBySeverity(risks []RiskAssessment) map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, r := range risks {
		counts[r.Level]++
	}
	return counts
}
