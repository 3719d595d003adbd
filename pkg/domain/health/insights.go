package health

import "fmt"

// Insights are human-readable observations derived from metrics and risks.
type Insights struct {
	KeyStrengths     []string `json:"keyStrengths"`
	CriticalIssues   []string `json:"criticalIssues"`
	ImprovementAreas []string `json:"improvementAreas"`
}

// GenerateInsights lists strengths, critical issues, and improvement areas.
// Lists may be empty and are not deduplicated.
func GenerateInsights(m DetailedHealthMetrics, risks []RiskAssessment, t Thresholds) Insights {
	in := Insights{
		KeyStrengths:     []string{},
		CriticalIssues:   []string{},
		ImprovementAreas: []string{},
	}

	if m.TaskCompletionRate >= t.StrongCompletion {
		in.KeyStrengths = append(in.KeyStrengths,
			fmt.Sprintf("High task completion rate (%.1f%%)", m.TaskCompletionRate))
	}
	if m.VelocityTrend.IsPositive() {
		in.KeyStrengths = append(in.KeyStrengths,
			fmt.Sprintf("Team velocity is increasing (%+d tasks vs previous period)", m.VelocityTrend.Delta()))
	}
	if m.WorkloadDistribution.Balanced {
		in.KeyStrengths = append(in.KeyStrengths, "Workload is well balanced across the team")
	}
	if m.QualityIndicators.QualityScore >= t.StrongQuality {
		in.KeyStrengths = append(in.KeyStrengths,
			fmt.Sprintf("Strong quality indicators (score %.1f)", m.QualityIndicators.QualityScore))
	}

	for _, r := range risks {
		if r.Level == SeverityCritical {
			in.CriticalIssues = append(in.CriticalIssues, r.Description)
		}
	}
	if m.OverdueTasksCount > t.CriticalOverdueInsight {
		in.CriticalIssues = append(in.CriticalIssues,
			fmt.Sprintf("%d overdue tasks need immediate attention", m.OverdueTasksCount))
	}

	if m.TimelineAdherence.AdherenceScore < t.WeakTimeline {
		in.ImprovementAreas = append(in.ImprovementAreas,
			fmt.Sprintf("Timeline adherence needs improvement (%.1f%%)", m.TimelineAdherence.AdherenceScore))
	}
	if m.DependencyHealth.HealthScore < t.WeakDependency {
		in.ImprovementAreas = append(in.ImprovementAreas,
			fmt.Sprintf("Dependency management needs attention (health %.1f)", m.DependencyHealth.HealthScore))
	}
	if !m.WorkloadDistribution.Balanced {
		in.ImprovementAreas = append(in.ImprovementAreas, "Workload distribution across team members is uneven")
	}

	return in
}
