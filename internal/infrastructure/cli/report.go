package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/vitals/pkg/domain/health"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().Width(14)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func gradeStyle(g health.Grade) lipgloss.Style {
	switch g {
	case health.GradeA, health.GradeB:
		return goodStyle.Bold(true)
	case health.GradeC:
		return warnStyle.Bold(true)
	default:
		return badStyle.Bold(true)
	}
}

func severityStyle(s health.Severity) lipgloss.Style {
	switch s {
	case health.SeverityCritical, health.SeverityHigh:
		return badStyle
	case health.SeverityMedium:
		return warnStyle
	default:
		return mutedStyle
	}
}

func directionStyle(d health.Direction) lipgloss.Style {
	switch d {
	case health.DirectionImproving:
		return goodStyle
	case health.DirectionDeclining:
		return badStyle
	default:
		return mutedStyle
	}
}

// renderReport formats an analysis result for the terminal.
func renderReport(scope tracker.Scope, r *health.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Project Health: "+scope.String()) + "\n\n")
	fmt.Fprintf(&b, "%s %s  %s\n",
		labelStyle.Render("Score"),
		fmt.Sprintf("%.1f/100", r.Summary.OverallScore),
		gradeStyle(r.Summary.HealthGrade).Render(fmt.Sprintf("%s (%s)", r.Summary.HealthGrade, r.Summary.Status)))
	fmt.Fprintf(&b, "%s %d (%.1f%% complete)\n", labelStyle.Render("Tasks"), r.Metrics.TotalTasks, r.Metrics.TaskCompletionRate)
	fmt.Fprintf(&b, "%s %.2f tasks/day\n", labelStyle.Render("Velocity"), r.Metrics.TeamVelocity)

	b.WriteString(sectionStyle.Render("Scores") + "\n")
	sub := r.Metrics.SubScores
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"Completion", sub.Completion},
		{"Velocity", sub.Velocity},
		{"Workload", sub.Workload},
		{"Dependencies", sub.Dependency},
		{"Quality", sub.Quality},
		{"Timeline", sub.Timeline},
	} {
		fmt.Fprintf(&b, "  %s %5.1f\n", labelStyle.Render(row.name), row.value)
	}

	b.WriteString(sectionStyle.Render("Risks") + "\n")
	if len(r.Risks) == 0 {
		b.WriteString(mutedStyle.Render("  No risks detected") + "\n")
	}
	for _, risk := range r.Risks {
		level := severityStyle(risk.Level).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(risk.Level))))
		fmt.Fprintf(&b, "  %s %s\n", level, risk.Description)
		if risk.Recommendation != "" {
			fmt.Fprintf(&b, "      %s\n", mutedStyle.Render("→ "+risk.Recommendation))
		}
	}

	writeList(&b, "Strengths", r.Insights.KeyStrengths)
	writeList(&b, "Critical Issues", r.Insights.CriticalIssues)
	writeList(&b, "Improvement Areas", r.Insights.ImprovementAreas)

	b.WriteString(sectionStyle.Render("Recommendations") + "\n")
	writeBucket(&b, "Immediate", r.Recommendations.Immediate)
	writeBucket(&b, "Short term", r.Recommendations.ShortTerm)
	writeBucket(&b, "Long term", r.Recommendations.LongTerm)

	b.WriteString(sectionStyle.Render("Trends") + "\n")
	for _, row := range []struct {
		name string
		dir  health.Direction
	}{
		{"Velocity", r.Trends.VelocityTrend},
		{"Quality", r.Trends.QualityTrend},
		{"Timeline", r.Trends.TimelineTrend},
	} {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(row.name), directionStyle(row.dir).Render(string(row.dir)))
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(sectionStyle.Render(title) + "\n")
	for _, item := range items {
		fmt.Fprintf(b, "  • %s\n", item)
	}
}

func writeBucket(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "  %s\n", lipgloss.NewStyle().Bold(true).Render(title))
	for _, item := range items {
		fmt.Fprintf(b, "    - %s\n", item)
	}
}
