package health

import (
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/analytics"
	"github.com/felixgeelhaar/vitals/pkg/domain/dependency"
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// Engine computes DetailedHealthMetrics from a record snapshot. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	weights    Weights
	thresholds Thresholds
}

// NewEngine creates an engine with normalized weights.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		weights:    cfg.Weights.Normalize(),
		thresholds: cfg.Thresholds,
	}
}

// snapshot is the per-call view of the records relative to a timeframe.
type snapshot struct {
	tf     Timeframe
	all    []tracker.Record
	active []tracker.Record // relevant to the window: created by End, not cancelled, not finished before Start
	open   []tracker.Record
	byID   map[string]tracker.Record
}

func newSnapshot(records []tracker.Record, tf Timeframe) snapshot {
	s := snapshot{
		tf:   tf,
		all:  records,
		byID: make(map[string]tracker.Record, len(records)),
	}
	for _, r := range records {
		s.byID[r.ID] = r
		if r.CreatedAt.After(tf.End) || r.Status == tracker.StatusCancelled {
			continue
		}
		if r.Status.IsComplete() && (r.CompletedAt == nil || r.CompletedAt.Before(tf.Start)) {
			continue
		}
		s.active = append(s.active, r)
		if r.IsOpen(tf.End) {
			s.open = append(s.open, r)
		}
	}
	return s
}

// CalculateHealthScore computes every sub-metric and the weighted overall score.
// An empty snapshot is valid and yields neutral metrics; only a malformed
// timeframe is an error.
func (e *Engine) CalculateHealthScore(records []tracker.Record, members team.Roster, tf Timeframe) (DetailedHealthMetrics, error) {
	if err := tf.Validate(); err != nil {
		return DetailedHealthMetrics{}, err
	}

	s := newSnapshot(records, tf)
	now := tf.End

	m := DetailedHealthMetrics{
		TotalTasks:         len(s.active),
		TaskCompletionRate: e.completionRate(s),
		AverageTaskAge:     averageAgeDays(s.open, now),
	}
	for _, r := range s.open {
		if r.IsOverdue(now) {
			m.OverdueTasksCount++
		}
	}

	var velocityScore float64
	m.TeamVelocity, m.VelocityTrend, velocityScore = e.velocity(s)
	m.WorkloadDistribution = e.workload(s.open, members)
	m.DependencyHealth = e.dependencies(s)
	m.BlockedTasksCount = m.DependencyHealth.BlockedTasks
	m.QualityIndicators = e.quality(s.active)
	m.TimelineAdherence = e.timeline(s)

	m.SubScores = SubScores{
		Completion: m.TaskCompletionRate,
		Velocity:   velocityScore,
		Workload:   m.WorkloadDistribution.Score,
		Dependency: m.DependencyHealth.HealthScore,
		Quality:    m.QualityIndicators.QualityScore,
		Timeline:   m.TimelineAdherence.AdherenceScore,
	}
	m.OverallScore = clampScore(m.SubScores.Weighted(e.weights))
	m.RiskFactors, m.Recommendations = e.findings(m)

	return m, nil
}

func (e *Engine) completionRate(s snapshot) float64 {
	completed := 0
	for _, r := range s.active {
		if r.CompletedWithin(s.tf.Start, s.tf.End) {
			completed++
		}
	}
	return percent(completed, len(s.active))
}

// velocity compares completions in the timeframe with the equal window before it.
func (e *Engine) velocity(s snapshot) (float64, analytics.VelocityTrend, float64) {
	prevTf := s.tf.Previous()
	current, previous := 0, 0
	for _, r := range s.all {
		switch {
		case r.CompletedWithin(s.tf.Start, s.tf.End):
			current++
		case r.CompletedWithin(prevTf.Start, prevTf.End):
			previous++
		}
	}

	curWindow := analytics.NewVelocityWindow(current, s.tf.Duration())
	prevWindow := analytics.NewVelocityWindow(previous, prevTf.Duration())
	trend := analytics.CompareWindows(curWindow, prevWindow, e.thresholds.VelocityTolerance)

	score := 50.0
	if peak := math.Max(float64(current), float64(previous)); peak > 0 {
		score = 50 + 50*float64(current-previous)/peak
	}
	return curWindow.Velocity, trend, clampScore(score)
}

// workload spreads open work over the roster. Without a roster or without
// assigned work the distribution is reported as balanced.
func (e *Engine) workload(open []tracker.Record, roster team.Roster) WorkloadDistribution {
	wd := WorkloadDistribution{
		Balanced:          true,
		Score:             100,
		Members:           []MemberLoad{},
		OverloadedMembers: []string{},
	}
	for _, r := range open {
		if r.IsUnassigned() {
			wd.UnassignedTasks++
		}
	}
	if len(roster) == 0 {
		return wd
	}

	loads := make([]int, len(roster))
	total := 0
	for _, r := range open {
		seen := make(map[int]bool, len(r.Assignees))
		for _, a := range r.Assignees {
			idx := roster.IndexOf(a)
			if idx < 0 || seen[idx] {
				continue
			}
			seen[idx] = true
			loads[idx]++
			total++
		}
	}

	values := make([]float64, len(loads))
	for i, l := range loads {
		values[i] = float64(l)
		wd.Members = append(wd.Members, MemberLoad{
			MemberID:  roster[i].ID,
			Name:      roster[i].DisplayName(),
			OpenTasks: l,
			Share:     percent(l, total),
		})
	}

	stats := analytics.Summarize(values)
	if stats.Mean == 0 {
		return wd
	}

	wd.Variation = stats.Variability()
	wd.Balanced = stats.IsConsistent(e.thresholds.WorkloadMaxVariation)
	wd.Score = clampScore(100 * (1 - math.Min(1, wd.Variation)))
	for i, l := range loads {
		if float64(l) > stats.Mean*e.thresholds.OverloadFactor {
			wd.OverloadedMembers = append(wd.OverloadedMembers, roster[i].DisplayName())
		}
	}
	return wd
}

// dependencies scores blocking density among open records. Blockers missing
// from the snapshot are assumed unresolved.
func (e *Engine) dependencies(s snapshot) DependencyHealth {
	now := s.tf.End
	graph := dependency.NewBlockingGraph()
	for _, r := range s.open {
		for _, b := range r.BlockedBy {
			if b == "" || b == r.ID {
				continue
			}
			_ = graph.AddEdge(b, r.ID)
		}
		for _, x := range r.Blocks {
			if x == "" || x == r.ID {
				continue
			}
			_ = graph.AddEdge(r.ID, x)
		}
	}

	dh := DependencyHealth{
		HealthScore:          100,
		Relationships:        graph.EdgeCount(),
		CircularDependencies: graph.HasCycle(),
	}
	if len(s.open) == 0 {
		return dh
	}

	for _, r := range s.open {
		blocked := r.Status == tracker.StatusBlocked
		for _, b := range graph.BlockersOf(r.ID) {
			if blocker, ok := s.byID[b]; !ok || blocker.IsOpen(now) {
				blocked = true
				break
			}
		}
		if blocked {
			dh.BlockedTasks++
		}

		for _, x := range graph.Blocks(r.ID) {
			if target, ok := s.byID[x]; ok && target.IsOpen(now) {
				dh.BlockingTasks++
				break
			}
		}
	}

	density := (float64(dh.BlockedTasks) + 0.5*float64(dh.BlockingTasks)) / float64(len(s.open))
	dh.HealthScore = clampScore(100 * (1 - math.Min(1, density)))
	return dh
}

func (e *Engine) quality(active []tracker.Record) QualityIndicators {
	qi := QualityIndicators{QualityScore: 100}
	if len(active) == 0 {
		return qi
	}
	flagged := 0
	for _, r := range active {
		if r.Defect {
			qi.DefectCount++
		}
		if r.Rework {
			qi.ReworkCount++
		}
		if r.Defect || r.Rework {
			flagged++
		}
	}
	qi.DefectRate = percent(flagged, len(active))
	qi.QualityScore = clampScore(100 - qi.DefectRate)
	return qi
}

// timeline measures dated work finished in the window plus open overdue work.
// The on-time share is reduced by the spread of delays.
func (e *Engine) timeline(s snapshot) TimelineAdherence {
	ta := TimelineAdherence{AdherenceScore: 100}
	now := s.tf.End
	var delays []float64
	for _, r := range s.active {
		if r.DueAt == nil {
			continue
		}
		switch {
		case r.CompletedWithin(s.tf.Start, s.tf.End):
			late := days(r.CompletedAt.Sub(*r.DueAt))
			if late <= 0 {
				ta.OnTime++
				delays = append(delays, 0)
			} else {
				ta.Late++
				delays = append(delays, late)
			}
		case r.IsOverdue(now):
			ta.Late++
			delays = append(delays, days(now.Sub(*r.DueAt)))
		}
	}

	ta.Tracked = ta.OnTime + ta.Late
	if ta.Tracked == 0 {
		return ta
	}

	stats := analytics.Summarize(delays)
	ta.AverageDelayDays = stats.Mean
	ta.DelayStdDevDays = stats.StdDev
	penalty := math.Min(e.thresholds.LatenessPenaltyCap, e.thresholds.LatenessPenaltyPerDay*stats.StdDev)
	ta.AdherenceScore = clampScore(percent(ta.OnTime, ta.Tracked) - penalty)
	return ta
}

// findings derives the risk factor flags and raw recommendations from computed metrics.
func (e *Engine) findings(m DetailedHealthMetrics) ([]string, []string) {
	factors := []string{}
	recs := []string{}
	add := func(factor, rec string) {
		factors = append(factors, factor)
		recs = append(recs, rec)
	}
	t := e.thresholds

	if m.OverdueTasksCount > 0 {
		add(fmt.Sprintf("%d overdue tasks", m.OverdueTasksCount),
			"Address overdue tasks immediately and renegotiate unrealistic due dates")
	}
	if m.DependencyHealth.CircularDependencies {
		add("circular blocking dependencies detected",
			"Break circular blocking chains urgently so work can proceed")
	}
	if m.BlockedTasksCount > 0 {
		add(fmt.Sprintf("%d blocked tasks", m.BlockedTasksCount),
			"Review blocked tasks and resolve their blockers")
	}
	if !m.WorkloadDistribution.Balanced {
		add("workload imbalance detected",
			"Implement workload rebalancing across team members")
	}
	if m.WorkloadDistribution.UnassignedTasks > 0 {
		add(fmt.Sprintf("%d open tasks without an assignee", m.WorkloadDistribution.UnassignedTasks),
			"Assign clear owners to unassigned work")
	}
	if m.TotalTasks > 0 && m.TaskCompletionRate < t.LowCompletion {
		add("low task completion rate",
			"Review task prioritization and scope to lift the completion rate")
	}
	if m.VelocityTrend.IsNegative() {
		add("declining velocity",
			"Investigate the causes of declining throughput")
	}
	if m.QualityIndicators.QualityScore < t.QualityMedium {
		add("elevated defect and rework rate",
			"Implement stricter code review and testing practices")
	}
	if m.TimelineAdherence.AdherenceScore < t.TimelineMedium {
		add("poor timeline adherence",
			"Improve estimation accuracy and due date planning")
	}
	if m.AverageTaskAge > t.StaleTaskAgeDays {
		add("open tasks are aging",
			fmt.Sprintf("Triage open tasks older than %.0f days", t.StaleTaskAgeDays))
	}
	return factors, recs
}

func averageAgeDays(open []tracker.Record, now time.Time) float64 {
	if len(open) == 0 {
		return 0
	}
	var total float64
	for _, r := range open {
		total += math.Max(0, days(now.Sub(r.CreatedAt)))
	}
	return total / float64(len(open))
}

func days(d time.Duration) float64 {
	return d.Hours() / 24
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
