package health

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/analytics"
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

var testNow = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func detailedTimeframe(t *testing.T) Timeframe {
	t.Helper()
	tf, err := NewTimeframe(DepthDetailed, testNow)
	if err != nil {
		t.Fatalf("NewTimeframe: %v", err)
	}
	return tf
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEngine_InvalidTimeframe(t *testing.T) {
	e := NewEngine(DefaultConfig())
	_, err := e.CalculateHealthScore(nil, nil, Timeframe{Start: testNow, End: testNow})
	if !errors.Is(err, ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}
	_, err = e.CalculateHealthScore(nil, nil, Timeframe{Start: testNow, End: testNow.Add(-time.Hour)})
	if !errors.Is(err, ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe for reversed window, got %v", err)
	}
}

func TestEngine_EmptySnapshot(t *testing.T) {
	e := NewEngine(DefaultConfig())
	m, err := e.CalculateHealthScore(nil, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.IsNaN(m.OverallScore) {
		t.Fatal("overall score must be defined")
	}
	// completion 0, velocity neutral 50, everything else 100
	if !approx(m.OverallScore, 67.5) {
		t.Errorf("OverallScore = %v, want 67.5", m.OverallScore)
	}
	if m.TaskCompletionRate != 0 || m.TotalTasks != 0 {
		t.Errorf("expected zero completion, got %+v", m)
	}
	if !m.WorkloadDistribution.Balanced {
		t.Error("empty roster should be balanced")
	}
	if m.RiskFactors == nil || m.Recommendations == nil {
		t.Error("byproduct lists must be non-nil")
	}
	if len(m.RiskFactors) != 0 {
		t.Errorf("expected no risk factors, got %v", m.RiskFactors)
	}
}

func TestEngine_CompletionAndVelocity(t *testing.T) {
	records := []tracker.Record{
		{ID: "r1", Status: tracker.StatusDone, CreatedAt: day(2, 20), CompletedAt: ptr(day(3, 10))},
		{ID: "r2", Status: tracker.StatusDone, CreatedAt: day(1, 20), CompletedAt: ptr(day(2, 10))},
		{ID: "r3", Status: tracker.StatusOpen, CreatedAt: day(3, 5)},
		{ID: "r4", Status: tracker.StatusCancelled, CreatedAt: day(3, 6)},
		{ID: "r5", Status: tracker.StatusOpen, CreatedAt: day(4, 5)},
	}

	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.TotalTasks != 2 {
		t.Errorf("TotalTasks = %d, want 2", m.TotalTasks)
	}
	if m.TaskCompletionRate != 50 {
		t.Errorf("TaskCompletionRate = %v, want 50", m.TaskCompletionRate)
	}
	want := analytics.VelocityTrend{Current: 1, Previous: 1, Trend: analytics.TrendStable}
	if m.VelocityTrend != want {
		t.Errorf("VelocityTrend = %+v, want %+v", m.VelocityTrend, want)
	}
	if !approx(m.TeamVelocity, 1.0/30.0) {
		t.Errorf("TeamVelocity = %v, want 1/30", m.TeamVelocity)
	}
	if m.SubScores.Velocity != 50 {
		t.Errorf("velocity sub-score = %v, want 50", m.SubScores.Velocity)
	}
	if !approx(m.AverageTaskAge, 26) {
		t.Errorf("AverageTaskAge = %v, want 26", m.AverageTaskAge)
	}
}

func TestEngine_CompletedWithoutTimestamp(t *testing.T) {
	tests := []struct {
		name           string
		records        []tracker.Record
		wantTotal      int
		wantCompletion float64
	}{
		{
			name: "dated and undated done",
			records: []tracker.Record{
				{ID: "a", Status: tracker.StatusDone, CreatedAt: day(3, 1), CompletedAt: ptr(day(3, 10))},
				{ID: "b", Status: tracker.StatusDone, CreatedAt: day(3, 1)},
			},
			wantTotal:      1,
			wantCompletion: 100,
		},
		{
			name: "undated done beside open work",
			records: []tracker.Record{
				{ID: "a", Status: tracker.StatusDone, CreatedAt: day(3, 1)},
				{ID: "b", Status: tracker.StatusOpen, CreatedAt: day(3, 1)},
			},
			wantTotal:      1,
			wantCompletion: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewEngine(DefaultConfig()).CalculateHealthScore(tt.records, nil, detailedTimeframe(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.TotalTasks != tt.wantTotal {
				t.Errorf("TotalTasks = %d, want %d", m.TotalTasks, tt.wantTotal)
			}
			if m.TaskCompletionRate != tt.wantCompletion {
				t.Errorf("TaskCompletionRate = %v, want %v", m.TaskCompletionRate, tt.wantCompletion)
			}
		})
	}
}

func TestEngine_VelocityIncreasing(t *testing.T) {
	records := []tracker.Record{
		{ID: "a", Status: tracker.StatusDone, CreatedAt: day(3, 1), CompletedAt: ptr(day(3, 10))},
		{ID: "b", Status: tracker.StatusDone, CreatedAt: day(3, 1), CompletedAt: ptr(day(3, 11))},
		{ID: "c", Status: tracker.StatusDone, CreatedAt: day(3, 1), CompletedAt: ptr(day(3, 12))},
		{ID: "d", Status: tracker.StatusDone, CreatedAt: day(2, 1), CompletedAt: ptr(day(2, 12))},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VelocityTrend.Trend != analytics.TrendIncreasing {
		t.Errorf("trend = %s, want increasing", m.VelocityTrend.Trend)
	}
	// 50 + 50*(3-1)/3
	if !approx(m.SubScores.Velocity, 50+100.0/3.0) {
		t.Errorf("velocity sub-score = %v", m.SubScores.Velocity)
	}
}

func TestEngine_Workload(t *testing.T) {
	roster := team.Roster{
		{ID: "u1", Name: "Ana"},
		{ID: "u2", Name: "Ben", Handle: "ben"},
		{ID: "u3", Name: "Cy"},
	}
	open := func(id string, assignees ...string) tracker.Record {
		return tracker.Record{ID: id, Status: tracker.StatusOpen, CreatedAt: day(3, 1), Assignees: assignees}
	}

	t.Run("imbalanced", func(t *testing.T) {
		records := []tracker.Record{
			open("1", "u1"), open("2", "u1"), open("3", "u1"), open("4", "u1", "u1"),
			open("5", "ben"), open("6", "u3"), open("7", "stranger"), open("8"),
		}
		m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, roster, detailedTimeframe(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wd := m.WorkloadDistribution
		if wd.Balanced {
			t.Error("expected imbalance")
		}
		if !approx(wd.Variation, math.Sqrt(2)/2) {
			t.Errorf("Variation = %v, want %v", wd.Variation, math.Sqrt(2)/2)
		}
		if !approx(wd.Score, 100*(1-math.Sqrt(2)/2)) {
			t.Errorf("Score = %v", wd.Score)
		}
		if !reflect.DeepEqual(wd.OverloadedMembers, []string{"Ana"}) {
			t.Errorf("OverloadedMembers = %v", wd.OverloadedMembers)
		}
		if wd.UnassignedTasks != 1 {
			t.Errorf("UnassignedTasks = %d, want 1", wd.UnassignedTasks)
		}
		if len(wd.Members) != 3 || wd.Members[0].OpenTasks != 4 || wd.Members[1].OpenTasks != 1 {
			t.Errorf("Members = %+v", wd.Members)
		}
		if !approx(wd.Members[0].Share, 4.0/6.0*100) {
			t.Errorf("Share = %v", wd.Members[0].Share)
		}
		if !containsString(m.RiskFactors, "workload imbalance detected") {
			t.Errorf("expected imbalance risk factor, got %v", m.RiskFactors)
		}
	})

	t.Run("balanced", func(t *testing.T) {
		records := []tracker.Record{
			open("1", "u1"), open("2", "u2"), open("3", "u3"),
			open("4", "u1"), open("5", "u2"), open("6", "u3"),
		}
		m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, roster, detailedTimeframe(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.WorkloadDistribution.Balanced || m.WorkloadDistribution.Score != 100 {
			t.Errorf("expected perfectly balanced, got %+v", m.WorkloadDistribution)
		}
	})

	t.Run("no assigned work", func(t *testing.T) {
		m, err := NewEngine(DefaultConfig()).CalculateHealthScore([]tracker.Record{open("1")}, roster, detailedTimeframe(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !m.WorkloadDistribution.Balanced || m.WorkloadDistribution.Score != 100 {
			t.Errorf("idle roster should be balanced, got %+v", m.WorkloadDistribution)
		}
		if len(m.WorkloadDistribution.Members) != 3 {
			t.Errorf("expected all members listed, got %+v", m.WorkloadDistribution.Members)
		}
	})
}

func TestEngine_Dependencies(t *testing.T) {
	records := []tracker.Record{
		{ID: "A", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"B"}},
		{ID: "B", Status: tracker.StatusInProgress, CreatedAt: day(3, 1)},
		{ID: "C", Status: tracker.StatusBlocked, CreatedAt: day(3, 1)},
		{ID: "D", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"E"}},
		{ID: "E", Status: tracker.StatusDone, CreatedAt: day(3, 1), CompletedAt: ptr(day(3, 5)), Blocks: []string{"D"}},
		{ID: "F", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"EXT-1"}},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dh := m.DependencyHealth
	if dh.BlockedTasks != 3 || m.BlockedTasksCount != 3 {
		t.Errorf("BlockedTasks = %d, want 3", dh.BlockedTasks)
	}
	if dh.BlockingTasks != 1 {
		t.Errorf("BlockingTasks = %d, want 1", dh.BlockingTasks)
	}
	if dh.Relationships != 3 {
		t.Errorf("Relationships = %d, want 3", dh.Relationships)
	}
	if !approx(dh.HealthScore, 30) {
		t.Errorf("HealthScore = %v, want 30", dh.HealthScore)
	}
	if dh.CircularDependencies {
		t.Error("no cycle expected")
	}
}

func TestEngine_IgnoresMalformedBlockingReferences(t *testing.T) {
	records := []tracker.Record{
		{ID: "A", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"A", ""}},
		{ID: "B", Status: tracker.StatusOpen, CreatedAt: day(3, 1), Blocks: []string{"B", ""}},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dh := m.DependencyHealth
	if dh.Relationships != 0 || dh.BlockedTasks != 0 || dh.BlockingTasks != 0 {
		t.Errorf("expected no relationships, got %+v", dh)
	}
	if dh.HealthScore != 100 || dh.CircularDependencies {
		t.Errorf("expected healthy dependencies, got %+v", dh)
	}
}

func TestEngine_CircularBlocking(t *testing.T) {
	records := []tracker.Record{
		{ID: "A", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"B"}},
		{ID: "B", Status: tracker.StatusOpen, CreatedAt: day(3, 1), BlockedBy: []string{"A"}},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.DependencyHealth.CircularDependencies {
		t.Error("expected circular dependency")
	}
	if m.DependencyHealth.HealthScore != 0 {
		t.Errorf("HealthScore = %v, want 0", m.DependencyHealth.HealthScore)
	}
	if !containsString(m.RiskFactors, "circular blocking dependencies detected") {
		t.Errorf("RiskFactors = %v", m.RiskFactors)
	}
}

func TestEngine_Quality(t *testing.T) {
	records := []tracker.Record{
		{ID: "1", Status: tracker.StatusOpen, CreatedAt: day(3, 1), Defect: true},
		{ID: "2", Status: tracker.StatusOpen, CreatedAt: day(3, 1), Defect: true, Rework: true},
		{ID: "3", Status: tracker.StatusOpen, CreatedAt: day(3, 1)},
		{ID: "4", Status: tracker.StatusOpen, CreatedAt: day(3, 1)},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qi := m.QualityIndicators
	if qi.DefectCount != 2 || qi.ReworkCount != 1 {
		t.Errorf("counts = %+v", qi)
	}
	if qi.QualityScore != 50 || qi.DefectRate != 50 {
		t.Errorf("QualityScore = %v DefectRate = %v, want 50/50", qi.QualityScore, qi.DefectRate)
	}
}

func TestEngine_Timeline(t *testing.T) {
	records := []tracker.Record{
		{ID: "T1", Status: tracker.StatusDone, CreatedAt: day(3, 1), DueAt: ptr(day(3, 12)), CompletedAt: ptr(day(3, 10))},
		{ID: "T2", Status: tracker.StatusDone, CreatedAt: day(3, 1), DueAt: ptr(day(3, 12)), CompletedAt: ptr(day(3, 15))},
		{ID: "T3", Status: tracker.StatusOpen, CreatedAt: day(3, 1), DueAt: ptr(day(3, 29))},
		{ID: "T4", Status: tracker.StatusOpen, CreatedAt: day(3, 1), DueAt: ptr(day(4, 10))},
		{ID: "T5", Status: tracker.StatusDone, CreatedAt: day(3, 1), DueAt: ptr(day(3, 20)), CompletedAt: ptr(day(3, 20))},
	}
	m, err := NewEngine(DefaultConfig()).CalculateHealthScore(records, nil, detailedTimeframe(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ta := m.TimelineAdherence
	if ta.Tracked != 4 || ta.OnTime != 2 || ta.Late != 2 {
		t.Errorf("counts = %+v", ta)
	}
	if m.OverdueTasksCount != 1 {
		t.Errorf("OverdueTasksCount = %d, want 1", m.OverdueTasksCount)
	}
	if !approx(ta.AverageDelayDays, 1.25) {
		t.Errorf("AverageDelayDays = %v, want 1.25", ta.AverageDelayDays)
	}
	want := 50 - 2*math.Sqrt(1.6875)
	if !approx(ta.AdherenceScore, want) {
		t.Errorf("AdherenceScore = %v, want %v", ta.AdherenceScore, want)
	}
	if !containsString(m.RiskFactors, "1 overdue tasks") {
		t.Errorf("RiskFactors = %v", m.RiskFactors)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	records := fixtureRecords()
	roster := team.Roster{{ID: "u1"}, {ID: "u2"}}
	e := NewEngine(DefaultConfig())
	tf := detailedTimeframe(t)

	first, err := e.CalculateHealthScore(records, roster, tf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstJSON, _ := json.Marshal(first)
	for i := 0; i < 5; i++ {
		again, err := e.CalculateHealthScore(records, roster, tf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("run %d serialized differently", i)
		}
	}
}

func TestSubScores_Monotonic(t *testing.T) {
	w := DefaultWeights.Normalize()
	base := SubScores{Velocity: 40, Workload: 70, Dependency: 55, Quality: 90, Timeline: 65}
	prev := -1.0
	for rate := 0.0; rate <= 100; rate += 2.5 {
		s := base
		s.Completion = rate
		got := clampScore(s.Weighted(w))
		if got < prev {
			t.Fatalf("score decreased from %v to %v at completion %v", prev, got, rate)
		}
		prev = got
	}

	fields := []func(*SubScores, float64){
		func(s *SubScores, v float64) { s.Velocity = v },
		func(s *SubScores, v float64) { s.Workload = v },
		func(s *SubScores, v float64) { s.Dependency = v },
		func(s *SubScores, v float64) { s.Quality = v },
		func(s *SubScores, v float64) { s.Timeline = v },
	}
	for i, set := range fields {
		lo, hi := base, base
		set(&lo, 10)
		set(&hi, 20)
		if lo.Weighted(w) > hi.Weighted(w) {
			t.Errorf("field %d is not monotonic", i)
		}
	}
}

func TestWeights_Normalize(t *testing.T) {
	w := Weights{Completion: 2, Velocity: 1, Workload: 1, Dependency: 1, Quality: 1, Timeline: 2}.Normalize()
	sum := w.Completion + w.Velocity + w.Workload + w.Dependency + w.Quality + w.Timeline
	if !approx(sum, 1) {
		t.Errorf("normalized sum = %v", sum)
	}
	if !approx(w.Completion, 0.25) {
		t.Errorf("Completion = %v, want 0.25", w.Completion)
	}
	if err := (Weights{Completion: -1, Velocity: 1, Workload: 1, Dependency: 1, Quality: 1, Timeline: 1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func fixtureRecords() []tracker.Record {
	return []tracker.Record{
		{ID: "1", Status: tracker.StatusDone, Assignees: []string{"u1"}, CreatedAt: day(3, 1), DueAt: ptr(day(3, 9)), CompletedAt: ptr(day(3, 8))},
		{ID: "2", Status: tracker.StatusDone, Assignees: []string{"u2"}, CreatedAt: day(3, 2), DueAt: ptr(day(3, 9)), CompletedAt: ptr(day(3, 12)), Rework: true},
		{ID: "3", Status: tracker.StatusInProgress, Assignees: []string{"u1"}, CreatedAt: day(3, 3), DueAt: ptr(day(3, 20))},
		{ID: "4", Status: tracker.StatusOpen, Assignees: []string{"u1"}, CreatedAt: day(3, 4), BlockedBy: []string{"3"}},
		{ID: "5", Status: tracker.StatusOpen, Assignees: []string{"u2"}, CreatedAt: day(3, 5), Defect: true},
		{ID: "6", Status: tracker.StatusDone, CreatedAt: day(2, 1), CompletedAt: ptr(day(2, 15))},
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
