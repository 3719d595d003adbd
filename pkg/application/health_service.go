package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/health"
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalysisFailedPrefix starts every data-source error returned by AnalyzeProjectHealth.
const AnalysisFailedPrefix = "project health analysis failed"

// AnalysisRequest is the inbound analysis call.
type AnalysisRequest struct {
	Scope           tracker.Scope
	IncludeArchived bool
	Depth           string
}

// HealthService orchestrates a project health analysis: it resolves the
// timeframe, fetches the snapshot and runs the scoring pipeline.
type HealthService struct {
	source   tracker.Source
	pipeline *health.Pipeline
	clock    func() time.Time
	logger   *slog.Logger
}

// NewHealthService creates a HealthService. A nil logger falls back to slog.Default().
func NewHealthService(source tracker.Source, pipeline *health.Pipeline, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		source:   source,
		pipeline: pipeline,
		clock:    time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used to anchor the timeframe.
func (s *HealthService) WithClock(clock func() time.Time) *HealthService {
	s.clock = clock
	return s
}

// AnalyzeProjectHealth returns a complete result or a single error, never both.
// Input errors are returned as is; fetch failures carry AnalysisFailedPrefix.
// A roster failure only degrades workload scoring.
func (s *HealthService) AnalyzeProjectHealth(ctx context.Context, req AnalysisRequest) (*health.AnalysisResult, error) {
	if err := req.Scope.Validate(); err != nil {
		return nil, err
	}
	depth, err := health.ParseDepth(req.Depth)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis_depth: %w", err)
	}
	tf, err := health.NewTimeframe(depth, s.clock().UTC())
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"request_id", uuid.New().String(),
		"scope", req.Scope.String(),
		"depth", string(depth))
	logger.Info("analyzing project health",
		"include_archived", req.IncludeArchived,
		"start", tf.Start,
		"end", tf.End)

	var (
		records []tracker.Record
		roster  team.Roster
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.source.FetchRecords(gctx, req.Scope, req.IncludeArchived)
		return err
	})
	g.Go(func() error {
		members, err := s.source.FetchTeam(gctx, req.Scope)
		if err != nil {
			logger.Warn("team roster unavailable, workload treated as balanced", "error", err)
			return nil
		}
		roster = members
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to fetch records", "error", err)
		return nil, fmt.Errorf("%s: %w", AnalysisFailedPrefix, err)
	}

	result, err := s.pipeline.Run(records, roster, tf)
	if err != nil {
		return nil, err
	}

	logger.Info("project health analyzed",
		"records", len(records),
		"members", len(roster),
		"score", result.Summary.OverallScore,
		"grade", string(result.Summary.HealthGrade),
		"risks", len(result.Risks))
	return result, nil
}
