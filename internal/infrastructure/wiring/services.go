package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/vitals/internal/infrastructure/config"
	"github.com/felixgeelhaar/vitals/pkg/application"
	"github.com/felixgeelhaar/vitals/pkg/domain/health"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// AppServices exposes the application layer wired to the configured source.
type AppServices struct {
	Config *config.Config
	Logger *slog.Logger
	Source tracker.Source
	Health *application.HealthService
}

// BuildAppServices constructs the health service for cfg.
func BuildAppServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := BuildSource(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("build %s source: %w", cfg.Source.Type, err)
	}

	pipeline, err := health.NewPipeline(cfg.Analysis)
	if err != nil {
		return nil, err
	}

	return &AppServices{
		Config: cfg,
		Logger: logger,
		Source: src,
		Health: application.NewHealthService(src, pipeline, logger.With("component", "health")),
	}, nil
}

// WithClock anchors analysis timeframes to clock instead of the wall clock.
func (s *AppServices) WithClock(clock func() time.Time) *AppServices {
	s.Health.WithClock(clock)
	return s
}
