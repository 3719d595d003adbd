package wiring

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/vitals/internal/infrastructure/config"
	"github.com/felixgeelhaar/vitals/internal/infrastructure/github"
	"github.com/felixgeelhaar/vitals/internal/infrastructure/jira"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
	"github.com/felixgeelhaar/vitals/pkg/source"
	"github.com/felixgeelhaar/vitals/pkg/storage"
)

// BuildSource creates the configured record source. Remote sources are
// wrapped with retry and timeout; the file source retries its own reads.
func BuildSource(ctx context.Context, cfg config.Source) (tracker.Source, error) {
	resilience := source.ResilienceConfig{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		Timeout:      cfg.Timeout,
	}

	switch cfg.Type {
	case config.SourceFile:
		return storage.NewSnapshotSource(cfg.File.Path), nil
	case config.SourceGitHub:
		gh, err := github.NewSource(ctx, github.Config{Token: cfg.GitHub.Token, BaseURL: cfg.GitHub.BaseURL})
		if err != nil {
			return nil, err
		}
		return source.NewResilientWithConfig(gh, resilience), nil
	case config.SourceJira:
		j, err := jira.NewSource(jira.Config{
			BaseURL:  cfg.Jira.BaseURL,
			Email:    cfg.Jira.Email,
			APIToken: cfg.Jira.APIToken,
		})
		if err != nil {
			return nil, err
		}
		return source.NewResilientWithConfig(j, resilience), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
