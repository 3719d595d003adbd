// Package source provides decorators shared by every tracker.Source implementation.
package source

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// ResilienceConfig bounds how hard a source read is retried.
type ResilienceConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Timeout      time.Duration
}

// DefaultResilienceConfig returns the settings used when none are configured.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		Timeout:      60 * time.Second,
	}
}

// Resilient retries and time-limits reads against an inner source. Input,
// credential and unknown-scope errors are returned after the first attempt.
type Resilient struct {
	inner tracker.Source
	cfg   ResilienceConfig
}

// NewResilient wraps inner with the default resilience settings.
func NewResilient(inner tracker.Source) *Resilient {
	return NewResilientWithConfig(inner, DefaultResilienceConfig())
}

// NewResilientWithConfig wraps inner. Zero fields fall back to defaults.
func NewResilientWithConfig(inner tracker.Source, cfg ResilienceConfig) *Resilient {
	def := DefaultResilienceConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Resilient{inner: inner, cfg: cfg}
}

// Config returns the effective settings.
func (s *Resilient) Config() ResilienceConfig {
	return s.cfg
}

func (s *Resilient) retryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:   s.cfg.MaxAttempts,
		InitialDelay:  s.cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
		NonRetryableErrors: []error{
			tracker.ErrInvalidParam,
			tracker.ErrUnauthorized,
			tracker.ErrScopeNotFound,
		},
	}
}

// FetchRecords reads records through retry and timeout.
func (s *Resilient) FetchRecords(ctx context.Context, scope tracker.Scope, includeArchived bool) ([]tracker.Record, error) {
	r := retry.New[[]tracker.Record](s.retryConfig())
	t := timeout.New[[]tracker.Record](timeout.Config{DefaultTimeout: s.cfg.Timeout})

	return t.Execute(ctx, s.cfg.Timeout, func(ctx context.Context) ([]tracker.Record, error) {
		return r.Do(ctx, func(ctx context.Context) ([]tracker.Record, error) {
			return s.inner.FetchRecords(ctx, scope, includeArchived)
		})
	})
}

// FetchTeam reads the roster through retry and timeout.
func (s *Resilient) FetchTeam(ctx context.Context, scope tracker.Scope) (team.Roster, error) {
	r := retry.New[team.Roster](s.retryConfig())
	t := timeout.New[team.Roster](timeout.Config{DefaultTimeout: s.cfg.Timeout})

	return t.Execute(ctx, s.cfg.Timeout, func(ctx context.Context) (team.Roster, error) {
		return r.Do(ctx, func(ctx context.Context) (team.Roster, error) {
			return s.inner.FetchTeam(ctx, scope)
		})
	})
}
