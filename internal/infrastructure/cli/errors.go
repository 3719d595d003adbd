package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/vitals/pkg/domain/health"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
	"github.com/felixgeelhaar/vitals/pkg/storage"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: ExitFailure,
	}
}

func newUsageError(msg, hint string, err error) *CLIError {
	e := NewCLIError(msg, hint, err)
	e.ExitCode = ExitUsage
	return e
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var paramErr *tracker.InvalidParamError
	if errors.As(err, &paramErr) {
		return newUsageError(
			paramErr.Error(),
			"Use --scope-kind workspace|space|folder|list together with --scope <id>",
			err,
		)
	}

	switch {
	case errors.Is(err, health.ErrUnknownDepth):
		return newUsageError("invalid analysis depth", "Use --depth basic, detailed or comprehensive", err)
	case errors.Is(err, health.ErrInvalidConfig):
		return NewCLIError("invalid analysis configuration", "Review analysis.weights and analysis.thresholds in your config file", err)
	case errors.Is(err, tracker.ErrScopeNotFound):
		return NewCLIError("scope not found", "Check --scope against the configured data source", err)
	case errors.Is(err, tracker.ErrUnauthorized):
		return NewCLIError("data source rejected the credentials", "Set GITHUB_TOKEN or JIRA_API_TOKEN (or VITALS_SOURCE_* equivalents)", err)
	case errors.Is(err, storage.ErrInvalidSnapshot):
		return NewCLIError("invalid snapshot file", "Each record needs id, status and created_at; team members need id", err)
	case errors.Is(err, os.ErrNotExist):
		return NewCLIError("snapshot file not found", "Set source.file.path or create vitals-snapshot.yaml", err)
	}

	return err
}
