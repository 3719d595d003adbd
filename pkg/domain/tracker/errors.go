package tracker

import (
	"errors"
	"fmt"
)

// Tracker domain errors.
var (
	// ErrInvalidParam indicates a malformed request parameter.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrScopeNotFound indicates the data source does not know the requested scope.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrUnauthorized indicates the data source rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidParamError names the offending request parameter.
type InvalidParamError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParamError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// Is allows errors.Is to match ErrInvalidParam.
func (e *InvalidParamError) Is(target error) bool {
	return target == ErrInvalidParam
}
