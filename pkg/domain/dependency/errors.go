package dependency

import "errors"

// Dependency domain errors.
var (
	// ErrSelfDependency indicates a record cannot block itself.
	ErrSelfDependency = errors.New("record cannot block itself")
	// ErrEmptyNode indicates an edge endpoint without an ID.
	ErrEmptyNode = errors.New("blocking relationship requires both record ids")
)
