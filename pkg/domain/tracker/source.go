package tracker

import (
	"context"

	"github.com/felixgeelhaar/vitals/pkg/domain/team"
)

// Source is the read-only contract of an external record store.
type Source interface {
	// FetchRecords returns every record in scope. Archived records are
	// included only when includeArchived is set.
	FetchRecords(ctx context.Context, scope Scope, includeArchived bool) ([]Record, error)

	// FetchTeam returns the roster of the organization unit enclosing scope.
	FetchTeam(ctx context.Context, scope Scope) (team.Roster, error)
}
