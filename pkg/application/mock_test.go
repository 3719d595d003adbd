package application_test

import (
	"context"
	"sync/atomic"

	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

type MockSource struct {
	Records     []tracker.Record
	Team        team.Roster
	RecordsErr  error
	TeamErr     error
	RecordCalls atomic.Int32
	TeamCalls   atomic.Int32
	LastScope   atomic.Value
}

func (m *MockSource) FetchRecords(ctx context.Context, scope tracker.Scope, includeArchived bool) ([]tracker.Record, error) {
	m.RecordCalls.Add(1)
	m.LastScope.Store(scope)
	if m.RecordsErr != nil {
		return nil, m.RecordsErr
	}
	out := make([]tracker.Record, 0, len(m.Records))
	for _, r := range m.Records {
		if r.Archived && !includeArchived {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockSource) FetchTeam(ctx context.Context, scope tracker.Scope) (team.Roster, error) {
	m.TeamCalls.Add(1)
	if m.TeamErr != nil {
		return nil, m.TeamErr
	}
	return m.Team, nil
}
