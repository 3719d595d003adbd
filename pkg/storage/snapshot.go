package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSnapshot indicates a snapshot document that does not match the schema.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

const snapshotSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["records"],
  "properties": {
    "workspace": { "type": "string" },
    "records": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "status", "created_at"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "title": { "type": "string" },
          "status": { "type": "string", "minLength": 1 },
          "assignees": { "type": "array", "items": { "type": "string" } },
          "space": { "type": "string" },
          "folder": { "type": "string" },
          "list": { "type": "string" },
          "created_at": { "type": "string" },
          "due_at": { "type": "string" },
          "completed_at": { "type": "string" },
          "blocked_by": { "type": "array", "items": { "type": "string" } },
          "blocks": { "type": "array", "items": { "type": "string" } },
          "defect": { "type": "boolean" },
          "rework": { "type": "boolean" },
          "archived": { "type": "boolean" }
        }
      }
    },
    "team": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "type": "string", "minLength": 1 },
          "name": { "type": "string" },
          "handle": { "type": "string" }
        }
      }
    }
  }
}`

var snapshotSchemaLoader = gojsonschema.NewStringLoader(snapshotSchemaJSON)

// Snapshot is an exported copy of a tracker: its records and team roster.
type Snapshot struct {
	Workspace string           `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Records   []tracker.Record `yaml:"records" json:"records"`
	Team      team.Roster      `yaml:"team,omitempty" json:"team,omitempty"`
}

// SnapshotSource serves records from a YAML or JSON snapshot file. The file is
// re-read on every fetch so each analysis sees its own copy.
type SnapshotSource struct {
	path        string
	retryConfig retry.Config
}

// NewSnapshotSource creates a source reading path.
func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{
		path: path,
		retryConfig: retry.Config{
			MaxAttempts:        3,
			InitialDelay:       10 * time.Millisecond,
			BackoffPolicy:      retry.BackoffExponential,
			NonRetryableErrors: []error{os.ErrNotExist, os.ErrPermission},
		},
	}
}

// Path returns the snapshot file path.
func (s *SnapshotSource) Path() string {
	return s.path
}

// Load reads, validates and decodes the snapshot.
func (s *SnapshotSource) Load(ctx context.Context) (*Snapshot, error) {
	retryer := retry.New[[]byte](s.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- path comes from operator configuration
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file: %w", err)
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(data)
}

// ParseSnapshot validates a YAML or JSON document against the snapshot schema
// and normalizes record statuses.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var doc any
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidSnapshot)
	}

	result, err := gojsonschema.Validate(snapshotSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(issues, "; "))
	}

	var snap Snapshot
	if err := decode(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for i := range snap.Records {
		st, err := tracker.ParseStatus(string(snap.Records[i].Status))
		if err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrInvalidSnapshot, snap.Records[i].ID, err)
		}
		snap.Records[i].Status = st
	}
	if err := snap.Team.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}

// decode reads JSON documents with encoding/json and everything else as YAML.
func decode(data []byte, v any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return json.Unmarshal(trimmed, v)
	}
	return yaml.Unmarshal(data, v)
}

// FetchRecords returns the records inside scope.
func (s *SnapshotSource) FetchRecords(ctx context.Context, scope tracker.Scope, includeArchived bool) ([]tracker.Record, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := snap.checkWorkspace(scope); err != nil {
		return nil, err
	}

	records := make([]tracker.Record, 0, len(snap.Records))
	for _, r := range snap.Records {
		if r.Archived && !includeArchived {
			continue
		}
		if scope.Matches(r) {
			records = append(records, r)
		}
	}
	return records, nil
}

// FetchTeam returns the snapshot roster.
func (s *SnapshotSource) FetchTeam(ctx context.Context, scope tracker.Scope) (team.Roster, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := snap.checkWorkspace(scope); err != nil {
		return nil, err
	}
	return snap.Team, nil
}

func (snap *Snapshot) checkWorkspace(scope tracker.Scope) error {
	if scope.Kind == tracker.ScopeWorkspace && snap.Workspace != "" && snap.Workspace != scope.ID {
		return fmt.Errorf("%w: workspace %s", tracker.ErrScopeNotFound, scope.ID)
	}
	return nil
}
