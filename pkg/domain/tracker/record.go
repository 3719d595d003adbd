// Package tracker describes the read-only records fetched from an issue tracker
// and the source contract used to fetch them.
package tracker

import "time"

// Record is an issue or task as reported by the data source. Records are never mutated.
type Record struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title,omitempty" json:"title,omitempty"`
	Status      Status     `yaml:"status" json:"status"`
	Assignees   []string   `yaml:"assignees,omitempty" json:"assignees,omitempty"`
	Space       string     `yaml:"space,omitempty" json:"space,omitempty"`
	Folder      string     `yaml:"folder,omitempty" json:"folder,omitempty"`
	List        string     `yaml:"list,omitempty" json:"list,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at" json:"created_at"`
	DueAt       *time.Time `yaml:"due_at,omitempty" json:"due_at,omitempty"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	BlockedBy   []string   `yaml:"blocked_by,omitempty" json:"blocked_by,omitempty"`
	Blocks      []string   `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Defect      bool       `yaml:"defect,omitempty" json:"defect,omitempty"`
	Rework      bool       `yaml:"rework,omitempty" json:"rework,omitempty"`
	Archived    bool       `yaml:"archived,omitempty" json:"archived,omitempty"`
}

// IsOpen reports whether the record existed and was unfinished at the given instant.
func (r Record) IsOpen(at time.Time) bool {
	if r.CreatedAt.After(at) {
		return false
	}
	return r.Status.IsOpen()
}

// IsOverdue reports whether an open record is past its due date at the given instant.
func (r Record) IsOverdue(at time.Time) bool {
	return r.IsOpen(at) && r.DueAt != nil && r.DueAt.Before(at)
}

// CompletedWithin reports whether the record was completed in [start, end].
func (r Record) CompletedWithin(start, end time.Time) bool {
	if !r.Status.IsComplete() || r.CompletedAt == nil {
		return false
	}
	c := *r.CompletedAt
	return !c.Before(start) && !c.After(end)
}

// IsUnassigned returns true if nobody owns the record.
func (r Record) IsUnassigned() bool {
	return len(r.Assignees) == 0
}
