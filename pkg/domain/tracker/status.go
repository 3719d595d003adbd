package tracker

import (
	"fmt"
	"strings"
)

// Status is the normalized workflow state of a record.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// statusAliases maps the vocabulary of common trackers onto normalized statuses.
var statusAliases = map[string]Status{
	"open":        StatusOpen,
	"to do":       StatusOpen,
	"todo":        StatusOpen,
	"backlog":     StatusOpen,
	"new":         StatusOpen,
	"pending":     StatusOpen,
	"in progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"in review":   StatusInProgress,
	"review":      StatusInProgress,
	"doing":       StatusInProgress,
	"blocked":     StatusBlocked,
	"on hold":     StatusBlocked,
	"done":        StatusDone,
	"complete":    StatusDone,
	"completed":   StatusDone,
	"closed":      StatusDone,
	"resolved":    StatusDone,
	"verified":    StatusDone,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
	"won't do":    StatusCancelled,
	"wont do":     StatusCancelled,
	"not planned": StatusCancelled,
}

// AllStatuses returns all normalized statuses.
func AllStatuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusDone, StatusCancelled}
}

// ParseStatus normalizes a tracker status name.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statusAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status: %q", s)
}

// IsValid returns true if the status is a normalized status.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// IsComplete returns true if the work was finished.
func (s Status) IsComplete() bool {
	return s == StatusDone
}

// IsOpen returns true if work is still expected on the record.
func (s Status) IsOpen() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusBlocked
}
