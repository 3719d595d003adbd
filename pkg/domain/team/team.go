// Package team models the read-only team roster of an organization unit.
package team

import "fmt"

// Member represents a person who can be assigned work.
type Member struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Handle string `yaml:"handle,omitempty" json:"handle,omitempty"`
}

// DisplayName returns the name, falling back to the handle and then the ID.
func (m Member) DisplayName() string {
	switch {
	case m.Name != "":
		return m.Name
	case m.Handle != "":
		return m.Handle
	default:
		return m.ID
	}
}

// Roster is an ordered list of team members.
type Roster []Member

// IndexOf returns the position of the member with the given ID or handle, or -1.
func (r Roster) IndexOf(key string) int {
	for i := range r {
		if r[i].ID == key || (r[i].Handle != "" && r[i].Handle == key) {
			return i
		}
	}
	return -1
}

// FindMember returns the member with the given ID or handle, or nil if not found.
func (r Roster) FindMember(key string) *Member {
	if i := r.IndexOf(key); i >= 0 {
		return &r[i]
	}
	return nil
}

// Validate checks that every member has an ID and that IDs are unique.
func (r Roster) Validate() error {
	seen := make(map[string]struct{}, len(r))
	for i, m := range r {
		if m.ID == "" {
			return fmt.Errorf("team member %d: id cannot be empty", i)
		}
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("duplicate team member: %s", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
