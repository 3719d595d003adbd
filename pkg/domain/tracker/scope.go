package tracker

import "strings"

// ScopeKind selects the organizational level a health analysis covers.
type ScopeKind string

const (
	ScopeWorkspace ScopeKind = "workspace"
	ScopeSpace     ScopeKind = "space"
	ScopeFolder    ScopeKind = "folder"
	ScopeList      ScopeKind = "list"
)

// AllScopeKinds returns every supported scope kind.
func AllScopeKinds() []ScopeKind {
	return []ScopeKind{ScopeWorkspace, ScopeSpace, ScopeFolder, ScopeList}
}

// IsValid returns true if the kind is supported.
func (k ScopeKind) IsValid() bool {
	switch k {
	case ScopeWorkspace, ScopeSpace, ScopeFolder, ScopeList:
		return true
	default:
		return false
	}
}

// Scope identifies the set of records under analysis.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

// ParseScope builds a scope from user input. An empty kind defaults to list.
func ParseScope(kind, id string) (Scope, error) {
	k := ScopeKind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" {
		k = ScopeList
	}
	s := Scope{Kind: k, ID: strings.TrimSpace(id)}
	return s, s.Validate()
}

// Validate reports malformed selectors as *InvalidParamError.
func (s Scope) Validate() error {
	if !s.Kind.IsValid() {
		return &InvalidParamError{Param: "scope_kind", Value: string(s.Kind), Reason: "must be one of workspace, space, folder, list"}
	}
	if strings.TrimSpace(s.ID) == "" {
		return &InvalidParamError{Param: "scope_id", Reason: "cannot be empty"}
	}
	return nil
}

// Matches reports whether a record belongs to the scope. Workspace scope matches everything.
func (s Scope) Matches(r Record) bool {
	switch s.Kind {
	case ScopeSpace:
		return r.Space == s.ID
	case ScopeFolder:
		return r.Folder == s.ID
	case ScopeList:
		return r.List == s.ID
	default:
		return true
	}
}

func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID
}
