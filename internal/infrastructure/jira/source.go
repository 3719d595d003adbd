// Package jira reads Jira issues as tracker records through the REST v2 API.
package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

const (
	pageSize     = 100
	searchFields = "summary,status,assignee,created,duedate,resolutiondate,issuelinks,issuetype,labels,project,parent"
	timeLayout   = "2006-01-02T15:04:05.000-0700"
	dateLayout   = "2006-01-02"
)

// Config holds the Jira connection settings.
type Config struct {
	BaseURL    string
	Email      string
	APIToken   string
	HTTPClient *http.Client
}

// Source implements tracker.Source over Jira.
type Source struct {
	baseURL string
	auth    string
	client  *http.Client
}

// NewSource validates cfg and creates a Jira source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.BaseURL == "" || cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira configuration missing (base_url, email, api_token required)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{
		baseURL: base,
		auth:    base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.APIToken)),
		client:  client,
	}, nil
}

type jiraUser struct {
	AccountID    string `json:"accountId"`
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

func (u jiraUser) id() string {
	if u.AccountID != "" {
		return u.AccountID
	}
	return u.Name
}

type jiraLinkedIssue struct {
	Key string `json:"key"`
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name           string `json:"name"`
			StatusCategory struct {
				Key string `json:"key"`
			} `json:"statusCategory"`
		} `json:"status"`
		Assignee       *jiraUser `json:"assignee"`
		Created        string    `json:"created"`
		DueDate        string    `json:"duedate"`
		ResolutionDate string    `json:"resolutiondate"`
		IssueType      struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Labels  []string `json:"labels"`
		Project struct {
			Key string `json:"key"`
		} `json:"project"`
		Parent     *jiraLinkedIssue `json:"parent"`
		IssueLinks []struct {
			Type struct {
				Name string `json:"name"`
			} `json:"type"`
			InwardIssue  *jiraLinkedIssue `json:"inwardIssue"`
			OutwardIssue *jiraLinkedIssue `json:"outwardIssue"`
		} `json:"issuelinks"`
	} `json:"fields"`
}

type searchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

// JQL builds the search query for a scope. Space and list select a project,
// folder selects the children of a parent issue, workspace selects everything.
func JQL(scope tracker.Scope) string {
	switch scope.Kind {
	case tracker.ScopeWorkspace:
		return "ORDER BY created ASC"
	case tracker.ScopeFolder:
		return fmt.Sprintf("parent = %q ORDER BY created ASC", scope.ID)
	default:
		return fmt.Sprintf("project = %q ORDER BY created ASC", scope.ID)
	}
}

// FetchRecords pages through the JQL search for scope.
func (s *Source) FetchRecords(ctx context.Context, scope tracker.Scope, includeArchived bool) ([]tracker.Record, error) {
	var records []tracker.Record
	for startAt := 0; ; {
		q := url.Values{}
		q.Set("jql", JQL(scope))
		q.Set("fields", searchFields)
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(pageSize))

		var page searchResponse
		if err := s.get(ctx, "search?"+q.Encode(), scope, &page); err != nil {
			return nil, err
		}
		for _, issue := range page.Issues {
			r, err := toRecord(issue)
			if err != nil {
				return nil, err
			}
			if r.Archived && !includeArchived {
				continue
			}
			records = append(records, r)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}
	return records, nil
}

// FetchTeam returns the users assignable in the project, or all users for a workspace.
func (s *Source) FetchTeam(ctx context.Context, scope tracker.Scope) (team.Roster, error) {
	q := url.Values{}
	q.Set("maxResults", "1000")
	path := "users/search?" + q.Encode()
	if scope.Kind != tracker.ScopeWorkspace {
		q.Set("project", projectKey(scope))
		path = "user/assignable/search?" + q.Encode()
	}

	var users []jiraUser
	if err := s.get(ctx, path, scope, &users); err != nil {
		return nil, err
	}
	roster := make(team.Roster, 0, len(users))
	for _, u := range users {
		roster = append(roster, team.Member{ID: u.id(), Name: u.DisplayName, Handle: u.EmailAddress})
	}
	return roster, nil
}

// projectKey derives the project from a parent issue key for folder scopes.
func projectKey(scope tracker.Scope) string {
	if scope.Kind == tracker.ScopeFolder {
		if i := strings.LastIndex(scope.ID, "-"); i > 0 {
			return scope.ID[:i]
		}
	}
	return scope.ID
}

func (s *Source) get(ctx context.Context, path string, scope tracker.Scope, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/api/2/"+path, nil)
	if err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+s.auth)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("jira: read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: jira api error (%d)", tracker.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", tracker.ErrScopeNotFound, scope)
	case resp.StatusCode >= 400:
		return fmt.Errorf("jira api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("jira: decode response: %w", err)
	}
	return nil
}

func toRecord(issue jiraIssue) (tracker.Record, error) {
	f := issue.Fields
	created, err := time.Parse(timeLayout, f.Created)
	if err != nil {
		return tracker.Record{}, fmt.Errorf("jira: issue %s created: %w", issue.Key, err)
	}

	labels := make(map[string]bool, len(f.Labels))
	for _, l := range f.Labels {
		labels[strings.ToLower(l)] = true
	}

	r := tracker.Record{
		ID:        issue.Key,
		Title:     f.Summary,
		Status:    mapStatus(f.Status.Name, f.Status.StatusCategory.Key),
		Space:     f.Project.Key,
		List:      f.Project.Key,
		CreatedAt: created,
		Defect:    strings.EqualFold(f.IssueType.Name, "bug"),
		Rework:    labels["rework"],
		Archived:  labels["archived"],
	}
	if f.Parent != nil {
		r.Folder = f.Parent.Key
	}
	if f.Assignee != nil {
		r.Assignees = []string{f.Assignee.id()}
	}
	if f.DueDate != "" {
		if due, err := time.Parse(dateLayout, f.DueDate); err == nil {
			r.DueAt = &due
		}
	}
	if r.Status == tracker.StatusDone && f.ResolutionDate != "" {
		if done, err := time.Parse(timeLayout, f.ResolutionDate); err == nil {
			r.CompletedAt = &done
		}
	}
	for _, link := range f.IssueLinks {
		if !strings.EqualFold(link.Type.Name, "blocks") {
			continue
		}
		if link.InwardIssue != nil {
			r.BlockedBy = append(r.BlockedBy, link.InwardIssue.Key)
		}
		if link.OutwardIssue != nil {
			r.Blocks = append(r.Blocks, link.OutwardIssue.Key)
		}
	}
	return r, nil
}

// mapStatus prefers a known status name and falls back to the status category.
func mapStatus(name, category string) tracker.Status {
	if st, err := tracker.ParseStatus(name); err == nil {
		return st
	}
	switch category {
	case "done":
		return tracker.StatusDone
	case "indeterminate":
		return tracker.StatusInProgress
	default:
		return tracker.StatusOpen
	}
}
