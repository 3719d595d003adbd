// Package github reads repository issues as tracker records.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/vitals/pkg/domain/team"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

const perPage = 100

var (
	blockedByPattern = regexp.MustCompile(`(?i)(?:blocked by|depends on)\s+#(\d+)`)
	blocksPattern    = regexp.MustCompile(`(?i)\bblocks\s+#(\d+)`)
)

// Config holds the GitHub connection settings.
type Config struct {
	Token   string
	BaseURL string // empty for github.com
}

// Source implements tracker.Source over the GitHub issues API.
type Source struct {
	client *gh.Client
}

// NewSource creates a GitHub source. An empty token makes unauthenticated calls.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	var httpClient *http.Client
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Source{client: client}, nil
}

// repoScope is a parsed "owner/repo[/milestone]" selector.
type repoScope struct {
	owner     string
	repo      string
	milestone string
}

func parseScope(scope tracker.Scope) (repoScope, error) {
	parts := strings.SplitN(scope.ID, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return repoScope{}, &tracker.InvalidParamError{Param: "scope_id", Value: scope.ID, Reason: "expected owner/repo"}
	}
	rs := repoScope{owner: parts[0], repo: parts[1]}
	if len(parts) == 3 {
		rs.milestone = parts[2]
	}
	if scope.Kind == tracker.ScopeFolder && rs.milestone == "" {
		return repoScope{}, &tracker.InvalidParamError{Param: "scope_id", Value: scope.ID, Reason: "folder scope expects owner/repo/milestone"}
	}
	return rs, nil
}

// FetchRecords lists every issue of the repository, skipping pull requests.
func (s *Source) FetchRecords(ctx context.Context, scope tracker.Scope, includeArchived bool) ([]tracker.Record, error) {
	rs, err := parseScope(scope)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var records []tracker.Record
	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, rs.owner, rs.repo, opts)
		if err != nil {
			return nil, mapError(err, scope)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			r := toRecord(rs, issue)
			if r.Archived && !includeArchived {
				continue
			}
			if rs.milestone != "" && r.Folder != rs.milestone {
				continue
			}
			records = append(records, r)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return records, nil
}

// FetchTeam returns the repository collaborators.
func (s *Source) FetchTeam(ctx context.Context, scope tracker.Scope) (team.Roster, error) {
	rs, err := parseScope(scope)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListCollaboratorsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	var roster team.Roster
	for {
		users, resp, err := s.client.Repositories.ListCollaborators(ctx, rs.owner, rs.repo, opts)
		if err != nil {
			return nil, mapError(err, scope)
		}
		for _, u := range users {
			roster = append(roster, team.Member{ID: u.GetLogin(), Name: u.GetName(), Handle: u.GetLogin()})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return roster, nil
}

func toRecord(rs repoScope, issue *gh.Issue) tracker.Record {
	labels := make(map[string]bool, len(issue.Labels))
	for _, l := range issue.Labels {
		labels[strings.ToLower(l.GetName())] = true
	}

	r := tracker.Record{
		ID:        strconv.Itoa(issue.GetNumber()),
		Title:     issue.GetTitle(),
		Status:    issueStatus(issue, labels),
		Space:     rs.owner,
		List:      rs.repo,
		CreatedAt: issue.GetCreatedAt().Time,
		BlockedBy: issueRefs(blockedByPattern, issue.GetBody()),
		Blocks:    issueRefs(blocksPattern, issue.GetBody()),
		Defect:    labels["bug"] || labels["defect"],
		Rework:    labels["rework"] || labels["regression"],
		Archived:  labels["archived"],
	}
	for _, u := range issue.Assignees {
		r.Assignees = append(r.Assignees, u.GetLogin())
	}
	if len(r.Assignees) == 0 && issue.Assignee != nil {
		r.Assignees = []string{issue.Assignee.GetLogin()}
	}
	if m := issue.GetMilestone(); m != nil {
		r.Folder = m.GetTitle()
		if due := m.GetDueOn(); !due.IsZero() {
			r.DueAt = timePtr(due.Time)
		}
	}
	if r.Status == tracker.StatusDone {
		if closed := issue.GetClosedAt(); !closed.IsZero() {
			r.CompletedAt = timePtr(closed.Time)
		}
	}
	return r
}

func issueStatus(issue *gh.Issue, labels map[string]bool) tracker.Status {
	if issue.GetState() == "closed" {
		if issue.GetStateReason() == "not_planned" {
			return tracker.StatusCancelled
		}
		return tracker.StatusDone
	}
	switch {
	case labels["blocked"]:
		return tracker.StatusBlocked
	case labels["in progress"], labels["in-progress"]:
		return tracker.StatusInProgress
	default:
		return tracker.StatusOpen
	}
}

func issueRefs(pattern *regexp.Regexp, body string) []string {
	var refs []string
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

func mapError(err error, scope tracker.Scope) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", tracker.ErrScopeNotFound, scope, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", tracker.ErrUnauthorized, err)
		}
	}
	return fmt.Errorf("github: %w", err)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
