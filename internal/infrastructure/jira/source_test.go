package jira

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

const searchPage1 = `{"startAt": 0, "maxResults": 2, "total": 3, "issues": [
  {"key": "WEB-1", "fields": {
    "summary": "Login", "status": {"name": "Done", "statusCategory": {"key": "done"}},
    "assignee": {"accountId": "acc-ana", "displayName": "Ana"},
    "created": "2026-03-01T09:00:00.000+0000", "resolutiondate": "2026-03-08T17:30:00.000+0000",
    "duedate": "2026-03-10", "issuetype": {"name": "Story"}, "project": {"key": "WEB"},
    "issuelinks": [{"type": {"name": "Blocks"}, "outwardIssue": {"key": "WEB-2"}}]}},
  {"key": "WEB-2", "fields": {
    "summary": "Crash", "status": {"name": "Code Review", "statusCategory": {"key": "indeterminate"}},
    "created": "2026-03-02T09:00:00.000+0000", "issuetype": {"name": "Bug"}, "labels": ["Rework"],
    "project": {"key": "WEB"}, "parent": {"key": "WEB-10"},
    "issuelinks": [
      {"type": {"name": "Blocks"}, "inwardIssue": {"key": "WEB-1"}},
      {"type": {"name": "Relates"}, "inwardIssue": {"key": "WEB-7"}}]}}
]}`

const searchPage2 = `{"startAt": 2, "maxResults": 2, "total": 3, "issues": [
  {"key": "WEB-3", "fields": {
    "summary": "Old", "status": {"name": "Won't Do", "statusCategory": {"key": "done"}},
    "created": "2026-01-02T09:00:00.000+0000", "issuetype": {"name": "Task"}, "labels": ["archived"],
    "project": {"key": "WEB"}}}
]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("me@example.com:token"))
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != wantAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		jql := r.URL.Query().Get("jql")
		switch {
		case strings.Contains(jql, `"NOPE"`):
			w.WriteHeader(http.StatusNotFound)
			return
		case !strings.Contains(jql, `project = "WEB"`) && !strings.Contains(jql, `parent = "WEB-10"`):
			t.Errorf("unexpected jql %q", jql)
		}
		if r.URL.Query().Get("startAt") == "2" {
			fmt.Fprint(w, searchPage2)
			return
		}
		fmt.Fprint(w, searchPage1)
	})
	mux.HandleFunc("/rest/api/2/user/assignable/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("project"); got != "WEB" {
			t.Errorf("project = %q, want WEB", got)
		}
		fmt.Fprint(w, `[{"accountId": "acc-ana", "displayName": "Ana", "emailAddress": "ana@example.com"}, {"accountId": "acc-ben", "displayName": "Ben"}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSource(t *testing.T, token string) *Source {
	t.Helper()
	srv := newTestServer(t)
	src, err := NewSource(Config{BaseURL: srv.URL + "/", Email: "me@example.com", APIToken: token, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return src
}

func TestNewSource_MissingConfig(t *testing.T) {
	if _, err := NewSource(Config{BaseURL: "example.atlassian.net"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
	src, err := NewSource(Config{BaseURL: "example.atlassian.net", Email: "a", APIToken: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.baseURL != "https://example.atlassian.net" {
		t.Errorf("baseURL = %q", src.baseURL)
	}
}

func TestJQL(t *testing.T) {
	tests := []struct {
		scope tracker.Scope
		want  string
	}{
		{tracker.Scope{Kind: tracker.ScopeList, ID: "WEB"}, `project = "WEB" ORDER BY created ASC`},
		{tracker.Scope{Kind: tracker.ScopeSpace, ID: "WEB"}, `project = "WEB" ORDER BY created ASC`},
		{tracker.Scope{Kind: tracker.ScopeFolder, ID: "WEB-10"}, `parent = "WEB-10" ORDER BY created ASC`},
		{tracker.Scope{Kind: tracker.ScopeWorkspace, ID: "acme"}, `ORDER BY created ASC`},
	}
	for _, tt := range tests {
		if got := JQL(tt.scope); got != tt.want {
			t.Errorf("JQL(%v) = %q, want %q", tt.scope, got, tt.want)
		}
	}
}

func TestSource_FetchRecords(t *testing.T) {
	src := newTestSource(t, "token")
	records, err := src.FetchRecords(context.Background(), tracker.Scope{Kind: tracker.ScopeList, ID: "WEB"}, false)
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	login := records[0]
	if login.Status != tracker.StatusDone || login.CompletedAt == nil {
		t.Errorf("WEB-1 = %+v", login)
	}
	if want := time.Date(2026, 3, 8, 17, 30, 0, 0, time.UTC); !login.CompletedAt.Equal(want) {
		t.Errorf("CompletedAt = %v, want %v", login.CompletedAt, want)
	}
	if login.DueAt == nil || login.DueAt.Day() != 10 {
		t.Errorf("DueAt = %v", login.DueAt)
	}
	if len(login.Assignees) != 1 || login.Assignees[0] != "acc-ana" {
		t.Errorf("Assignees = %v", login.Assignees)
	}
	if len(login.Blocks) != 1 || login.Blocks[0] != "WEB-2" {
		t.Errorf("Blocks = %v", login.Blocks)
	}

	crash := records[1]
	if crash.Status != tracker.StatusInProgress || !crash.Defect || !crash.Rework {
		t.Errorf("WEB-2 = %+v", crash)
	}
	if len(crash.BlockedBy) != 1 || crash.BlockedBy[0] != "WEB-1" {
		t.Errorf("BlockedBy = %v", crash.BlockedBy)
	}
	if crash.Folder != "WEB-10" || crash.Space != "WEB" {
		t.Errorf("scope fields = %+v", crash)
	}
}

func TestSource_FetchRecords_Archived(t *testing.T) {
	src := newTestSource(t, "token")
	records, err := src.FetchRecords(context.Background(), tracker.Scope{Kind: tracker.ScopeFolder, ID: "WEB-10"}, true)
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[2].Status != tracker.StatusCancelled {
		t.Errorf("WEB-3 status = %s, want cancelled", records[2].Status)
	}
}

func TestSource_FetchTeam(t *testing.T) {
	src := newTestSource(t, "token")
	roster, err := src.FetchTeam(context.Background(), tracker.Scope{Kind: tracker.ScopeFolder, ID: "WEB-10"})
	if err != nil {
		t.Fatalf("FetchTeam: %v", err)
	}
	if len(roster) != 2 || roster[0].ID != "acc-ana" || roster[0].DisplayName() != "Ana" {
		t.Errorf("roster = %+v", roster)
	}
	if roster.FindMember("ana@example.com") == nil {
		t.Error("expected lookup by email handle")
	}
}

func TestSource_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newTestSource(t, "wrong").FetchRecords(ctx, tracker.Scope{Kind: tracker.ScopeList, ID: "WEB"}, false)
	if !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	_, err = newTestSource(t, "token").FetchRecords(ctx, tracker.Scope{Kind: tracker.ScopeList, ID: "NOPE"}, false)
	if !errors.Is(err, tracker.ErrScopeNotFound) {
		t.Errorf("expected ErrScopeNotFound, got %v", err)
	}
}
