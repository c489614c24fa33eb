package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

func TestPullRequests_MapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/issues" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query().Get("q")
		if q != "author:alice is:pr" {
			t.Errorf("query = %q, want author-scoped PR search", q)
		}
		fmt.Fprint(w, `{
			"total_count": 1,
			"items": [{
				"id": 42,
				"number": 7,
				"user": {"login": "alice"},
				"repository_url": "https://api.github.com/repos/alice/demo",
				"created_at": "2024-01-01T09:00:00Z"
			}]
		}`)
	}))
	defer srv.Close()

	events, err := newTestClient(srv).PullRequests(context.Background(), "alice", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("mapped %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Kind != types.PullRequest || ev.Action != types.PRCreated {
		t.Errorf("event kind/action = %s/%s, want pull_request/created", ev.Kind, ev.Action)
	}
	if ev.Actor != "alice" {
		t.Errorf("actor = %q, want alice", ev.Actor)
	}
	if ev.Repo != "alice/demo" {
		t.Errorf("repo = %q, want alice/demo", ev.Repo)
	}
}

func TestPullRequests_SinceNarrowsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		want := "author:alice is:pr created:>=2024-01-08"
		if q != want {
			t.Errorf("query = %q, want %q", q, want)
		}
		fmt.Fprint(w, `{"total_count": 0, "items": []}`)
	}))
	defer srv.Close()

	since := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if _, err := newTestClient(srv).PullRequests(context.Background(), "alice", since); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPullRequests_StopsAtTotalCount(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/search/issues?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `{
			"total_count": 1,
			"items": [{"id": 1, "user": {"login": "alice"}, "created_at": "2024-01-01T09:00:00Z"}]
		}`)
	}))
	defer srv.Close()

	events, err := newTestClient(srv).PullRequests(context.Background(), "alice", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pagesServed != 1 {
		t.Errorf("served %d pages, want 1 (total_count reached)", pagesServed)
	}
	if len(events) != 1 {
		t.Errorf("mapped %d events, want 1", len(events))
	}
}

func TestPullRequests_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).PullRequests(context.Background(), "alice", time.Time{})
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error %v is not RateLimitError", err)
	}
	if rateErr.Stage != "pull_requests" {
		t.Errorf("stage = %q, want pull_requests", rateErr.Stage)
	}
}

func TestRepoFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.github.com/repos/alice/demo", "alice/demo"},
		{"", ""},
		{"https://example.com/no-marker", ""},
	}
	for _, tt := range tests {
		if got := repoFromURL(tt.in); got != tt.want {
			t.Errorf("repoFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
