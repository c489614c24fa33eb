package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/github"
	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// fakeFetcher returns canned events or errors.
type fakeFetcher struct {
	events    []types.RawEvent
	prs       []types.RawEvent
	eventsErr error
	prsErr    error
	prCalled  bool
}

func (f *fakeFetcher) Events(_ context.Context, _ string, _ time.Time) ([]types.RawEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeFetcher) PullRequests(_ context.Context, _ string, _ time.Time) ([]types.RawEvent, error) {
	f.prCalled = true
	return f.prs, f.prsErr
}

func newTestChecker(f Fetcher, now time.Time) *Checker {
	c := NewChecker(f)
	c.now = func() time.Time { return now }
	return c
}

func TestCheck_CommitLateInDay(t *testing.T) {
	// Commit at 23:59:59 on the checked day qualifies.
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	commit := types.RawEvent{
		Kind:      types.Commit,
		Actor:     "alice",
		CreatedAt: time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
	}
	checker := newTestChecker(&fakeFetcher{events: []types.RawEvent{commit}}, now)

	verdict, err := checker.Check(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Active {
		t.Error("Active = false, want true")
	}
	if len(verdict.Matched) != 1 {
		t.Errorf("Matched has %d events, want 1", len(verdict.Matched))
	}
}

func TestCheck_NoEvents(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	checker := newTestChecker(&fakeFetcher{}, now)

	verdict, err := checker.Check(context.Background(), "alice", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Active {
		t.Error("Active = true, want false")
	}
	wantStart := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if !verdict.Window.Start.Equal(wantStart) {
		t.Errorf("Window.Start = %v, want %v", verdict.Window.Start, wantStart)
	}
}

func TestCheck_FetchFailureIsNotInactivity(t *testing.T) {
	fetcher := &fakeFetcher{
		eventsErr: &github.UnavailableError{Stage: "events", Err: errors.New("boom")},
	}
	checker := newTestChecker(fetcher, time.Now())

	_, err := checker.Check(context.Background(), "alice", 0)
	if err == nil {
		t.Fatal("expected error, got verdict")
	}
	var unavailErr *github.UnavailableError
	if !errors.As(err, &unavailErr) {
		t.Errorf("error %v does not unwrap to UnavailableError", err)
	}
	if fetcher.prCalled {
		t.Error("PullRequests fetched after events failure; check should abort")
	}
}

func TestCheck_PRSearchFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		prsErr: &github.RateLimitError{Stage: "pull_requests", RetryAfter: time.Minute},
	}
	checker := newTestChecker(fetcher, time.Now())

	_, err := checker.Check(context.Background(), "alice", 0)
	var rateErr *github.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error %v does not unwrap to RateLimitError", err)
	}
	if rateErr.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %v, want 1m", rateErr.RetryAfter)
	}
}

func TestCheck_RequiresUsername(t *testing.T) {
	checker := NewChecker(&fakeFetcher{})
	if _, err := checker.Check(context.Background(), "", 0); err == nil {
		t.Error("expected error for empty username")
	}
}

func TestCheck_SearchResultsClassified(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{
		prs: []types.RawEvent{
			{Kind: types.PullRequest, Action: types.PRCreated, Actor: "Alice", CreatedAt: now.Add(-time.Hour)},
			// Outside today's window: must not qualify.
			{Kind: types.PullRequest, Action: types.PRCreated, Actor: "Alice", CreatedAt: now.AddDate(0, 0, -2)},
		},
	}
	checker := newTestChecker(fetcher, now)

	verdict, err := checker.Check(context.Background(), "alice", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Active {
		t.Error("Active = false, want true")
	}
	if len(verdict.Matched) != 1 {
		t.Errorf("Matched has %d events, want 1", len(verdict.Matched))
	}
}
