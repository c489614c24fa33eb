package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// Fetcher supplies raw events for a user. *github.Client satisfies this;
// tests substitute fakes.
type Fetcher interface {
	Events(ctx context.Context, username string, since time.Time) ([]types.RawEvent, error)
	PullRequests(ctx context.Context, username string, since time.Time) ([]types.RawEvent, error)
}

// Checker runs one activity check: fetch, classify, decide.
type Checker struct {
	fetcher Fetcher
	now     func() time.Time
}

// NewChecker creates a checker over the given event source.
func NewChecker(fetcher Fetcher) *Checker {
	return &Checker{fetcher: fetcher, now: time.Now}
}

// Check determines whether the user had qualifying activity. Days == 0
// checks the current UTC day; days >= 1 checks the last N days up to a
// frozen "now". Fetch failures abort without a verdict so that callers
// never confuse an outage with inactivity.
func (c *Checker) Check(ctx context.Context, username string, days int) (types.Verdict, error) {
	if username == "" {
		return types.Verdict{}, fmt.Errorf("username is required")
	}

	// Captured once; every comparison in this invocation uses it.
	now := c.now().UTC()
	var window types.Window
	if days <= 0 {
		window = Today(now)
	} else {
		window = LastNDays(now, days)
	}
	slog.Info("Checking activity", "user", username,
		"window_start", window.Start.Format(time.RFC3339), "window_end", window.End.Format(time.RFC3339))

	events, err := c.fetcher.Events(ctx, username, window.Start)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("fetching events: %w", err)
	}
	var commitEvents, prFeedEvents []types.RawEvent
	for _, ev := range events {
		switch ev.Kind {
		case types.Commit:
			commitEvents = append(commitEvents, ev)
		case types.PullRequest:
			prFeedEvents = append(prFeedEvents, ev)
		}
	}

	searchEvents, err := c.fetcher.PullRequests(ctx, username, window.Start)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("fetching pull requests: %w", err)
	}

	commits := Classify(commitEvents, window, username)
	prs := Classify(append(prFeedEvents, searchEvents...), window, username)

	verdict := Decide(commits, prs, window)
	slog.Info("Activity verdict", "user", username, "active", verdict.Active, "matched", len(verdict.Matched))
	return verdict, nil
}
