// Package types contains shared data structures used across the streakwatch system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import (
	"encoding/json"
	"time"
)

// EventKind identifies the source category of a raw activity event.
type EventKind int

const (
	// Commit is a push of one or more commits to a repository.
	Commit EventKind = iota
	// PullRequest is any pull-request interaction (open, comment, merge, review).
	PullRequest
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case Commit:
		return "commit"
	case PullRequest:
		return "pull_request"
	default:
		return "unknown"
	}
}

// PRAction is the specific pull-request interaction an event represents.
// Empty for commit events.
type PRAction string

const (
	// PRCreated means the user opened the pull request.
	PRCreated PRAction = "created"
	// PRCommented means the user commented on a pull request.
	PRCommented PRAction = "commented"
	// PRMerged means the user's pull request was merged.
	PRMerged PRAction = "merged"
	// PRReviewSubmitted means the user submitted a review.
	PRReviewSubmitted PRAction = "review-submitted"
)

// RawEvent is a single activity event fetched from the upstream API.
// Events are immutable and live only for the duration of one check.
type RawEvent struct {
	CreatedAt time.Time
	ID        string
	Actor     string // login of the user who performed the action
	Repo      string // "owner/name", may be empty for search results
	Payload   json.RawMessage
	Action    PRAction // set only when Kind == PullRequest
	Kind      EventKind
}

// Window is a half-open UTC time interval [Start, End) bounding which
// events count as recent activity.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. The interval is
// half-open: Start is included, End is excluded.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.End)
}

// Verdict is the outcome of one activity check: whether qualifying
// activity was found, the evidence, and the window it was judged against.
type Verdict struct {
	Window  Window
	Matched []RawEvent // qualifying events ordered by timestamp
	Active  bool
}
