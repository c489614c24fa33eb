package activity

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// qualifyingActions are the pull-request interactions that count as
// activity. Being a mere participant does not qualify.
var qualifyingActions = map[types.PRAction]bool{
	types.PRCreated:         true,
	types.PRCommented:       true,
	types.PRMerged:          true,
	types.PRReviewSubmitted: true,
}

// Classify returns the subset of events that qualify as activity for the
// given user within the window. All timestamp comparisons use UTC and the
// half-open interval [Start, End); identity matching is case-insensitive.
func Classify(events []types.RawEvent, window types.Window, username string) []types.RawEvent {
	var matched []types.RawEvent
	for i := range events {
		ev := &events[i]
		if !window.Contains(ev.CreatedAt) {
			continue
		}
		switch ev.Kind {
		case types.Commit:
			if commitAttributable(ev, username) {
				matched = append(matched, *ev)
			}
		case types.PullRequest:
			if qualifyingActions[ev.Action] && strings.EqualFold(ev.Actor, username) {
				matched = append(matched, *ev)
			}
		}
	}
	slog.Debug("Classified events", "user", username, "in", len(events), "matched", len(matched))
	return matched
}

// commitAttributable reports whether a commit event belongs to the user:
// either the event actor matches, or one of the pushed commits names the
// user as author or committer.
func commitAttributable(ev *types.RawEvent, username string) bool {
	if strings.EqualFold(ev.Actor, username) {
		return true
	}
	if len(ev.Payload) == 0 {
		return false
	}

	var payload struct {
		Commits []struct {
			Author struct {
				Name string `json:"name"`
			} `json:"author"`
			Committer struct {
				Name string `json:"name"`
			} `json:"committer"`
		} `json:"commits"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		slog.Warn("Skipping unparseable push payload", "event_id", ev.ID, "error", err)
		return false
	}
	for _, commit := range payload.Commits {
		if strings.EqualFold(commit.Author.Name, username) || strings.EqualFold(commit.Committer.Name, username) {
			return true
		}
	}
	return false
}
