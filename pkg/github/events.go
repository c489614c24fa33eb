package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// rawAPIEvent mirrors the wire shape of one entry in the public events feed.
type rawAPIEvent struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Actor struct {
		Login string `json:"login"`
	} `json:"actor"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Events fetches the user's public activity feed and maps it into raw
// commit and pull-request events. Pagination follows the Link header
// until the page cap, an empty page, or a page whose events all fall
// before since - an optimization only, classification re-filters by the
// exact window regardless.
func (c *Client) Events(ctx context.Context, username string, since time.Time) ([]types.RawEvent, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	nextURL := fmt.Sprintf("%s/users/%s/events/public?per_page=%d", c.baseURL, username, perPage)
	var events []types.RawEvent

	for page := 1; nextURL != "" && page <= c.maxEventPages; page++ {
		resp, err := c.get(ctx, nextURL) //nolint:bodyclose // closed below or by classifyStatus
		if err != nil {
			return nil, &UnavailableError{Stage: "events", Err: err}
		}
		if err := classifyStatus("events", resp); err != nil {
			return nil, err
		}

		var pageEvents []rawAPIEvent
		if err := json.NewDecoder(resp.Body).Decode(&pageEvents); err != nil {
			drainAndCloseBody(resp.Body)
			return nil, &UnavailableError{Stage: "events", Err: fmt.Errorf("failed to decode events page %d: %w", page, err)}
		}
		next := nextPageURL(resp)
		drainAndCloseBody(resp.Body)

		if len(pageEvents) == 0 {
			break
		}

		pageTooOld := !since.IsZero()
		for i := range pageEvents {
			if !since.IsZero() && !pageEvents[i].CreatedAt.Before(since) {
				pageTooOld = false
			}
			events = append(events, mapFeedEvent(&pageEvents[i])...)
		}
		slog.Debug("Fetched events page", "page", page, "count", len(pageEvents), "mapped_total", len(events))

		if pageTooOld {
			// The feed is newest-first; a page entirely before the
			// window means later pages are too.
			break
		}
		nextURL = next
	}

	slog.Info("Finished fetching public events", "user", username, "events", len(events))
	return events, nil
}

// mapFeedEvent converts one feed entry into zero or more raw events.
// Unknown event types map to nothing.
func mapFeedEvent(ev *rawAPIEvent) []types.RawEvent {
	base := types.RawEvent{
		ID:        ev.ID,
		Actor:     ev.Actor.Login,
		Repo:      ev.Repo.Name,
		CreatedAt: ev.CreatedAt.UTC(),
		Payload:   ev.Payload,
	}

	switch ev.Type {
	case "PushEvent":
		base.Kind = types.Commit
		return []types.RawEvent{base}

	case "PullRequestEvent":
		var payload struct {
			Action      string `json:"action"`
			PullRequest struct {
				Merged bool `json:"merged"`
			} `json:"pull_request"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			slog.Warn("Skipping malformed PullRequestEvent payload", "event_id", ev.ID, "error", err)
			return nil
		}
		base.Kind = types.PullRequest
		switch {
		case payload.Action == "opened":
			base.Action = types.PRCreated
		case payload.Action == "closed" && payload.PullRequest.Merged:
			base.Action = types.PRMerged
		default:
			return nil
		}
		return []types.RawEvent{base}

	case "IssueCommentEvent":
		var payload struct {
			Issue struct {
				PullRequest *struct{} `json:"pull_request"`
			} `json:"issue"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			slog.Warn("Skipping malformed IssueCommentEvent payload", "event_id", ev.ID, "error", err)
			return nil
		}
		// Comments on plain issues are not pull-request activity.
		if payload.Issue.PullRequest == nil {
			return nil
		}
		base.Kind = types.PullRequest
		base.Action = types.PRCommented
		return []types.RawEvent{base}

	case "PullRequestReviewEvent":
		base.Kind = types.PullRequest
		base.Action = types.PRReviewSubmitted
		return []types.RawEvent{base}

	default:
		return nil
	}
}
