package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/types"
)

// searchItem mirrors the wire shape of one search/issues result.
type searchItem struct {
	ID   int64 `json:"id"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	RepositoryURL string    `json:"repository_url"`
	CreatedAt     time.Time `json:"created_at"`
	Number        int       `json:"number"`
}

// searchResponse mirrors the search/issues envelope.
type searchResponse struct {
	Items      []searchItem `json:"items"`
	TotalCount int          `json:"total_count"`
}

// PullRequests searches for pull requests the user authored, newest
// first, mapped to raw pull-request events with the "created" action.
// The since bound narrows the query server-side when set.
func (c *Client) PullRequests(ctx context.Context, username string, since time.Time) ([]types.RawEvent, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	query := fmt.Sprintf("author:%s is:pr", username)
	if !since.IsZero() {
		query += " created:>=" + since.UTC().Format("2006-01-02")
	}

	var events []types.RawEvent
	fetched := 0

	for page := 1; page <= c.maxPRPages; page++ {
		searchURL := fmt.Sprintf("%s/search/issues?q=%s&sort=created&order=desc&per_page=%d&page=%d",
			c.baseURL, url.QueryEscape(query), perPage, page)

		resp, err := c.get(ctx, searchURL) //nolint:bodyclose // closed below or by classifyStatus
		if err != nil {
			return nil, &UnavailableError{Stage: "pull_requests", Err: err}
		}
		if err := classifyStatus("pull_requests", resp); err != nil {
			return nil, err
		}

		var result searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			drainAndCloseBody(resp.Body)
			return nil, &UnavailableError{Stage: "pull_requests", Err: fmt.Errorf("failed to decode search page %d: %w", page, err)}
		}
		hasNext := nextPageURL(resp) != ""
		drainAndCloseBody(resp.Body)

		if len(result.Items) == 0 {
			break
		}

		for i := range result.Items {
			events = append(events, mapSearchItem(&result.Items[i]))
		}
		fetched += len(result.Items)
		slog.Debug("Fetched PR search page", "page", page, "count", len(result.Items), "total_count", result.TotalCount)

		if !hasNext || fetched >= result.TotalCount {
			break
		}
	}

	slog.Info("Finished fetching pull requests", "user", username, "pull_requests", len(events))
	return events, nil
}

// mapSearchItem converts a search result into a raw pull-request event.
// The search query is author-scoped, so the item's author is the actor
// of the "created" action.
func mapSearchItem(item *searchItem) types.RawEvent {
	return types.RawEvent{
		ID:        fmt.Sprintf("pr-%d", item.ID),
		Kind:      types.PullRequest,
		Action:    types.PRCreated,
		Actor:     item.User.Login,
		Repo:      repoFromURL(item.RepositoryURL),
		CreatedAt: item.CreatedAt.UTC(),
	}
}

// repoFromURL extracts "owner/name" from an API repository URL.
func repoFromURL(repoURL string) string {
	const marker = "/repos/"
	if idx := strings.Index(repoURL, marker); idx >= 0 {
		return repoURL[idx+len(marker):]
	}
	return ""
}
