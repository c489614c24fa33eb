// Package github fetches public activity events from the GitHub API.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	apiBase     = "https://api.github.com"
	perPage     = 100 // maximum allowed by both the events and search APIs
	apiVersion  = "2022-11-28"
	acceptValue = "application/vnd.github.v3+json"

	// DefaultMaxEventPages caps pagination of the public events feed.
	DefaultMaxEventPages = 5
	// DefaultMaxPRPages caps pagination of the pull-request search.
	DefaultMaxPRPages = 2
)

// Retry constants. Only transport-level network failures are retried;
// classified API errors (auth, rate limit, server error) surface
// immediately per the error taxonomy.
const (
	maxRetryAttempts  = 3
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 10 * time.Second
)

// Client handles all GitHub API interactions for one check invocation.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	maxEventPages int
	maxPRPages    int
	isAppAuth     bool
}

// Config holds configuration for creating a new GitHub client.
type Config struct {
	Token             string // personal access token; empty for unauthenticated access
	AppID             string // GitHub App ID (app auth only)
	AppKeyPath        string // path to the App private key PEM (app auth only)
	AppInstallationID int64  // installation to act as (app auth only)
	HTTPTimeout       time.Duration
	MaxEventPages     int
	MaxPRPages        int
	UseAppAuth        bool
}

// New creates a GitHub API client. With UseAppAuth set it authenticates as
// a GitHub App installation; otherwise it uses the personal token, or no
// authentication at all when the token is empty (public data, stricter
// rate limits).
func New(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxEventPages := cfg.MaxEventPages
	if maxEventPages <= 0 {
		maxEventPages = DefaultMaxEventPages
	}
	maxPRPages := cfg.MaxPRPages
	if maxPRPages <= 0 {
		maxPRPages = DefaultMaxPRPages
	}

	c := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       apiBase,
		maxEventPages: maxEventPages,
		maxPRPages:    maxPRPages,
	}

	if cfg.UseAppAuth {
		token, err := installationToken(ctx, c.httpClient, cfg.AppID, cfg.AppKeyPath, cfg.AppInstallationID)
		if err != nil {
			return nil, fmt.Errorf("app authentication failed: %w", err)
		}
		c.token = token
		c.isAppAuth = true
		slog.Info("Using GitHub App installation authentication", "app_id", cfg.AppID)
		return c, nil
	}

	if cfg.Token != "" {
		if err := validateToken(cfg.Token); err != nil {
			return nil, err
		}
		c.token = cfg.Token
		slog.Info("Using personal access token authentication")
	} else {
		slog.Info("No token provided - using unauthenticated access (public data only)")
	}
	return c, nil
}

// drainAndCloseBody drains and closes an HTTP response body to prevent resource leaks.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// sanitizeURLForLogging strips query parameters that may carry sensitive values.
func sanitizeURLForLogging(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "<unparseable>"
	}
	u.RawQuery = ""
	return u.String()
}

// get performs an authenticated GET against the API with retry on
// transport failures, returning the open response for the caller to
// consume and close.
func (c *Client) get(ctx context.Context, apiURL string) (*http.Response, error) {
	sanitized := sanitizeURLForLogging(apiURL)
	slog.Debug("HTTP request", "component", "http", "method", "GET", "url", sanitized)

	var resp *http.Response
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Accept", acceptValue)
			req.Header.Set("X-GitHub-Api-Version", apiVersion)
			if c.token != "" {
				if c.isAppAuth {
					req.Header.Set("Authorization", "Bearer "+c.token)
				} else {
					req.Header.Set("Authorization", "token "+c.token)
				}
			}

			localResp, err := c.httpClient.Do(req) //nolint:bodyclose // body is closed by the caller or drainAndCloseBody
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			resp = localResp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(initialRetryDelay/4),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retry attempt", "component", "retry", "url", sanitized, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if err == nil {
				return false
			}
			errStr := err.Error()
			return strings.Contains(errStr, "connection refused") ||
				strings.Contains(errStr, "connection reset") ||
				strings.Contains(errStr, "temporary failure") ||
				strings.Contains(errStr, "EOF")
		}),
	)
	if err != nil {
		return nil, err
	}

	slog.Debug("HTTP response", "component", "http", "method", "GET", "url", sanitized, "status", resp.StatusCode)
	return resp, nil
}

// classifyStatus maps a non-2xx response to the error taxonomy and
// releases the body. A nil return means the status is usable.
func classifyStatus(stage string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		drainAndCloseBody(resp.Body)
		return &AuthError{Stage: stage, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		// 403 with an exhausted rate limit is a rate-limit condition,
		// not an auth failure.
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			ra := retryAfterHint(resp)
			drainAndCloseBody(resp.Body)
			return &RateLimitError{Stage: stage, RetryAfter: ra}
		}
		drainAndCloseBody(resp.Body)
		return &AuthError{Stage: stage, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		ra := retryAfterHint(resp)
		drainAndCloseBody(resp.Body)
		return &RateLimitError{Stage: stage, RetryAfter: ra}
	default:
		err := &UnavailableError{Stage: stage, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		drainAndCloseBody(resp.Body)
		return err
	}
}

// retryAfterHint extracts a retry delay hint from Retry-After or the
// rate-limit reset header.
func retryAfterHint(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if reset, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Until(time.Unix(reset, 0)); d > 0 {
				return d.Round(time.Second)
			}
		}
	}
	return 0
}

// nextPageURL parses the Link header and returns the rel="next" URL, or
// empty when there is no further page.
func nextPageURL(resp *http.Response) string {
	for _, link := range resp.Header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			section := strings.Split(part, ";")
			if len(section) < 2 {
				continue
			}
			if strings.TrimSpace(section[1]) != `rel="next"` {
				continue
			}
			u := strings.TrimSpace(section[0])
			return strings.Trim(u, "<>")
		}
	}
	return ""
}
