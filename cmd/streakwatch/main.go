// Package main implements the streakwatch CLI: it checks a GitHub user
// for recent public activity and signals the result via its exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/streakwatch/pkg/activity"
	"github.com/codeGROOVE-dev/streakwatch/pkg/config"
	"github.com/codeGROOVE-dev/streakwatch/pkg/github"
)

// Exit codes. Operational errors are distinct from "checked and found
// nothing" so that orchestration never sends a reminder for an outage.
const (
	exitActive   = 0
	exitInactive = 1
	exitError    = 2
)

var (
	user          = flag.String("user", "", "GitHub username to check")
	token         = flag.String("token", "", "GitHub personal access token (optional)")
	days          = flag.Int("days", -1, "Check the last N days instead of today only")
	maxEventPages = flag.Int("max-event-pages", 0, "Maximum number of event pages to fetch")
	maxPRPages    = flag.Int("max-pr-pages", 0, "Maximum number of pull request pages to fetch")
	configPath    = flag.String("config", "config.toml", "Path to the TOML configuration file")
	verbose       = flag.Bool("v", false, "Verbose output with debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --user <username> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Checks for public GitHub activity (commits and pull requests).\n")
		fmt.Fprintf(os.Stderr, "Exit codes: 0 = active, 1 = inactive, 2 = operational error.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return exitError
	}
	applyFlags(cfg)

	if cfg.GitHub.Username == "" {
		slog.Error("GitHub username required: use --user, GITHUB_USERNAME, or config.toml")
		return exitError
	}

	clientCfg := github.Config{
		Token:             cfg.GitHub.Token,
		HTTPTimeout:       cfg.GitHub.HTTPTimeout(),
		MaxEventPages:     cfg.GitHub.MaxEventPages,
		MaxPRPages:        cfg.GitHub.MaxPRPages,
		AppID:             cfg.GitHub.AppID,
		AppKeyPath:        cfg.GitHub.AppKeyPath,
		AppInstallationID: cfg.GitHub.AppInstallationID,
		UseAppAuth:        cfg.GitHub.Token == "" && cfg.GitHub.AppID != "",
	}
	client, err := github.New(ctx, clientCfg)
	if err != nil {
		slog.Error("Failed to create GitHub client", "error", err)
		return exitError
	}

	checker := activity.NewChecker(client)
	verdict, err := checker.Check(ctx, cfg.GitHub.Username, cfg.GitHub.Days)
	if err != nil {
		logCheckFailure(err)
		return exitError
	}

	if verdict.Active {
		fmt.Printf("Activity found for %s: %d qualifying events in [%s, %s)\n",
			cfg.GitHub.Username, len(verdict.Matched),
			verdict.Window.Start.Format(time.RFC3339), verdict.Window.End.Format(time.RFC3339))
		return exitActive
	}

	fmt.Printf("No activity found for %s in [%s, %s)\n",
		cfg.GitHub.Username,
		verdict.Window.Start.Format(time.RFC3339), verdict.Window.End.Format(time.RFC3339))
	return exitInactive
}

// applyFlags overlays explicitly-set command-line flags onto the loaded
// configuration; flags beat environment, environment beats the file.
func applyFlags(cfg *config.Config) {
	if *user != "" {
		cfg.GitHub.Username = *user
	}
	if *token != "" {
		cfg.GitHub.Token = *token
	}
	if *days >= 0 {
		cfg.GitHub.Days = *days
	}
	if *maxEventPages > 0 {
		cfg.GitHub.MaxEventPages = *maxEventPages
	}
	if *maxPRPages > 0 {
		cfg.GitHub.MaxPRPages = *maxPRPages
	}
}

// logCheckFailure names the failure category for the orchestrating layer.
func logCheckFailure(err error) {
	var rateErr *github.RateLimitError
	var authErr *github.AuthError
	var unavailErr *github.UnavailableError
	switch {
	case errors.As(err, &rateErr):
		slog.Error("Rate limited by GitHub", "error", err, "retry_after", rateErr.RetryAfter.String())
		slog.Info("Providing a token via --token or GITHUB_TOKEN raises the rate limit")
	case errors.As(err, &authErr):
		slog.Error("GitHub rejected the provided credentials", "error", err)
	case errors.As(err, &unavailErr):
		slog.Error("GitHub API unavailable", "error", err)
	default:
		slog.Error("Activity check failed", "error", err)
	}
}
