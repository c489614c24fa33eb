// Package main implements the streakwatch-notify CLI: it renders the
// inactivity reminder email and optionally dispatches it over SMTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/codeGROOVE-dev/streakwatch/pkg/config"
	"github.com/codeGROOVE-dev/streakwatch/pkg/notify"
)

const (
	exitOK = 0
	// exitFailure covers render and dispatch failures.
	exitFailure = 1
	// exitConfig covers invalid configuration (missing username,
	// ambiguous transport).
	exitConfig = 2
)

var (
	send         = flag.Bool("send", false, "Send the email via SMTP (default renders only)")
	username     = flag.String("username", "", "GitHub username (required)")
	message      = flag.String("message", "", "Notification message body")
	recipient    = flag.String("recipient", "", "Email recipient")
	sender       = flag.String("sender", "", "Email sender address")
	subject      = flag.String("subject", "", "Email subject")
	date         = flag.String("date", "", "Display date shown in the document (e.g. 2024-01-02)")
	smtpHost     = flag.String("smtp-host", "", "SMTP server host")
	smtpPort     = flag.Int("smtp-port", 0, "SMTP server port")
	smtpUser     = flag.String("smtp-user", "", "SMTP username")
	smtpPassword = flag.String("smtp-password", "", "SMTP password")
	smtpSSL      = flag.Bool("smtp-use-ssl", false, "Use implicit TLS from connect (port 465)")
	smtpSTARTTLS = flag.Bool("smtp-use-starttls", false, "Upgrade the connection with STARTTLS (port 587)")
	output       = flag.String("output", "", "Write the rendered HTML to this path")
	configPath   = flag.String("config", "config.toml", "Path to the TOML configuration file")
	verbose      = flag.Bool("v", false, "Verbose output with debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Renders the activity reminder email; --send dispatches it over SMTP.\n")
		fmt.Fprintf(os.Stderr, "--output always writes the rendered HTML, sent or not.\n\n")
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
		return exitConfig
	}
	applyFlags(cfg)

	req := notify.Request{
		Username:  *username,
		Message:   firstNonEmpty(*message, cfg.Notification.Message),
		Subject:   firstNonEmpty(*subject, cfg.Notification.Subject),
		Recipient: cfg.Notification.Recipient,
		Date:      *date,
	}

	email, err := notify.Render(req)
	if err != nil {
		var tmplErr *notify.TemplateError
		if errors.As(err, &tmplErr) {
			slog.Error("Cannot render notification", "error", err)
			return exitConfig
		}
		slog.Error("Rendering failed", "error", err)
		return exitFailure
	}

	// The audit artifact is written regardless of --send.
	if *output != "" {
		if err := notify.WriteFile(email, *output); err != nil {
			slog.Error("Failed to write rendered email", "path", *output, "error", err)
			return exitFailure
		}
		slog.Info("Rendered email written", "path", *output)
	}

	if !*send {
		return exitOK
	}
	if req.Recipient == "" {
		slog.Error("Recipient required to send: use --recipient or STREAKWATCH_RECIPIENT")
		return exitConfig
	}

	resolvedSender := notify.ResolveSender(cfg.Notification.Sender, cfg.SMTP.User)
	smtpCfg := notify.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		User:        cfg.SMTP.User,
		Password:    cfg.SMTP.Password,
		UseSSL:      cfg.SMTP.UseSSL,
		UseSTARTTLS: cfg.SMTP.UseSTARTTLS,
		Timeout:     cfg.SMTP.Timeout(),
	}

	dispatcher := notify.NewDispatcher()
	if err := dispatcher.Send(ctx, email, resolvedSender, req.Recipient, smtpCfg); err != nil {
		if errors.Is(err, notify.ErrAmbiguousTransport) {
			slog.Error("Transport configuration is ambiguous", "error", err)
			return exitConfig
		}
		logDispatchFailure(err)
		return exitFailure
	}

	return exitOK
}

// applyFlags overlays explicitly-set command-line flags onto the loaded
// configuration; flags beat environment, environment beats the file.
func applyFlags(cfg *config.Config) {
	if *recipient != "" {
		cfg.Notification.Recipient = *recipient
	}
	if *sender != "" {
		cfg.Notification.Sender = *sender
	}
	if *smtpHost != "" {
		cfg.SMTP.Host = *smtpHost
	}
	if *smtpPort != 0 {
		cfg.SMTP.Port = *smtpPort
	}
	if *smtpUser != "" {
		cfg.SMTP.User = *smtpUser
	}
	if *smtpPassword != "" {
		cfg.SMTP.Password = *smtpPassword
	}
	if *smtpSSL {
		cfg.SMTP.UseSSL = true
	}
	if *smtpSTARTTLS {
		cfg.SMTP.UseSTARTTLS = true
	}
}

// logDispatchFailure names the failure category for the orchestrating layer.
func logDispatchFailure(err error) {
	var timeoutErr *notify.ConnectTimeoutError
	var authErr *notify.AuthRejectedError
	switch {
	case errors.As(err, &timeoutErr):
		slog.Error("SMTP connection timed out", "error", err, "addr", timeoutErr.Addr)
	case errors.As(err, &authErr):
		slog.Error("SMTP server rejected credentials", "error", err)
	default:
		slog.Error("Failed to send email", "error", err)
	}
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
