// Package config loads streakwatch settings from a TOML file with
// environment-variable overrides. Inner components never read the
// environment themselves; the CLI layer assembles one Config and passes
// explicit structs down.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// GitHub holds source-identity settings.
type GitHub struct {
	Username           string `mapstructure:"username"`
	Token              string `mapstructure:"token"`
	AppID              string `mapstructure:"app_id"`
	AppKeyPath         string `mapstructure:"app_key_path"`
	AppInstallationID  int64  `mapstructure:"app_installation_id"`
	MaxEventPages      int    `mapstructure:"max_event_pages"`
	MaxPRPages         int    `mapstructure:"max_pr_pages"`
	Days               int    `mapstructure:"days"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`
}

// Notification holds recipient and content settings.
type Notification struct {
	Recipient string `mapstructure:"recipient"`
	Sender    string `mapstructure:"sender"`
	Subject   string `mapstructure:"subject"`
	Message   string `mapstructure:"message"`
}

// SMTP holds transport settings.
type SMTP struct {
	Host           string `mapstructure:"host"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Port           int    `mapstructure:"port"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	UseSTARTTLS    bool   `mapstructure:"use_starttls"`
}

// Config is the top-level configuration.
type Config struct {
	GitHub       GitHub       `mapstructure:"github"`
	Notification Notification `mapstructure:"notification"`
	SMTP         SMTP         `mapstructure:"smtp"`
}

// HTTPTimeout returns the configured HTTP timeout as a duration.
func (g GitHub) HTTPTimeout() time.Duration {
	return time.Duration(g.HTTPTimeoutSeconds) * time.Second
}

// Timeout returns the configured SMTP timeout as a duration.
func (s SMTP) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// envBindings maps config keys to their overriding environment variables.
// Environment always beats the file; flags beat both (applied in cmd).
var envBindings = map[string]string{
	"github.username":        "GITHUB_USERNAME",
	"github.token":           "GITHUB_TOKEN",
	"github.app_id":          "GITHUB_APP_ID",
	"github.app_key_path":    "GITHUB_APP_KEY_PATH",
	"github.max_event_pages": "STREAKWATCH_MAX_EVENT_PAGES",
	"github.max_pr_pages":    "STREAKWATCH_MAX_PR_PAGES",
	"notification.recipient": "STREAKWATCH_RECIPIENT",
	"smtp.host":              "SMTP_HOST",
	"smtp.port":              "SMTP_PORT",
	"smtp.user":              "SMTP_USER",
	"smtp.password":          "SMTP_PASSWORD",
	"smtp.use_ssl":           "SMTP_USE_SSL",
	"smtp.use_starttls":      "SMTP_USE_STARTTLS",
}

// Load reads configuration from the TOML file at path. A missing file is
// not an error (defaults and environment apply); a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("github.max_event_pages", 5)
	v.SetDefault("github.max_pr_pages", 2)
	v.SetDefault("github.days", 0)
	v.SetDefault("github.http_timeout_seconds", 10)
	v.SetDefault("smtp.timeout_seconds", 30)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// fall through to defaults
		case os.IsNotExist(underlying(err)):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// underlying unwraps *os.PathError chains for the missing-file check.
func underlying(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr
	}
	return err
}
