// SPDX-License-Identifier: MIT

// Package config loads and validates the daemon configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tvh2g/tvh2g/internal/log"
)

// User is one backend credential pair. Secret is only ever used to
// authenticate outbound fetches.
type User struct {
	Name   string
	Secret string
}

// Config holds every runtime setting of the daemon.
type Config struct {
	Host string
	Port int

	Users      []User
	ServerAuth string // server-wide token for the EPG endpoint and the final playlist auth pass

	AppendIconAuth bool // inject auth into tvg-logo URLs as well

	RefreshSchedule    string
	EPGRefreshSchedule string

	EPGStripOffset       bool
	EPGRetentionEnabled  bool
	EPGRetentionDays     int
	EPGRetentionSizeMB   int // declared and validated only; no eviction is wired to it
	CreateCacheOnStartup bool

	ArchiveDir string
	ListenAddr string

	RetryAttempts int
	RetryDelay    time.Duration
}

// FromEnv assembles a Config from environment variables, applying the
// documented defaults.
func FromEnv() Config {
	cfg := Config{
		Host:                 ParseString("TVH_HOST", "127.0.0.1"),
		Port:                 ParseInt("TVH_PORT", 9981),
		Users:                ParseUsers(ParseString("TVH_USERS", "")),
		ServerAuth:           ParseString("TVH_URL_AUTH", ""),
		AppendIconAuth:       ParseBool("TVH_APPEND_ICON_AUTH", false),
		RefreshSchedule:      ParseString("REFRESH_SCHEDULE", "0 5 * * *"),
		EPGRefreshSchedule:   ParseString("EPG_REFRESH_SCHEDULE", ""),
		EPGStripOffset:       ParseBool("EPG_STRIP_OFFSET", false),
		EPGRetentionEnabled:  ParseBool("EPG_RETENTION_ENABLED", false),
		EPGRetentionDays:     ParseInt("EPG_RETENTION_DAYS", 2),
		EPGRetentionSizeMB:   ParseInt("EPG_RETENTION_SIZE_MB", 50),
		CreateCacheOnStartup: ParseBool("CREATE_CACHE", false),
		ArchiveDir:           ParseString("ARCHIVE_DIR", "archive"),
		ListenAddr:           ParseString("LISTEN_ADDR", ":9985"),
		RetryAttempts:        ParseInt("RETRY_ATTEMPTS", 3),
		RetryDelay:           ParseDuration("RETRY_DELAY", 30*time.Second),
	}

	if cfg.EPGRefreshSchedule == "" {
		cfg.EPGRefreshSchedule = cfg.RefreshSchedule
	}

	logger := log.WithComponent("config")
	if cfg.ServerAuth == "" && len(cfg.Users) > 0 {
		cfg.ServerAuth = cfg.Users[0].Secret
		logger.Info().
			Str("user", cfg.Users[0].Name).
			Msg("TVH_URL_AUTH not set, using secret of first user")
	}
	if cfg.ServerAuth == "" {
		logger.Warn().
			Msg("TVH_URL_AUTH not set and no users configured; EPG fetching may fail")
	}

	return cfg
}

// ParseUsers splits a "user:pass,user:pass" list into credentials.
// Entries without a colon are dropped.
func ParseUsers(raw string) []User {
	var users []User
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, ":") {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		users = append(users, User{Name: parts[0], Secret: parts[1]})
	}
	return users
}

// UserNames returns the configured user names, for logging and display.
func (c Config) UserNames() []string {
	names := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		names = append(names, u.Name)
	}
	return names
}

// BaseURL returns the backend base URL without a trailing slash.
func (c Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for startup-blocking problems: missing
// credentials, unparseable cron expressions, nonsensical retention values and
// an archive directory that cannot be written to.
func (c Config) Validate() error {
	if len(c.Users) == 0 {
		return fmt.Errorf("TVH_USERS is empty or contains no user:pass pairs")
	}

	if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
	}
	if _, err := cron.ParseStandard(c.EPGRefreshSchedule); err != nil {
		return fmt.Errorf("invalid EPG_REFRESH_SCHEDULE %q: %w", c.EPGRefreshSchedule, err)
	}

	if c.EPGRetentionEnabled {
		if c.EPGRetentionDays <= 0 {
			return fmt.Errorf("EPG_RETENTION_DAYS must be positive, got %d", c.EPGRetentionDays)
		}
		if c.EPGRetentionSizeMB <= 0 {
			return fmt.Errorf("EPG_RETENTION_SIZE_MB must be positive, got %d", c.EPGRetentionSizeMB)
		}
	}

	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}

	return probeArchiveDir(c.ArchiveDir)
}

// probeArchiveDir ensures the archive directory exists and is writable by
// creating and removing a probe file.
func probeArchiveDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir %q: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("archive dir %q is not writable: %w", dir, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("remove archive dir probe: %w", err)
	}
	return nil
}
