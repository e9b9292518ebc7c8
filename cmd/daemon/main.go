// SPDX-License-Identifier: MIT

// Command daemon runs the tvh2g service: scheduled playlist builds and EPG
// merges, plus the HTTP surface serving the artifacts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tvh2g/tvh2g/internal/api"
	"github.com/tvh2g/tvh2g/internal/cache"
	"github.com/tvh2g/tvh2g/internal/config"
	"github.com/tvh2g/tvh2g/internal/jobs"
	"github.com/tvh2g/tvh2g/internal/log"
	"github.com/tvh2g/tvh2g/internal/tvheadend"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("tvh2g %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	log.Configure(log.Config{Service: "tvh2g", Version: version})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Str("event", "config.invalid").Msg("configuration invalid")
	}
	logger.Info().
		Str("event", "daemon.start").
		Str("backend", cfg.BaseURL()).
		Strs("users", cfg.UserNames()).
		Str("refresh_schedule", cfg.RefreshSchedule).
		Str("epg_refresh_schedule", cfg.EPGRefreshSchedule).
		Bool("epg_retention", cfg.EPGRetentionEnabled).
		Int("epg_retention_days", cfg.EPGRetentionDays).
		Int("epg_retention_size_mb", cfg.EPGRetentionSizeMB).
		Str("archive_dir", cfg.ArchiveDir).
		Msg("starting tvh2g")

	store := cache.New()
	store.LoadArchive(cfg.ArchiveDir, logger)

	client := tvheadend.New(cfg.BaseURL())
	runner := jobs.NewRunner(cfg, client, store)

	sched := cron.New()
	entries := map[string]cron.EntryID{}

	playlistID, err := sched.AddFunc(cfg.RefreshSchedule, func() {
		_ = runner.RefreshPlaylist(context.Background())
	})
	if err != nil {
		logger.Fatal().Err(err).Str("event", "scheduler.invalid").Msg("cannot schedule playlist refresh")
	}
	entries[api.JobPlaylist] = playlistID

	if cfg.EPGRetentionEnabled {
		epgID, err := sched.AddFunc(cfg.EPGRefreshSchedule, func() {
			if err := runner.RefreshEPG(context.Background()); err != nil {
				logger.Error().Err(err).Str("event", "epg.scheduled_merge_failed").Msg("scheduled EPG merge failed")
			}
		})
		if err != nil {
			logger.Fatal().Err(err).Str("event", "scheduler.invalid").Msg("cannot schedule EPG refresh")
		}
		entries[api.JobEPG] = epgID
	}

	sched.Start()
	defer sched.Stop()

	runner.InitialRefresh(ctx)

	server := api.New(cfg, store, runner, &cronSchedule{cron: sched, entries: entries}, client)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("event", "http.listen").Str("addr", cfg.ListenAddr).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Str("event", "http.failed").Msg("HTTP server failed")
		}
	case <-ctx.Done():
		logger.Info().Str("event", "daemon.shutdown").Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Str("event", "http.shutdown_failed").Msg("HTTP shutdown failed")
		}
	}
}

// cronSchedule adapts the cron scheduler to the api.Schedule interface.
type cronSchedule struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func (c *cronSchedule) NextRun(job string) (time.Time, bool) {
	id, ok := c.entries[job]
	if !ok {
		return time.Time{}, false
	}
	next := c.cron.Entry(id).Next
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}
