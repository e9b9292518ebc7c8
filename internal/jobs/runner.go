// SPDX-License-Identifier: MIT

// Package jobs implements the two pipelines: the playlist aggregation build
// and the EPG retention merge. Both may be triggered by the scheduler or on
// demand; concurrent triggers of the same pipeline are coalesced into a
// single run.
package jobs

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tvh2g/tvh2g/internal/cache"
	"github.com/tvh2g/tvh2g/internal/config"
	"github.com/tvh2g/tvh2g/internal/tvheadend"
)

// Backend is the subset of the TVHeadend client the pipelines use. Narrowed
// to an interface for testing against stub servers.
type Backend interface {
	Tags(ctx context.Context, secret string) ([]tvheadend.Tag, error)
	TagPlaylist(ctx context.Context, tagID, secret string) (string, error)
	XMLTV(ctx context.Context, auth string) (string, error)
}

// Runner owns the pipelines and publishes their artifacts to the store.
type Runner struct {
	cfg     config.Config
	backend Backend
	store   *cache.Store

	group singleflight.Group
	now   func() time.Time
}

func NewRunner(cfg config.Config, backend Backend, store *cache.Store) *Runner {
	return &Runner{
		cfg:     cfg,
		backend: backend,
		store:   store,
		now:     time.Now,
	}
}

// RefreshPlaylist triggers a playlist build. A trigger arriving while a build
// is in flight joins that build instead of starting another; runs of the same
// pipeline never overlap.
func (r *Runner) RefreshPlaylist(ctx context.Context) error {
	_, err, _ := r.group.Do("playlist", func() (any, error) {
		return nil, r.buildPlaylist(ctx)
	})
	return err
}

// RefreshEPG triggers an EPG merge cycle, with the same coalescing contract
// as RefreshPlaylist.
func (r *Runner) RefreshEPG(ctx context.Context) error {
	_, err, _ := r.group.Do("epg", func() (any, error) {
		return nil, r.mergeEPG(ctx)
	})
	return err
}

// InitialRefresh runs the pipelines once at startup when CREATE_CACHE is set
// and the corresponding archive artifact is missing.
func (r *Runner) InitialRefresh(ctx context.Context) {
	if !r.cfg.CreateCacheOnStartup {
		return
	}
	if r.store.Playlist() == nil {
		_ = r.RefreshPlaylist(ctx) // failures already degrade into the artifact
	}
	if r.cfg.EPGRetentionEnabled && r.store.EPG() == nil {
		if err := r.RefreshEPG(ctx); err != nil {
			logger := logComponent()
			logger.Error().
				Err(err).
				Str("event", "epg.initial_refresh_failed").
				Msg("initial EPG refresh failed")
		}
	}
}
