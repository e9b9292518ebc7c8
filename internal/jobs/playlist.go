// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tvh2g/tvh2g/internal/cache"
	"github.com/tvh2g/tvh2g/internal/log"
	"github.com/tvh2g/tvh2g/internal/m3u"
	"github.com/tvh2g/tvh2g/internal/metrics"
	"github.com/tvh2g/tvh2g/internal/retry"
	"github.com/tvh2g/tvh2g/internal/rewrite"
	"github.com/tvh2g/tvh2g/internal/tvheadend"
)

func logComponent() zerolog.Logger {
	return log.WithComponent("jobs")
}

// buildPlaylist runs the aggregation pipeline: per user, fetch the tag list,
// fetch each tag's channel list, rewrite it (group title, profile-param
// strip, per-user auth), concatenate everything, run the optional server-wide
// auth pass, then publish and persist. Individual user or tag failures
// degrade the artifact with a visible comment; the build itself never fails.
func (r *Runner) buildPlaylist(ctx context.Context) error {
	logger := logComponent()
	started := time.Now()
	logger.Info().Str("event", "playlist.build.start").Msg("playlist build started")

	var b strings.Builder
	b.WriteString("#EXTM3U\n")

	for _, user := range r.cfg.Users {
		tags, err := retry.Do(ctx, logger, "fetch tags for user "+user.Name,
			r.cfg.RetryAttempts, r.cfg.RetryDelay, func() ([]tvheadend.Tag, error) {
				return r.backend.Tags(ctx, user.Secret)
			})
		if err != nil {
			metrics.RecordFetchFailure("tags")
			fmt.Fprintf(&b, "# Failed to fetch tags for user %s: %v\n", user.Name, err)
			continue
		}

		for _, tag := range tags {
			fragment, err := retry.Do(ctx, logger, "fetch channels for tag "+tag.ID,
				r.cfg.RetryAttempts, r.cfg.RetryDelay, func() (string, error) {
					return r.backend.TagPlaylist(ctx, tag.ID, user.Secret)
				})
			if err != nil {
				metrics.RecordFetchFailure("tag_playlist")
				fmt.Fprintf(&b, "# Failed tag %s for user %s: %v\n", tag.ID, user.Name, err)
				continue
			}

			fragment = rewrite.InjectGroupTitles(fragment, tag.Name)
			// Stale profile parameters confuse the auth injection below.
			fragment = rewrite.StripStreamQueryParam(fragment, "profile")

			mode := rewrite.AuthStream
			if r.cfg.AppendIconAuth {
				mode = rewrite.AuthBoth
			}
			fragment = rewrite.InjectAuth(fragment, user.Secret, rewrite.AuthOptions{
				Mode:     mode,
				LogoAuth: r.cfg.AppendIconAuth,
			})
			b.WriteString(fragment)
		}
	}

	combined := b.String()
	if r.cfg.ServerAuth != "" {
		// Final server-wide pass. Unlike the per-user pass this one
		// overwrites existing auth parameters.
		combined = rewrite.StripStreamQueryParam(combined, "profile")
		combined = rewrite.InjectAuth(combined, r.cfg.ServerAuth, rewrite.AuthOptions{
			Mode:      rewrite.AuthStream,
			Overwrite: true,
		})
	}

	channels := m3u.Parse(combined)
	r.store.PublishPlaylist(&cache.PlaylistSnapshot{
		Text:     combined,
		Channels: channels,
		BuiltAt:  r.now(),
	})

	path := filepath.Join(r.cfg.ArchiveDir, cache.PlaylistFile)
	if err := writeArchive(path, combined, logger); err != nil {
		// Serving continues from memory even when persistence fails.
		metrics.RecordPersistError("playlist")
		logger.Error().
			Err(err).
			Str("event", "playlist.persist_failed").
			Str("path", path).
			Msg("failed to persist playlist")
	}

	metrics.RecordPlaylistBuild(len(channels), time.Since(started))
	logger.Info().
		Str("event", "playlist.build.done").
		Int("channels", len(channels)).
		Msg("playlist build finished")
	return nil
}
