// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tvh2g/tvh2g/internal/cache"
	"github.com/tvh2g/tvh2g/internal/epg"
	"github.com/tvh2g/tvh2g/internal/metrics"
	"github.com/tvh2g/tvh2g/internal/retry"
	"github.com/tvh2g/tvh2g/internal/rewrite"
)

// mergeEPG runs one merge cycle: fetch the fresh guide, merge it with the
// retained one under the retention window, publish and persist the result,
// then run the read-only validation pass. A fetch failure aborts the cycle
// and leaves the retained document untouched.
func (r *Runner) mergeEPG(ctx context.Context) error {
	logger := logComponent()
	started := time.Now()
	logger.Info().Str("event", "epg.merge.start").Msg("EPG merge started")

	freshText, err := retry.Do(ctx, logger, "fetch EPG",
		r.cfg.RetryAttempts, r.cfg.RetryDelay, func() (string, error) {
			return r.backend.XMLTV(ctx, r.cfg.ServerAuth)
		})
	if err != nil {
		metrics.RecordFetchFailure("epg")
		metrics.RecordEPGMergeFailure()
		return fmt.Errorf("fetch EPG: %w", err)
	}

	retainedText := ""
	if snap := r.store.EPG(); snap != nil {
		retainedText = snap.Text
	}
	if r.cfg.EPGStripOffset {
		freshText = rewrite.StripTimezoneOffset(freshText)
		retainedText = rewrite.StripTimezoneOffset(retainedText)
	}

	fresh, err := epg.Parse(freshText)
	if err != nil {
		metrics.RecordEPGMergeFailure()
		return fmt.Errorf("parse fetched EPG: %w", err)
	}
	retained, err := epg.Parse(retainedText)
	if err != nil {
		// A corrupt retained document must not block merges forever.
		logger.Warn().
			Err(err).
			Str("event", "epg.retained_corrupt").
			Msg("retained EPG unparseable, merging against empty document")
		retained = &epg.TV{}
	}

	cutoff := epg.Cutoff(r.now(), r.cfg.EPGRetentionDays)
	merged := epg.Merge(retained, fresh, cutoff)

	text, err := epg.Marshal(merged)
	if err != nil {
		metrics.RecordEPGMergeFailure()
		return fmt.Errorf("encode merged EPG: %w", err)
	}

	r.store.PublishEPG(&cache.EPGSnapshot{Text: text, MergedAt: r.now()})

	path := filepath.Join(r.cfg.ArchiveDir, cache.RetainedEPGFile)
	if err := writeArchive(path, text, logger); err != nil {
		metrics.RecordPersistError("epg")
		logger.Error().
			Err(err).
			Str("event", "epg.persist_failed").
			Str("path", path).
			Msg("failed to persist retained EPG")
	}

	// Validation re-parses the persisted text, checking both the merge
	// invariants and the round-trip.
	persisted, err := epg.Parse(text)
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "epg.validate.reparse_failed").
			Msg("merged EPG does not re-parse")
	} else {
		rep := epg.Validate(persisted, cutoff, logger)
		metrics.RecordEPGValidation(rep.Programmes, rep.Duplicates, rep.Stale, rep.Orphans)
	}

	metrics.RecordEPGMerge(time.Since(started))
	logger.Info().
		Str("event", "epg.merge.done").
		Int("channels", len(merged.Channels)).
		Int("programmes", len(merged.Programmes)).
		Msg("EPG merge finished")
	return nil
}
