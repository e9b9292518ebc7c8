// SPDX-License-Identifier: MIT

package epg

import (
	"time"

	"github.com/rs/zerolog"
)

// Report summarises a read-only validation pass over a merged document.
// Duplicates and Stale must be zero by construction of Merge; non-zero values
// indicate a merge-logic defect, not a runtime fault. Orphans likewise.
type Report struct {
	Programmes int // distinct identity keys
	Duplicates int // keys encountered more than once
	Stale      int // programmes starting before the cutoff
	Orphans    int // programmes referencing an undeclared channel
}

// Validate re-checks the merge invariants on a document. Findings are logged;
// each orphaned programme is logged individually.
func Validate(doc *TV, cutoff time.Time, logger zerolog.Logger) Report {
	channels := make(map[string]bool, len(doc.Channels))
	for _, ch := range doc.Channels {
		channels[ch.ID] = true
	}

	var rep Report
	seen := make(map[Key]bool)
	for _, p := range doc.Programmes {
		start, err := ParseStart(p.Start)
		if err != nil {
			continue
		}
		key := p.Key()
		if seen[key] {
			rep.Duplicates++
		} else {
			seen[key] = true
		}
		if start.Before(cutoff) {
			rep.Stale++
		}
		if !channels[p.Channel] {
			rep.Orphans++
			logger.Warn().
				Str("event", "epg.validate.orphan").
				Str("start", p.Start).
				Str("stop", p.Stop).
				Str("channel", p.Channel).
				Msg("orphaned programme")
		}
	}
	rep.Programmes = len(seen)

	evt := logger.Info()
	if rep.Duplicates > 0 || rep.Stale > 0 || rep.Orphans > 0 {
		evt = logger.Error()
	}
	evt.Str("event", "epg.validate").
		Int("programmes", rep.Programmes).
		Int("duplicates", rep.Duplicates).
		Int("stale", rep.Stale).
		Int("orphans", rep.Orphans).
		Msg("EPG validation complete")

	return rep
}
