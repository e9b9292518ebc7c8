// SPDX-License-Identifier: MIT

package epg

import "time"

// Merge combines the retained document with a freshly fetched one under the
// retention policy.
//
// Channel declarations come exclusively from the fresh document, deduplicated
// by id with the later declaration winning. Programmes are walked retained
// first, then fresh; a programme is dropped when its channel is not declared
// in the fresh document, its start does not parse, its start is before the
// cutoff, or its identity key was already emitted. Retained copies therefore
// win ties over fresh copies of the same key.
func Merge(retained, fresh *TV, cutoff time.Time) *TV {
	merged := &TV{}

	validChannels := make(map[string]bool, len(fresh.Channels))
	channelIndex := make(map[string]int, len(fresh.Channels))
	for _, ch := range fresh.Channels {
		if ch.ID == "" {
			continue
		}
		if i, dup := channelIndex[ch.ID]; dup {
			merged.Channels[i] = ch
			continue
		}
		channelIndex[ch.ID] = len(merged.Channels)
		merged.Channels = append(merged.Channels, ch)
		validChannels[ch.ID] = true
	}

	seen := make(map[Key]bool)
	for _, doc := range []*TV{retained, fresh} {
		if doc == nil {
			continue
		}
		for _, p := range doc.Programmes {
			if !validChannels[p.Channel] {
				continue
			}
			start, err := ParseStart(p.Start)
			if err != nil {
				continue
			}
			if start.Before(cutoff) {
				continue
			}
			key := p.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged.Programmes = append(merged.Programmes, p)
		}
	}

	return merged
}

// Cutoff computes the retention cutoff for a merge: anything starting before
// now minus the window is pruned.
func Cutoff(now time.Time, retentionDays int) time.Time {
	return now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
}
