// SPDX-License-Identifier: MIT

// Package cache holds the current playlist and EPG artifacts. Snapshots are
// immutable and replaced wholesale by atomic pointer swap, so readers never
// observe a half-built artifact.
package cache

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tvh2g/tvh2g/internal/m3u"
)

// Archive file names. Both files are overwritten wholesale on each
// successful build/merge.
const (
	PlaylistFile    = "playlist.m3u"
	RetainedEPGFile = "epg_retained.xml"
)

// PlaylistSnapshot is one published playlist build: the artifact text and
// the channel table parsed from it, always from the same build.
type PlaylistSnapshot struct {
	Text     string
	Channels []m3u.Channel
	BuiltAt  time.Time
}

// EPGSnapshot is the retained merged guide document.
type EPGSnapshot struct {
	Text     string
	MergedAt time.Time
}

// Store is the shared artifact cache. Writers publish complete snapshots;
// readers get an immutable reference or nil.
type Store struct {
	playlist atomic.Pointer[PlaylistSnapshot]
	epg      atomic.Pointer[EPGSnapshot]
}

func New() *Store {
	return &Store{}
}

// PublishPlaylist swaps in a new playlist snapshot.
func (s *Store) PublishPlaylist(snap *PlaylistSnapshot) {
	s.playlist.Store(snap)
}

// Playlist returns the current playlist snapshot, or nil before the first
// build.
func (s *Store) Playlist() *PlaylistSnapshot {
	return s.playlist.Load()
}

// PublishEPG swaps in a new retained EPG snapshot.
func (s *Store) PublishEPG(snap *EPGSnapshot) {
	s.epg.Store(snap)
}

// EPG returns the current retained EPG snapshot, or nil if none exists.
func (s *Store) EPG() *EPGSnapshot {
	return s.epg.Load()
}

// LoadArchive pre-loads snapshots from the archive directory so the daemon
// serves the previous artifacts immediately after a restart. Missing files
// are not an error.
func (s *Store) LoadArchive(dir string, logger zerolog.Logger) {
	if text, at, ok := readArchiveFile(filepath.Join(dir, PlaylistFile)); ok {
		s.PublishPlaylist(&PlaylistSnapshot{
			Text:     text,
			Channels: m3u.Parse(text),
			BuiltAt:  at,
		})
		logger.Info().
			Str("event", "cache.warmstart.playlist").
			Int("channels", len(s.Playlist().Channels)).
			Msg("loaded playlist from archive")
	}

	if text, at, ok := readArchiveFile(filepath.Join(dir, RetainedEPGFile)); ok {
		s.PublishEPG(&EPGSnapshot{Text: text, MergedAt: at})
		logger.Info().
			Str("event", "cache.warmstart.epg").
			Msg("loaded retained EPG from archive")
	}
}

func readArchiveFile(path string) (string, time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, false
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is under the configured archive dir
	if err != nil {
		return "", time.Time{}, false
	}
	return string(data), info.ModTime(), true
}
