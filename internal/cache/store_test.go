// SPDX-License-Identifier: MIT
package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsEmpty(t *testing.T) {
	s := New()
	assert.Nil(t, s.Playlist())
	assert.Nil(t, s.EPG())
}

func TestPublishSwapsWholeSnapshot(t *testing.T) {
	s := New()
	first := &PlaylistSnapshot{Text: "#EXTM3U\n", BuiltAt: time.Now()}
	s.PublishPlaylist(first)
	require.Same(t, first, s.Playlist())

	second := &PlaylistSnapshot{Text: "#EXTM3U\n# rebuilt\n", BuiltAt: time.Now()}
	s.PublishPlaylist(second)
	require.Same(t, second, s.Playlist())
	// The old snapshot is untouched; readers holding it still see a
	// consistent artifact.
	assert.Equal(t, "#EXTM3U\n", first.Text)
}

func TestLoadArchive(t *testing.T) {
	dir := t.TempDir()
	playlist := "#EXTM3U\n#EXTINF:-1 tvg-id=\"5\",News\nhttp://host/stream/channelid/9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlaylistFile), []byte(playlist), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, RetainedEPGFile), []byte(`<tv><channel id="1"/></tv>`), 0o644))

	s := New()
	s.LoadArchive(dir, zerolog.Nop())

	snap := s.Playlist()
	require.NotNil(t, snap)
	assert.Equal(t, playlist, snap.Text)
	require.Len(t, snap.Channels, 1)
	assert.Equal(t, "9", snap.Channels[0].ChannelID)
	assert.False(t, snap.BuiltAt.IsZero())

	epg := s.EPG()
	require.NotNil(t, epg)
	assert.Contains(t, epg.Text, `channel id="1"`)
}

func TestLoadArchiveMissingFiles(t *testing.T) {
	s := New()
	s.LoadArchive(t.TempDir(), zerolog.Nop())
	assert.Nil(t, s.Playlist())
	assert.Nil(t, s.EPG())
}
