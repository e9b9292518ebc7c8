// SPDX-License-Identifier: MIT
package m3u

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	text := "#EXTM3U\n" +
		`#EXTINF:-1 tvg-id="bbc.uk" tvg-logo="http://host/bbc.png" tvg-chno="101" group-title="UK",BBC One` + "\n" +
		"http://host/stream/channelid/42?auth=secret\n" +
		`#EXTINF:-1,Bare Channel` + "\n" +
		"http://host/stream/other\n"

	channels := Parse(text)
	require.Len(t, channels, 2)

	assert.Equal(t, Channel{
		GroupTitle: "UK",
		Name:       "BBC One",
		Number:     "101",
		TvgID:      "bbc.uk",
		TvgLogo:    "http://host/bbc.png",
		ChannelID:  "42",
		StreamURL:  "http://host/stream/channelid/42?auth=secret",
	}, channels[0])

	assert.Equal(t, Channel{
		Name:      "Bare Channel",
		StreamURL: "http://host/stream/other",
	}, channels[1])
}

func TestParseSkipsStrayLines(t *testing.T) {
	text := "#EXTM3U\n" +
		"# Failed to fetch tags for user alice: connection refused\n" +
		"http://host/orphan-url\n" +
		`#EXTINF:-1 tvg-id="5",News` + "\n" +
		"http://host/stream/channelid/7\n" +
		"random garbage\n"

	channels := Parse(text)
	require.Len(t, channels, 1)
	assert.Equal(t, "News", channels[0].Name)
	assert.Equal(t, "7", channels[0].ChannelID)
}

func TestParseTrailingEXTINFWithoutURL(t *testing.T) {
	channels := Parse(`#EXTINF:-1 tvg-id="5",News`)
	require.Len(t, channels, 1)
	assert.Equal(t, "News", channels[0].Name)
	assert.Empty(t, channels[0].StreamURL)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("#EXTM3U\n"))
}

func TestParseNameAfterFirstComma(t *testing.T) {
	channels := Parse(`#EXTINF:-1 tvg-id="5",News, Weather & More` + "\n" + "http://host/s\n")
	require.Len(t, channels, 1)
	assert.Equal(t, "News, Weather & More", channels[0].Name)
}
