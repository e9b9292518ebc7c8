// SPDX-License-Identifier: MIT

// Package m3u parses playlist text into structured channel records.
package m3u

import (
	"regexp"
	"strings"
)

// Channel represents a single channel entry from the combined playlist.
type Channel struct {
	GroupTitle string `json:"group_title"`
	Name       string `json:"channel_name"`
	Number     string `json:"channel_number"`
	TvgID      string `json:"tvg_id"`
	TvgLogo    string `json:"tvg_logo"`
	ChannelID  string `json:"channel_id"`
	StreamURL  string `json:"stream_url"`
}

var channelIDPath = regexp.MustCompile(`/channelid/(\d+)`)

// Parse scans playlist text for EXTINF/URL line pairs and returns the channel
// records. Missing attributes yield empty fields. Lines that are neither
// EXTINF lines nor the URL line following one are skipped; a malformed entry
// never aborts the parse.
func Parse(text string) []Channel {
	var channels []Channel
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "#EXTINF") {
			continue
		}

		ch := Channel{
			GroupTitle: attr(line, "group-title"),
			TvgID:      attr(line, "tvg-id"),
			TvgLogo:    attr(line, "tvg-logo"),
			Number:     attr(line, "tvg-chno"),
		}
		if idx := strings.Index(line, ","); idx != -1 {
			ch.Name = strings.TrimSpace(line[idx+1:])
		}
		if i+1 < len(lines) {
			ch.StreamURL = lines[i+1]
		}
		if m := channelIDPath.FindStringSubmatch(ch.StreamURL); m != nil {
			ch.ChannelID = m[1]
		}
		channels = append(channels, ch)
		i++ // consume the URL line
	}
	return channels
}

// attr extracts a quoted attribute value from an EXTINF line, or "" when the
// attribute is absent.
func attr(line, name string) string {
	marker := name + `="`
	idx := strings.Index(line, marker)
	if idx == -1 {
		return ""
	}
	rest := line[idx+len(marker):]
	end := strings.Index(rest, `"`)
	if end == -1 {
		return ""
	}
	return rest[:end]
}
