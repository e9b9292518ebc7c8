// SPDX-License-Identifier: MIT

// Package tvheadend is a minimal client for the TVHeadend playlist and XMLTV
// endpoints. All requests authenticate via an auth query-string token.
package tvheadend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Tag is a channel grouping advertised by the backend for a user. Transient;
// re-fetched on every playlist build.
type Tag struct {
	Name string
	ID   string
}

type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

var tagIDPath = regexp.MustCompile(`/tagid/(\d+)`)

// Tags fetches and parses the channel-tag listing for one credential. The
// listing is playlist-format text: an EXTINF line naming the tag followed by
// a URL line carrying the tag id in its path.
func (c *Client) Tags(ctx context.Context, secret string) ([]Tag, error) {
	text, err := c.get(ctx, "/playlist/tags", secret)
	if err != nil {
		return nil, err
	}

	var tags []Tag
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "#EXTINF") {
			continue
		}
		idx := strings.Index(line, ",")
		if idx == -1 || i+1 >= len(lines) {
			continue
		}
		name := strings.TrimSpace(line[idx+1:])
		if m := tagIDPath.FindStringSubmatch(strings.TrimSpace(lines[i+1])); m != nil {
			tags = append(tags, Tag{Name: name, ID: m[1]})
		}
		i++
	}
	return tags, nil
}

// TagPlaylist fetches the raw channel-list text for one tag.
func (c *Client) TagPlaylist(ctx context.Context, tagID, secret string) (string, error) {
	return c.get(ctx, "/playlist/tagid/"+url.PathEscape(tagID), secret)
}

// XMLTV fetches the program-guide document using the server-wide token.
func (c *Client) XMLTV(ctx context.Context, auth string) (string, error) {
	return c.get(ctx, "/xmltv/channels", auth)
}

func (c *Client) get(ctx context.Context, path, auth string) (string, error) {
	u := c.base + path
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + "auth=" + url.QueryEscape(auth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: unexpected status %d", path, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: read body: %w", path, err)
	}
	return string(body), nil
}
