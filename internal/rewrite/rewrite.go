// SPDX-License-Identifier: MIT

// Package rewrite holds the playlist and EPG text transformations. All
// pattern-based surgery on raw M3U/XMLTV text lives here so the aggregation
// and merge logic never touch raw text directly.
package rewrite

import (
	"net/url"
	"regexp"
	"strings"
)

// AuthMode selects which URLs of a playlist receive an auth parameter.
type AuthMode string

const (
	AuthStream AuthMode = "stream"   // primary stream URL lines
	AuthLogo   AuthMode = "tvg-logo" // logo attribute URLs in EXTINF lines
	AuthBoth   AuthMode = "both"
)

// AuthOptions controls InjectAuth.
type AuthOptions struct {
	Mode AuthMode
	// LogoAuth gates logo-URL injection independently of Mode. When false,
	// logo URLs pass through untouched.
	LogoAuth bool
	// Overwrite replaces an existing auth parameter instead of keeping it.
	// The per-user pass never overwrites; the server-wide pass does.
	Overwrite bool
}

var (
	logoAttr = regexp.MustCompile(`tvg-logo="([^"]+)"`)
	tzOffset = regexp.MustCompile(` [+-]\d{4}"`)
)

// InjectGroupTitle inserts group-title="<group>" before the first comma of an
// EXTINF line. Lines that are not EXTINF lines or already carry a group-title
// attribute are returned unchanged.
func InjectGroupTitle(line, group string) string {
	if !strings.HasPrefix(line, "#EXTINF") {
		return line
	}
	if strings.Contains(line, "group-title") {
		return line
	}
	return strings.Replace(line, ",", ` group-title="`+group+`",`, 1)
}

// InjectGroupTitles applies InjectGroupTitle to every line of a playlist.
func InjectGroupTitles(text, group string) string {
	lines := splitLines(text)
	for i, line := range lines {
		lines[i] = InjectGroupTitle(line, group)
	}
	return joinLines(lines)
}

// InjectAuth adds an auth=<token> query parameter to the URLs of a playlist
// selected by opts.Mode. Stream URLs are the lines starting with "http";
// logo URLs are tvg-logo attributes inside EXTINF lines.
func InjectAuth(text, token string, opts AuthOptions) string {
	lines := splitLines(text)
	for i, line := range lines {
		switch {
		case (opts.Mode == AuthStream || opts.Mode == AuthBoth) && strings.HasPrefix(line, "http"):
			lines[i] = InjectURLAuth(line, token, opts.Overwrite)
		case (opts.Mode == AuthLogo || opts.Mode == AuthBoth) && strings.Contains(line, `tvg-logo="`):
			if !opts.LogoAuth {
				continue
			}
			lines[i] = logoAttr.ReplaceAllStringFunc(line, func(m string) string {
				sub := logoAttr.FindStringSubmatch(m)
				return `tvg-logo="` + InjectURLAuth(sub[1], token, opts.Overwrite) + `"`
			})
		}
	}
	return joinLines(lines)
}

// InjectURLAuth appends auth=<token> to a single URL unless the parameter is
// already present. With overwrite set, an existing auth value is replaced in
// place; other parameters and their order are preserved either way.
func InjectURLAuth(rawURL, token string, overwrite bool) string {
	base, query, fragment := splitURL(rawURL)
	pair := "auth=" + url.QueryEscape(token)

	if query == "" {
		return base + "?" + pair + fragment
	}

	pairs := strings.Split(query, "&")
	for i, p := range pairs {
		if paramName(p) != "auth" {
			continue
		}
		if overwrite {
			pairs[i] = pair
			return base + "?" + strings.Join(pairs, "&") + fragment
		}
		return rawURL
	}
	return base + "?" + query + "&" + pair + fragment
}

// StripQueryParam removes a named query parameter from a URL, preserving the
// remaining parameters and their order.
func StripQueryParam(rawURL, name string) string {
	base, query, fragment := splitURL(rawURL)
	if query == "" {
		return rawURL
	}
	kept := make([]string, 0, 4)
	for _, p := range strings.Split(query, "&") {
		if paramName(p) == name {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return base + fragment
	}
	return base + "?" + strings.Join(kept, "&") + fragment
}

// StripStreamQueryParam removes a named query parameter from every stream URL
// line of a playlist. Used to drop stale "profile" parameters before auth
// injection.
func StripStreamQueryParam(text, name string) string {
	lines := splitLines(text)
	for i, line := range lines {
		if strings.HasPrefix(line, "http") {
			lines[i] = StripQueryParam(line, name)
		}
	}
	return joinLines(lines)
}

// StripTimezoneOffset removes trailing 4-digit signed timezone offsets from
// timestamp attributes, e.g. start="20240101000000 +0100" becomes
// start="20240101000000". Plain text substitution, not XML-aware.
func StripTimezoneOffset(xmlText string) string {
	return tzOffset.ReplaceAllString(xmlText, `"`)
}

func paramName(pair string) string {
	if i := strings.IndexByte(pair, '='); i >= 0 {
		return pair[:i]
	}
	return pair
}

func splitURL(rawURL string) (base, query, fragment string) {
	base = rawURL
	if i := strings.IndexByte(base, '#'); i >= 0 {
		fragment = base[i:]
		base = base[:i]
	}
	if i := strings.IndexByte(base, '?'); i >= 0 {
		query = base[i+1:]
		base = base[:i]
	}
	return base, query, fragment
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}
