// SPDX-License-Identifier: MIT

// Package epg models XMLTV program-guide documents and implements the
// retention merge that combines a freshly fetched guide with the previously
// retained one.
package epg

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// TV is the root element of an XMLTV document. Channel and programme payloads
// are carried verbatim so descriptive content survives a merge untouched.
type TV struct {
	XMLName    xml.Name    `xml:"tv"`
	Channels   []Channel   `xml:"channel"`
	Programmes []Programme `xml:"programme"`
}

// Channel is a channel declaration. Attrs and Inner preserve everything
// beyond the id so the document round-trips.
type Channel struct {
	ID    string     `xml:"id,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner string     `xml:",innerxml"`
}

// Programme is a single program event. Its identity for deduplication is the
// (start, stop, channel) triple; the payload does not participate.
type Programme struct {
	Start   string     `xml:"start,attr"`
	Stop    string     `xml:"stop,attr"`
	Channel string     `xml:"channel,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// Key is the identity triple used to deduplicate programmes.
type Key struct {
	Start   string
	Stop    string
	Channel string
}

// Key returns the programme's identity triple.
func (p Programme) Key() Key {
	return Key{Start: p.Start, Stop: p.Stop, Channel: p.Channel}
}

// timeLayout matches the fixed-width prefix of XMLTV timestamps
// (YYYYMMDDHHMMSS, optionally followed by a timezone offset).
const timeLayout = "20060102150405"

// ParseStart parses a programme start timestamp. Only the fixed-width prefix
// is considered; any offset suffix is ignored. Times are interpreted in local
// time, matching the retention cutoff comparison.
func ParseStart(ts string) (time.Time, error) {
	if len(ts) < len(timeLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q too short", ts)
	}
	return time.ParseInLocation(timeLayout, ts[:len(timeLayout)], time.Local)
}

// Parse decodes an XMLTV document. Empty input yields an empty document, the
// stand-in for an absent retained file.
func Parse(text string) (*TV, error) {
	if strings.TrimSpace(text) == "" {
		return &TV{}, nil
	}
	var doc TV
	dec := xml.NewDecoder(strings.NewReader(text))
	// No entity expansion: guide documents are plain data.
	dec.Entity = make(map[string]string)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode xmltv: %w", err)
	}
	return &doc, nil
}

// Marshal renders the document with an XML declaration, ready for persisting
// and serving.
func Marshal(doc *TV) (string, error) {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode xmltv: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// DateRange reports the earliest and latest parseable programme start times.
// ok is false when the document has no parseable programmes.
func DateRange(doc *TV) (earliest, latest time.Time, ok bool) {
	for _, p := range doc.Programmes {
		start, err := ParseStart(p.Start)
		if err != nil {
			continue
		}
		if !ok || start.Before(earliest) {
			earliest = start
		}
		if !ok || start.After(latest) {
			latest = start
		}
		ok = true
	}
	return earliest, latest, ok
}
