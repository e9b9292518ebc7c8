// SPDX-License-Identifier: MIT
package epg

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *TV {
	t.Helper()
	doc, err := Parse(text)
	require.NoError(t, err)
	return doc
}

func TestMergeRetainsEventsWithinWindow(t *testing.T) {
	retained := mustParse(t, `<tv><channel id="1"/><programme start="20240101000000" stop="20240101010000" channel="1"/></tv>`)
	fresh := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"/></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(retained, fresh, Cutoff(now, 30))

	require.Len(t, merged.Channels, 1)
	assert.Equal(t, "1", merged.Channels[0].ID)
	require.Len(t, merged.Programmes, 2)
	// Retained first, then fresh.
	assert.Equal(t, "20240101000000", merged.Programmes[0].Start)
	assert.Equal(t, "20240102000000", merged.Programmes[1].Start)
}

func TestMergeDropsOrphansWhenChannelRemoved(t *testing.T) {
	retained := mustParse(t, `<tv><channel id="1"/><programme start="20240101000000" stop="20240101010000" channel="1"/></tv>`)
	fresh := mustParse(t, `<tv><programme start="20240102000000" stop="20240102010000" channel="1"/></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(retained, fresh, Cutoff(now, 30))

	assert.Empty(t, merged.Channels)
	assert.Empty(t, merged.Programmes)
}

func TestMergeIdempotent(t *testing.T) {
	retained := mustParse(t, `<tv><channel id="1"/><programme start="20240101000000" stop="20240101010000" channel="1"><title>a</title></programme></tv>`)
	fresh := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"><title>b</title></programme></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)
	cutoff := Cutoff(now, 30)

	once := Merge(retained, fresh, cutoff)
	twice := Merge(once, fresh, cutoff)

	onceText, err := Marshal(once)
	require.NoError(t, err)
	twiceText, err := Marshal(twice)
	require.NoError(t, err)
	if diff := cmp.Diff(onceText, twiceText); diff != "" {
		t.Fatalf("second merge changed the document (-once +twice):\n%s", diff)
	}
}

func TestMergeFirstSeenWinsOnDuplicateKey(t *testing.T) {
	retained := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"><title>retained copy</title></programme></tv>`)
	fresh := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"><title>fresh copy</title></programme></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(retained, fresh, Cutoff(now, 30))

	require.Len(t, merged.Programmes, 1)
	assert.Contains(t, merged.Programmes[0].Inner, "retained copy")
}

func TestMergePrunesEventsBeforeCutoff(t *testing.T) {
	retained := mustParse(t, `<tv>`+
		`<programme start="20231101000000" stop="20231101010000" channel="1"/>`+
		`<programme start="20240101000000" stop="20240101010000" channel="1"/>`+
		`</tv>`)
	fresh := mustParse(t, `<tv><channel id="1"/></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(retained, fresh, Cutoff(now, 30))

	require.Len(t, merged.Programmes, 1)
	assert.Equal(t, "20240101000000", merged.Programmes[0].Start)
}

func TestMergeSkipsUnparsableStart(t *testing.T) {
	retained := mustParse(t, `<tv><programme start="garbage" stop="20240101010000" channel="1"/></tv>`)
	fresh := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"/></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(retained, fresh, Cutoff(now, 30))

	require.Len(t, merged.Programmes, 1)
	assert.Equal(t, "20240102000000", merged.Programmes[0].Start)
}

func TestMergeChannelDeclarations(t *testing.T) {
	fresh := mustParse(t, `<tv>`+
		`<channel id="1"><display-name>first</display-name></channel>`+
		`<channel id="2"/>`+
		`<channel id="1"><display-name>second</display-name></channel>`+
		`<channel id=""/>`+
		`</tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(&TV{}, fresh, Cutoff(now, 30))

	require.Len(t, merged.Channels, 2)
	// First-seen position, later declaration content.
	assert.Equal(t, "1", merged.Channels[0].ID)
	assert.Contains(t, merged.Channels[0].Inner, "second")
	assert.Equal(t, "2", merged.Channels[1].ID)
}

func TestMergeWithNilRetained(t *testing.T) {
	fresh := mustParse(t, `<tv><channel id="1"/><programme start="20240102000000" stop="20240102010000" channel="1"/></tv>`)
	now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)

	merged := Merge(nil, fresh, Cutoff(now, 30))
	require.Len(t, merged.Programmes, 1)
}
