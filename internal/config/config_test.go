// SPDX-License-Identifier: MIT
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUsers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []User
	}{
		{
			name: "two users",
			raw:  "alice:pw1,bob:pw2",
			want: []User{{Name: "alice", Secret: "pw1"}, {Name: "bob", Secret: "pw2"}},
		},
		{
			name: "entries without colon dropped",
			raw:  "alice:pw1,broken,bob:pw2",
			want: []User{{Name: "alice", Secret: "pw1"}, {Name: "bob", Secret: "pw2"}},
		},
		{
			name: "whitespace trimmed around entries",
			raw:  " alice:pw1 , bob:pw2 ",
			want: []User{{Name: "alice", Secret: "pw1"}, {Name: "bob", Secret: "pw2"}},
		},
		{
			name: "secret may contain colons",
			raw:  "alice:pw:with:colons",
			want: []User{{Name: "alice", Secret: "pw:with:colons"}},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseUsers(tc.raw))
		})
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TVH_USERS", "alice:pw1")

	cfg := FromEnv()

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9981, cfg.Port)
	assert.Equal(t, "http://127.0.0.1:9981", cfg.BaseURL())
	assert.Equal(t, "0 5 * * *", cfg.RefreshSchedule)
	assert.Equal(t, cfg.RefreshSchedule, cfg.EPGRefreshSchedule, "EPG schedule defaults to playlist schedule")
	assert.Equal(t, 2, cfg.EPGRetentionDays)
	assert.Equal(t, 50, cfg.EPGRetentionSizeMB)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
	assert.Equal(t, "archive", cfg.ArchiveDir)
	assert.Equal(t, "pw1", cfg.ServerAuth, "server auth falls back to first user's secret")
}

func TestFromEnvExplicitServerAuth(t *testing.T) {
	t.Setenv("TVH_USERS", "alice:pw1")
	t.Setenv("TVH_URL_AUTH", "globaltoken")

	cfg := FromEnv()
	assert.Equal(t, "globaltoken", cfg.ServerAuth)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) Config {
		t.Helper()
		return Config{
			Users:              []User{{Name: "alice", Secret: "pw"}},
			RefreshSchedule:    "0 5 * * *",
			EPGRefreshSchedule: "0 6 * * *",
			ArchiveDir:         t.TempDir(),
			RetryAttempts:      3,
		}
	}

	t.Run("accepts a sane config", func(t *testing.T) {
		require.NoError(t, valid(t).Validate())
	})

	t.Run("rejects missing users", func(t *testing.T) {
		cfg := valid(t)
		cfg.Users = nil
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects bad cron expression", func(t *testing.T) {
		cfg := valid(t)
		cfg.RefreshSchedule = "not a cron"
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive retention when enabled", func(t *testing.T) {
		cfg := valid(t)
		cfg.EPGRetentionEnabled = true
		cfg.EPGRetentionDays = 0
		cfg.EPGRetentionSizeMB = 50
		require.Error(t, cfg.Validate())
	})

	t.Run("retention values ignored when disabled", func(t *testing.T) {
		cfg := valid(t)
		cfg.EPGRetentionDays = 0
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects zero retry attempts", func(t *testing.T) {
		cfg := valid(t)
		cfg.RetryAttempts = 0
		require.Error(t, cfg.Validate())
	})
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"1", "true", "yes", "TRUE", "Yes"} {
		t.Setenv("TVH2G_TEST_BOOL", truthy)
		assert.True(t, ParseBool("TVH2G_TEST_BOOL", false), "value %q", truthy)
	}
	for _, falsy := range []string{"0", "false", "no", "anything"} {
		t.Setenv("TVH2G_TEST_BOOL", falsy)
		assert.False(t, ParseBool("TVH2G_TEST_BOOL", true), "value %q", falsy)
	}
}
