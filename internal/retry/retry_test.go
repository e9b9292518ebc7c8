// SPDX-License-Identifier: MIT
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), zerolog.Nop(), "op", 3, time.Hour, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls, "no retries after a success")
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), zerolog.Nop(), "op", 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("down")
	_, err := Do(context.Background(), zerolog.Nop(), "op", 3, time.Millisecond, func() (string, error) {
		calls++
		return "", wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestDoHonoursContextDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Do(ctx, zerolog.Nop(), "op", 3, time.Hour, func() (string, error) {
		calls++
		return "", errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "transient", "the fetch error must survive cancellation")
	assert.Equal(t, 1, calls, "cancellation must interrupt the inter-attempt delay")
}
