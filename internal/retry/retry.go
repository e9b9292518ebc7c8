// SPDX-License-Identifier: MIT

// Package retry wraps fetch operations with bounded, fixed-delay retries.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Do invokes fn up to attempts times, sleeping delay between failures. Each
// failed attempt except the last is logged at warning level; the last is
// logged at error level and its error returned. The first success returns
// immediately. The inter-attempt sleep honours context cancellation.
func Do[T any](ctx context.Context, logger zerolog.Logger, desc string, attempts int, delay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt < attempts {
			logger.Warn().
				Err(err).
				Str("op", desc).
				Int("attempt", attempt).
				Int("attempts", attempts).
				Dur("delay", delay).
				Msg("fetch failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				// Keep the fetch error visible alongside the cancellation.
				return zero, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			}
			continue
		}
		logger.Error().
			Err(err).
			Str("op", desc).
			Int("attempts", attempts).
			Msg("fetch failed, giving up")
	}
	return zero, lastErr
}
