/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry implements the bounded retry policy for transient provider
// failures. The delay between attempts is fixed rather than exponential:
// the providers' rate limits recover on a per-window basis, so waiting a
// constant interval is as effective as backing off and keeps total task
// latency predictable.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures retry behavior for provider calls.
type Config struct {
	// MaxRetries is the number of retry attempts after the first call.
	// 0 means do not retry at all.
	MaxRetries int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// MaxJitter is the maximum random jitter added to each pause.
	MaxJitter time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.Delay < 0 {
		return errors.New("delay cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// ProviderDefaults returns the retry configuration for provider calls:
// 4 total attempts with a fixed 5s pause between them.
func ProviderDefaults() Config {
	return Config{
		MaxRetries: 3,
		Delay:      5 * time.Second,
		MaxJitter:  500 * time.Millisecond,
	}
}

// Do executes fn with bounded fixed-delay retry. It only retries errors that
// are classified as retryable by isRetryable; all other errors are returned
// to the caller immediately.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}

		if !isRetryable(lastErr) {
			return result, lastErr
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		// Random jitter to avoid thundering herd across workers.
		var jitter time.Duration
		if cfg.MaxJitter > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter)))
			if err == nil {
				jitter = time.Duration(n.Int64())
			}
		}

		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("delay", cfg.Delay+jitter).
			With("error", lastErr.Error()).
			Warn("Transient provider failure, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(cfg.Delay + jitter):
		}
	}

	return result, fmt.Errorf("%s failed after %d attempts: %w", operation, cfg.MaxRetries+1, lastErr)
}
