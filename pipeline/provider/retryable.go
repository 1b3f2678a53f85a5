/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
)

// statusOf extracts the HTTP status of a provider API error. The second
// return is false for transport-level failures that never reached a
// well-formed HTTP response.
func statusOf(err error) (int, bool) {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode, true
	}
	return 0, false
}

// RetryableForGeneration classifies errors for the generation phase: only
// rate limiting is transient. Transport failures and other non-2xx statuses
// fail immediately so a long batch is not stalled by a dead model.
func RetryableForGeneration(err error) bool {
	sc, ok := statusOf(err)
	return ok && sc == http.StatusTooManyRequests
}

// RetryableForEvaluation classifies errors for the evaluation phase: rate
// limiting and transport-level failures are both transient. Judge calls
// tolerate more retries because an unfilled verdict is costlier than a
// skipped render. Any other non-2xx status still fails immediately.
func RetryableForEvaluation(err error) bool {
	if sc, ok := statusOf(err); ok {
		return sc == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
