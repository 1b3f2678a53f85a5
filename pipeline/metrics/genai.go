/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry metrics for provider calls.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// GenAI records token usage and call latency for generation and judge calls,
// with the model and phase as dimensions. Metric creation degrades
// gracefully: a counter that fails to initialize is replaced by a no-op so
// the pipeline never fails on observability setup.
type GenAI struct {
	meter            metric.Meter
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	callLatency      metric.Float64Histogram
}

// NewGenAI creates a GenAI metrics instance under the given meter name. The
// meter name should be unified across the pipeline (e.g. "planbench"), with
// model and phase serving as dimensions on the recorded metrics.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	callLatency, err := meter.Float64Histogram("genai.call.latency",
		metric.WithDescription("Wall-clock latency of provider calls"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create call latency histogram, metrics will be disabled", "error", err, "meter", meterName)
		callLatency = noop.Float64Histogram{}
	}

	return &GenAI{
		meter:            meter,
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		callLatency:      callLatency,
	}
}

// RecordCall records one provider exchange: its latency and, where the
// provider reported them, token counts.
func (m *GenAI) RecordCall(ctx context.Context, model, phase string, latency time.Duration, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("phase", phase),
	)

	m.callLatency.Record(ctx, latency.Seconds(), attrs)
	if promptTokens > 0 || completionTokens > 0 {
		m.promptTokens.Add(ctx, promptTokens, attrs)
		m.completionTokens.Add(ctx, completionTokens, attrs)
	}
}
