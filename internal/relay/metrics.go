package relay

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the relay's OpenTelemetry counters. Decode noise is counted
// here so swallowed provider garbage stays observable without changing
// stream behaviour.
type metrics struct {
	tokensRelayed  metric.Int64Counter
	decodeNoise    metric.Int64Counter
	relaysComplete metric.Int64Counter
	relaysAborted  metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter("beet-chat/backend/internal/relay")

	tokens, _ := meter.Int64Counter("relay_tokens_relayed_total",
		metric.WithDescription("Tokens forwarded to clients"))
	noise, _ := meter.Int64Counter("relay_decode_noise_total",
		metric.WithDescription("Malformed provider SSE payloads discarded"))
	complete, _ := meter.Int64Counter("relay_streams_completed_total",
		metric.WithDescription("Relay invocations that reached the terminal event"))
	aborted, _ := meter.Int64Counter("relay_streams_aborted_total",
		metric.WithDescription("Relay invocations aborted before the terminal event"))

	return &metrics{
		tokensRelayed:  tokens,
		decodeNoise:    noise,
		relaysComplete: complete,
		relaysAborted:  aborted,
	}
}

func (m *metrics) addTokens(ctx context.Context, n int64) {
	if m.tokensRelayed != nil {
		m.tokensRelayed.Add(ctx, n)
	}
}

func (m *metrics) addNoise(ctx context.Context, n int64) {
	if m.decodeNoise != nil && n > 0 {
		m.decodeNoise.Add(ctx, n)
	}
}

func (m *metrics) completed(ctx context.Context) {
	if m.relaysComplete != nil {
		m.relaysComplete.Add(ctx, 1)
	}
}

func (m *metrics) aborted(ctx context.Context) {
	if m.relaysAborted != nil {
		m.relaysAborted.Add(ctx, 1)
	}
}
