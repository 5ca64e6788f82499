package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "pane-send"

// Metrics holds all OTEL metric instruments for pane-send.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Send requests partitioned by result (ok, cancelled, empty_input, ...)
	Sends metric.Int64Counter

	// Individual tmux injections
	LiteralInjections metric.Int64Counter
	KeyInjections     metric.Int64Counter

	// Target resolutions partitioned by outcome (default, last_used, picked, cancelled)
	Resolutions metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Sends, err = meter.Int64Counter("sends.total",
		metric.WithDescription("Send requests partitioned by result"))
	if err != nil {
		return nil, err
	}

	m.LiteralInjections, err = meter.Int64Counter("keystrokes.literal",
		metric.WithDescription("Literal text injections (send-keys -l or paste-buffer)"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}

	m.KeyInjections, err = meter.Int64Counter("keystrokes.key",
		metric.WithDescription("Named key injections, line separators and final keys included"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}

	m.Resolutions, err = meter.Int64Counter("resolutions.total",
		metric.WithDescription("Target resolutions partitioned by outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSend records one send request with its result kind.
func (m *Metrics) RecordSend(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.Sends.Add(ctx, 1, metric.WithAttributes(
		attribute.String("send.result", result),
	))
}

// RecordInjections records completed literal and key injections.
func (m *Metrics) RecordInjections(ctx context.Context, literal, keys int64) {
	if m == nil {
		return
	}
	if literal > 0 {
		m.LiteralInjections.Add(ctx, literal)
	}
	if keys > 0 {
		m.KeyInjections.Add(ctx, keys)
	}
}

// RecordResolution records how a target was chosen.
func (m *Metrics) RecordResolution(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resolution.outcome", outcome),
	))
}
