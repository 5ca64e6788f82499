package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" Authorization=Basic abc= , x-team = core,broken,=novalue")
	assert.Equal(t, map[string]string{
		"Authorization": "Basic abc=",
		"x-team":        "core",
	}, got)
	assert.Empty(t, parseHeaders(""))
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, OTELConfig{})
	require.NoError(t, err)
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Metrics)

	_, span := tel.Tracer.Start(ctx, "send")
	span.End()
	tel.Metrics.RecordSend(ctx, "ok")
	tel.Metrics.RecordInjections(ctx, 3, 2)
	tel.Shutdown(ctx)
}

func TestNilMetricsAndTelemetryAreSafe(t *testing.T) {
	ctx := context.Background()
	var m *Metrics
	m.RecordSend(ctx, "ok")
	m.RecordInjections(ctx, 1, 1)
	m.RecordResolution(ctx, "picked")

	var tel *Telemetry
	tel.Shutdown(ctx)
}

func TestInitRejectsBadEndpoint(t *testing.T) {
	_, err := Init(context.Background(), OTELConfig{Endpoint: "://bad"})
	assert.Error(t, err)
}

func TestParseEndpoint(t *testing.T) {
	ep, err := parseEndpoint("http://collector:4318/otel/")
	require.NoError(t, err)
	assert.Equal(t, endpoint{host: "collector:4318", path: "/otel", insecure: true}, ep)

	ep, err = parseEndpoint("https://otlp.example.com")
	require.NoError(t, err)
	assert.Equal(t, endpoint{host: "otlp.example.com"}, ep)

	_, err = parseEndpoint("localhost")
	assert.Error(t, err)
}
