package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/emergent-company/ldpgraph/internal/config"
	"github.com/emergent-company/ldpgraph/pkg/logger"
)

func TestDisabledInstallsNoop(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	res, err := NewTracerProvider(&config.Config{}, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, res.SDKProvider)
	assert.IsType(t, noop.TracerProvider{}, otel.GetTracerProvider())
}

func TestEnabledInstallsSDKProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := &config.Config{Otel: config.OtelConfig{
		ExporterEndpoint: "http://127.0.0.1:4318",
		ServiceName:      "ldpgraph-test",
		SamplingRate:     0.5,
	}}
	res, err := NewTracerProvider(cfg, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, res.SDKProvider)
	t.Cleanup(func() { _ = res.SDKProvider.Shutdown(t.Context()) })
	assert.Same(t, res.SDKProvider, otel.GetTracerProvider())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func TestModuleGraph(t *testing.T) {
	require.NoError(t, fx.ValidateApp(logger.Module, config.Module, Module))
}
