package config_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"
	lognoop "go.opentelemetry.io/otel/log/noop"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/AntonStoeckl/bookshelf-viewmodel/adapters/oteladapter"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell/config"
)

type logExporterSpy struct {
	mu     sync.Mutex
	bodies []string
}

func (e *logExporterSpy) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, record := range records {
		e.bodies = append(e.bodies, record.Body().AsString())
	}

	return nil
}

func (e *logExporterSpy) Shutdown(context.Context) error   { return nil }
func (e *logExporterSpy) ForceFlush(context.Context) error { return nil }

func (e *logExporterSpy) Bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.bodies...)
}

func restoreNoopGlobals(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		global.SetLoggerProvider(lognoop.NewLoggerProvider())
	})
}

func Test_NewObservabilityProviders_InstallsGlobalProviders(t *testing.T) {
	// arrange
	restoreNoopGlobals(t)
	ctx := context.Background()
	spans := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()
	logs := &logExporterSpy{}

	providers, err := config.NewObservabilityProviders(ctx, config.ObservabilityExporters{
		Spans:   spans,
		Metrics: reader,
		Logs:    logs,
	})
	require.NoError(t, err)

	// act
	tracing := oteladapter.NewTracingCollector(otel.Tracer(config.ServiceName))
	_, span := tracing.StartSpan(ctx, "authors.load", map[string]string{"source": "test"})
	tracing.FinishSpan(span, "success", nil)

	metrics := oteladapter.NewMetricsCollector(otel.Meter(config.ServiceName))
	metrics.IncrementCounterContext(ctx, "loads_total", map[string]string{"status": "success"})

	logger, err := config.NewLogger(nil, config.LogFormatOTel, config.LogLevelInfo)
	require.NoError(t, err)
	logger.InfoContext(ctx, "authors loaded", "author_count", 3)

	// assert
	require.NoError(t, providers.TracerProvider.ForceFlush(ctx))
	require.Len(t, spans.GetSpans(), 1)
	assert.Equal(t, "authors.load", spans.GetSpans()[0].Name)
	serviceName, found := providers.Resource.Set().Value(attribute.Key("service.name"))
	require.True(t, found)
	assert.Equal(t, config.ServiceName, serviceName.AsString())

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &collected))
	require.Len(t, collected.ScopeMetrics, 1)
	assert.Equal(t, "loads_total", collected.ScopeMetrics[0].Metrics[0].Name)

	require.NoError(t, providers.LoggerProvider.ForceFlush(ctx))
	assert.Contains(t, logs.Bodies(), "authors loaded")

	assert.NoError(t, providers.Shutdown(ctx))
}

func Test_NewObservabilityProviders_RequiresAllExporters(t *testing.T) {
	// act
	_, err := config.NewObservabilityProviders(context.Background(), config.ObservabilityExporters{
		Spans: tracetest.NewInMemoryExporter(),
	})

	// assert
	assert.ErrorIs(t, err, config.ErrMissingExporter)
}
