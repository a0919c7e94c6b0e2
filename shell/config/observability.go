package config

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// ServiceName identifies the bookshelf binaries in telemetry backends.
	ServiceName = "bookshelf"

	metricExportInterval = 5 * time.Second
)

// ErrMissingExporter is returned by NewObservabilityProviders when an exporter is nil.
var ErrMissingExporter = errors.New("observability exporter must not be nil")

// ObservabilityExporters are the sinks the providers export to.
type ObservabilityExporters struct {
	Spans   sdktrace.SpanExporter
	Metrics sdkmetric.Reader
	Logs    sdklog.Exporter
}

// ObservabilityProviders holds the OpenTelemetry SDK providers installed as globals.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Resource       *resource.Resource
}

// NewOTLPExporters creates OTLP gRPC exporters for traces, metrics and logs, all sent to endpoint
// without TLS. Connections are established lazily.
func NewOTLPExporters(ctx context.Context, endpoint string) (ObservabilityExporters, error) {
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return ObservabilityExporters{}, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return ObservabilityExporters{}, errors.Join(err, traceExporter.Shutdown(ctx))
	}

	logExporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return ObservabilityExporters{}, errors.Join(err, traceExporter.Shutdown(ctx), metricExporter.Shutdown(ctx))
	}

	return ObservabilityExporters{
		Spans:   traceExporter,
		Metrics: sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval)),
		Logs:    logExporter,
	}, nil
}

// NewObservabilityProviders builds tracer, meter and logger providers on top of exporters
// and installs them, plus the W3C trace context propagator, as OpenTelemetry globals.
func NewObservabilityProviders(ctx context.Context, exporters ObservabilityExporters) (*ObservabilityProviders, error) {
	if exporters.Spans == nil || exporters.Metrics == nil || exporters.Logs == nil {
		return nil, ErrMissingExporter
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	providers := &ObservabilityProviders{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporters.Spans),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporters.Metrics),
			sdkmetric.WithResource(res),
		),
		LoggerProvider: sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exporters.Logs)),
			sdklog.WithResource(res),
		),
		Resource: res,
	}

	otel.SetTracerProvider(providers.TracerProvider)
	otel.SetMeterProvider(providers.MeterProvider)
	global.SetLoggerProvider(providers.LoggerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return providers, nil
}

// Shutdown flushes and stops all providers. It keeps going after a failure and returns every error.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
		p.LoggerProvider.Shutdown(ctx),
	)
}
