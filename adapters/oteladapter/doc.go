// Package oteladapter plugs OpenTelemetry into the observability interfaces of the shell package.
//
// It offers three collectors:
//   - TracingCollector over a trace.Tracer
//   - MetricsCollector over a metric.Meter (histograms, counters, gauges)
//   - SlogBridgeLogger, a *slog.Logger routed through the otelslog bridge
//
// All of them can be passed to the WithTracing, WithMetrics and WithContextualLogger options
// of the datasource, dispatcher and command handler packages.
package oteladapter
