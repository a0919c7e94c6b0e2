// Package promadapter implements shell.MetricsCollector on top of the Prometheus client.
//
// Vectors are created and registered on first use of a metric name:
//   - RecordDuration -> HistogramVec, observed in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// The label names of a vector are fixed by the first call for its metric name.
// Later calls fill missing labels with an empty value and drop unknown ones.
package promadapter
