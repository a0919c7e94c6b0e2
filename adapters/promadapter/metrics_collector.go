package promadapter

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

// ErrNilRegisterer is returned when NewMetricsCollector is called without a registerer.
var ErrNilRegisterer = errors.New("prometheus registerer must not be nil")

// Option configures the MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes every metric name with the given namespace.
func WithNamespace(namespace string) Option {
	return func(c *MetricsCollector) {
		c.namespace = namespace
	}
}

// WithBuckets sets the histogram buckets, in seconds.
func WithBuckets(buckets []float64) Option {
	return func(c *MetricsCollector) {
		c.buckets = buckets
	}
}

type vector[V any] struct {
	vec        V
	labelNames []string
}

// MetricsCollector records metrics into Prometheus vectors.
type MetricsCollector struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]vector[*prometheus.HistogramVec]
	counters   map[string]vector[*prometheus.CounterVec]
	gauges     map[string]vector[*prometheus.GaugeVec]
}

// NewMetricsCollector creates a collector that registers its vectors on the given registerer.
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) (*MetricsCollector, error) {
	if registerer == nil {
		return nil, ErrNilRegisterer
	}

	c := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]vector[*prometheus.HistogramVec]),
		counters:   make(map[string]vector[*prometheus.CounterVec]),
		gauges:     make(map[string]vector[*prometheus.GaugeVec]),
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// RecordDuration observes the duration in seconds.
func (c *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.histograms[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: c.namespace, Name: metric, Help: help(metric), Buckets: c.buckets},
			names,
		)
		if vec, ok = register(c.registerer, vec); !ok {
			return
		}
		v = vector[*prometheus.HistogramVec]{vec: vec, labelNames: names}
		c.histograms[metric] = v
	}

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (c *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.counters[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: c.namespace, Name: metric, Help: help(metric)},
			names,
		)
		if vec, ok = register(c.registerer, vec); !ok {
			return
		}
		v = vector[*prometheus.CounterVec]{vec: vec, labelNames: names}
		c.counters[metric] = v
	}

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Inc()
}

// RecordValue sets the gauge to value.
func (c *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.gauges[metric]
	if !ok {
		names := labelNamesOf(labels)
		vec := prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: c.namespace, Name: metric, Help: help(metric)},
			names,
		)
		if vec, ok = register(c.registerer, vec); !ok {
			return
		}
		v = vector[*prometheus.GaugeVec]{vec: vec, labelNames: names}
		c.gauges[metric] = v
	}

	v.vec.WithLabelValues(labelValuesOf(v.labelNames, labels)...).Set(value)
}

// register reuses an identical vector that is already registered, e.g. by a second collector
// sharing the registerer. Any other registration failure drops the metric.
func register[V prometheus.Collector](registerer prometheus.Registerer, vec V) (V, bool) {
	err := registerer.Register(vec)
	if err == nil {
		return vec, true
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		if existing, ok := alreadyRegistered.ExistingCollector.(V); ok {
			return existing, true
		}
	}

	return vec, false
}

func labelNamesOf(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

func labelValuesOf(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

func help(metric string) string {
	return "bookshelf metric " + metric
}

var _ shell.MetricsCollector = (*MetricsCollector)(nil)
