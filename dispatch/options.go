package dispatch

import (
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// Option defines a functional option for configuring a Dispatcher.
type Option func(*Dispatcher) error

// WithInitialState replaces the empty start state.
func WithInitialState(state *viewmodel.ViewModel) Option {
	return func(d *Dispatcher) error {
		if state == nil {
			return ErrNilInitialState
		}

		d.state = state

		return nil
	}
}

// WithListener subscribes a listener at construction time.
func WithListener(listener Listener) Option {
	return func(d *Dispatcher) error {
		return d.Subscribe(listener)
	}
}

// WithLogger sets the logger for the Dispatcher.
func WithLogger(logger shell.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Dispatcher.
// It takes precedence over a logger set with WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(d *Dispatcher) error {
		d.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Dispatcher.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(d *Dispatcher) error {
		d.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Dispatcher.
func WithTracing(collector shell.TracingCollector) Option {
	return func(d *Dispatcher) error {
		d.tracingCollector = collector
		return nil
	}
}
