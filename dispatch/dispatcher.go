package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

var (
	// ErrNilInitialState is returned when WithInitialState gets a nil state.
	ErrNilInitialState = errors.New("initial state must not be nil")

	// ErrNilListener is returned when a nil listener is subscribed.
	ErrNilListener = errors.New("listener must not be nil")
)

// Listener is told about every state the Dispatcher produced, in dispatch order.
// Listeners run while the Dispatcher is locked and must not call Dispatch.
type Listener func(ctx context.Context, state *viewmodel.ViewModel)

// EnvelopeListener is told about every envelope applied with ApplyEnvelope, in dispatch order.
// It runs after the plain listeners, under the same lock.
type EnvelopeListener func(ctx context.Context, envelope shell.EventEnvelope, transition Transition)

// Dispatcher serializes events into the view model.
type Dispatcher struct {
	mu               sync.Mutex
	state            *viewmodel.ViewModel
	listeners        []Listener
	envelopeListeners []EnvelopeListener
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
}

// NewDispatcher creates a Dispatcher starting from viewmodel.Empty unless configured otherwise.
func NewDispatcher(options ...Option) (*Dispatcher, error) {
	d := &Dispatcher{state: viewmodel.Empty()}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Transition describes one applied event. Prior and Next are the same pointer when the event was ignored.
type Transition struct {
	Prior *viewmodel.ViewModel
	Next  *viewmodel.ViewModel
}

// Changed reports whether the event produced a new state.
func (t Transition) Changed() bool {
	return t.Prior != t.Next
}

// Dispatch applies the event to the current state and returns the resulting state.
func (d *Dispatcher) Dispatch(ctx context.Context, event viewmodel.Event) *viewmodel.ViewModel {
	return d.Apply(ctx, event).Next
}

// Apply is Dispatch, also returning the state the event was applied to.
func (d *Dispatcher) Apply(ctx context.Context, event viewmodel.Event) Transition {
	return d.apply(ctx, event, nil)
}

// ApplyEnvelope applies the wrapped event like Apply, logs the envelope metadata
// and hands the envelope to every EnvelopeListener.
func (d *Dispatcher) ApplyEnvelope(ctx context.Context, envelope shell.EventEnvelope) Transition {
	return d.apply(ctx, envelope.Event, &envelope)
}

// DispatchEnvelope is ApplyEnvelope returning only the resulting state.
func (d *Dispatcher) DispatchEnvelope(ctx context.Context, envelope shell.EventEnvelope) *viewmodel.ViewModel {
	return d.ApplyEnvelope(ctx, envelope).Next
}

func (d *Dispatcher) apply(ctx context.Context, event viewmodel.Event, envelope *shell.EventEnvelope) Transition {
	eventType := eventTypeLabel(event)

	ctx, span := d.startDispatchSpan(ctx, eventType)
	start := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if envelope != nil {
		d.logEnvelope(ctx, *envelope)
	}

	d.logDispatchStarted(ctx, eventType)

	transition := Transition{Prior: d.state, Next: viewmodel.Reduce(d.state, event)}
	d.state = transition.Next

	for _, listener := range d.listeners {
		listener(ctx, transition.Next)
	}

	if envelope != nil {
		for _, listener := range d.envelopeListeners {
			listener(ctx, *envelope, transition)
		}
	}

	d.observeDispatch(ctx, span, eventType, outcomeOf(transition), transition.Next, time.Since(start))

	return transition
}

// State returns the current state.
func (d *Dispatcher) State() *viewmodel.ViewModel {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// Subscribe registers a listener. Listeners are called in registration order.
func (d *Dispatcher) Subscribe(listener Listener) error {
	if listener == nil {
		return ErrNilListener
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = append(d.listeners, listener)

	return nil
}

// SubscribeEnvelopes registers an EnvelopeListener.
func (d *Dispatcher) SubscribeEnvelopes(listener EnvelopeListener) error {
	if listener == nil {
		return ErrNilListener
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.envelopeListeners = append(d.envelopeListeners, listener)

	return nil
}

func outcomeOf(transition Transition) string {
	if transition.Changed() {
		return outcomeApplied
	}

	return outcomeIgnored
}

// eventTypeLabel keeps metric label cardinality bounded for unknown tags.
func eventTypeLabel(event viewmodel.Event) string {
	switch event.(type) {
	case nil:
		return eventTypeNil
	case viewmodel.AuthorsLoaded, viewmodel.BooksLoaded, viewmodel.BooksByAuthorLoaded:
		return event.EventType()
	default:
		return eventTypeUnrecognized
	}
}
