package dispatch_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/testutil/helper"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

func Test_NewDispatcher_StartsEmpty(t *testing.T) {
	// act
	dispatcher, err := dispatch.NewDispatcher()

	// assert
	require.NoError(t, err)
	assert.Equal(t, viewmodel.Empty(), dispatcher.State())
}

func Test_NewDispatcher_WithInitialState(t *testing.T) {
	// arrange
	initial := &viewmodel.ViewModel{Authors: []*viewmodel.Author{{ID: 1, Name: "Lem", Books: []viewmodel.Book{}}}}

	// act
	dispatcher, err := dispatch.NewDispatcher(dispatch.WithInitialState(initial))

	// assert
	require.NoError(t, err)
	assert.Same(t, initial, dispatcher.State())
}

func Test_NewDispatcher_RejectsInvalidOptions(t *testing.T) {
	_, err := dispatch.NewDispatcher(dispatch.WithInitialState(nil))
	assert.ErrorIs(t, err, dispatch.ErrNilInitialState)

	_, err = dispatch.NewDispatcher(dispatch.WithListener(nil))
	assert.ErrorIs(t, err, dispatch.ErrNilListener)
}

func Test_Dispatch_AppliesEventsInOrder(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	ctx := context.Background()

	// act
	dispatcher.Dispatch(ctx, viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))
	dispatcher.Dispatch(ctx, viewmodel.BuildBooksLoaded(helper.FixtureBooks()))
	state := dispatcher.Dispatch(ctx, viewmodel.BuildBooksByAuthorLoaded(3, []viewmodel.Book{{ID: 1, Title: "Solaris"}}))

	// assert
	assert.Same(t, state, dispatcher.State())
	require.Len(t, state.Authors, 3)
	assert.Len(t, state.Authors[0].Books, 3)
	assert.Len(t, state.Authors[1].Books, 2)
	assert.Equal(t, []viewmodel.Book{{ID: 1, Title: "Solaris"}}, state.Authors[2].Books)
}

func Test_Dispatch_IgnoredEventKeepsState(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	before := dispatcher.State()

	// act
	after := dispatcher.Dispatch(context.Background(), viewmodel.BuildUnrecognizedEvent("LOAD_REVIEWS_SUCCESS", nil))

	// assert
	assert.Same(t, before, after)
}

func Test_Dispatch_NotifiesListenersInRegistrationOrder(t *testing.T) {
	// arrange
	var calls []string
	var seen []*viewmodel.ViewModel

	dispatcher, err := dispatch.NewDispatcher(dispatch.WithListener(func(_ context.Context, state *viewmodel.ViewModel) {
		calls = append(calls, "first")
		seen = append(seen, state)
	}))
	require.NoError(t, err)
	require.NoError(t, dispatcher.Subscribe(func(_ context.Context, _ *viewmodel.ViewModel) {
		calls = append(calls, "second")
	}))

	// act
	state := dispatcher.Dispatch(context.Background(), viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))

	// assert
	assert.Equal(t, []string{"first", "second"}, calls)
	require.Len(t, seen, 1)
	assert.Same(t, state, seen[0])
}

func Test_Dispatch_SerializesConcurrentProducers(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	ctx := context.Background()
	dispatcher.Dispatch(ctx, viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))

	notifications := 0
	require.NoError(t, dispatcher.Subscribe(func(_ context.Context, _ *viewmodel.ViewModel) {
		notifications++ // safe: listeners run under the dispatcher lock
	}))

	// act
	var wg sync.WaitGroup
	for _, author := range helper.FixtureAuthors() {
		wg.Add(1)
		go func(authorID viewmodel.AuthorIDInt) {
			defer wg.Done()
			dispatcher.Dispatch(ctx, viewmodel.BuildBooksByAuthorLoaded(authorID, []viewmodel.Book{{ID: authorID, Title: "Book"}}))
		}(author.ID)
	}
	wg.Wait()

	// assert
	assert.Equal(t, 3, notifications)
	for _, author := range dispatcher.State().Authors {
		assert.Equal(t, []viewmodel.Book{{ID: author.ID, Title: "Book"}}, author.Books)
	}
}

func Test_Dispatch_RecordsMetricsAndTraces(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)
	dispatcher, err := dispatch.NewDispatcher(dispatch.WithMetrics(metrics), dispatch.WithTracing(tracing))
	require.NoError(t, err)
	ctx := context.Background()

	// act
	dispatcher.Dispatch(ctx, viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))
	dispatcher.Dispatch(ctx, viewmodel.BuildUnrecognizedEvent("LOAD_REVIEWS_SUCCESS", nil))

	// assert
	assert.True(t, metrics.HasCounterRecordForMetric(dispatch.DispatchCallsMetric).
		WithLabel("event_type", viewmodel.AuthorsLoadedEventType).
		WithLabel("outcome", "applied").
		Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(dispatch.DispatchCallsMetric).
		WithLabel("event_type", "unrecognized").
		WithLabel("outcome", "ignored").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(dispatch.DispatchDurationMetric).Assert())

	values := metrics.GetValueRecords()
	require.Len(t, values, 2)
	assert.Equal(t, float64(3), values[1].Value)

	assert.True(t, tracing.HasSpanRecordForName(dispatch.SpanNameDispatch).
		WithStartAttribute("event_type", viewmodel.AuthorsLoadedEventType).
		WithStatus("applied").
		Assert())
}

func Test_DispatchEnvelope_LogsMetadata(t *testing.T) {
	// arrange
	logHandler := helper.NewLogHandlerSpy(false)
	dispatcher, err := dispatch.NewDispatcher(dispatch.WithLogger(slog.New(logHandler)))
	require.NoError(t, err)
	envelope := shell.BuildEventEnvelope(viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()), shell.BuildRootEventMetadata())

	// act
	state := dispatcher.DispatchEnvelope(context.Background(), envelope)

	// assert
	assert.Len(t, state.Authors, 3)
	assert.True(t, logHandler.HasLogWithAttr("event envelope received", "correlation_id"))
	assert.True(t, logHandler.HasLog(slog.LevelDebug, "dispatch completed"))
}

func Test_Apply_ReportsTransition(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	ctx := context.Background()
	initial := dispatcher.State()

	// act
	applied := dispatcher.Apply(ctx, viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))
	ignored := dispatcher.Apply(ctx, nil)

	// assert
	assert.Same(t, initial, applied.Prior)
	assert.True(t, applied.Changed())
	assert.False(t, ignored.Changed())
	assert.Same(t, applied.Next, ignored.Next)
}

func Test_ApplyEnvelope_NotifiesEnvelopeListenersInOrder(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	var received []shell.EventEnvelope
	var transitions []dispatch.Transition
	require.NoError(t, dispatcher.SubscribeEnvelopes(
		func(_ context.Context, envelope shell.EventEnvelope, transition dispatch.Transition) {
			received = append(received, envelope)
			transitions = append(transitions, transition)
		}))
	ctx := context.Background()
	first := shell.BuildEventEnvelope(viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()), shell.BuildRootEventMetadata())
	second := shell.BuildEventEnvelope(viewmodel.BuildBooksLoaded(helper.FixtureBooks()), first.EventMetadata.CausedBy())

	// act
	dispatcher.ApplyEnvelope(ctx, first)
	dispatcher.Dispatch(ctx, viewmodel.BuildBooksLoaded(nil))
	last := dispatcher.ApplyEnvelope(ctx, second)

	// assert
	require.Len(t, received, 2, "plain dispatches are not reported to envelope listeners")
	assert.Equal(t, first.EventMetadata, received[0].EventMetadata)
	assert.Equal(t, second.EventMetadata, received[1].EventMetadata)
	assert.Equal(t, last, transitions[1])
	assert.Same(t, dispatcher.State(), transitions[1].Next)
}

func Test_SubscribeEnvelopes_RejectsNilListener(t *testing.T) {
	// arrange
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)

	// act
	err = dispatcher.SubscribeEnvelopes(nil)

	// assert
	assert.ErrorIs(t, err, dispatch.ErrNilListener)
}
