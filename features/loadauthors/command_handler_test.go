package loadauthors_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/features/loadauthors"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/testutil/helper"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

func fastRetries() loadauthors.Option {
	return loadauthors.WithRetryOptions(shell.WithBaseDelay(time.Millisecond), shell.WithMaxAttempts(3))
}

func Test_Handle_ReplacesAuthors(t *testing.T) {
	// arrange
	source := helper.NewFakeDataSource(helper.FixtureAuthors(), nil)
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	handler := loadauthors.NewCommandHandler(source, dispatcher, fastRetries())

	// act
	result, err := handler.Handle(context.Background(), loadauthors.BuildCommand())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.AuthorCount)
	assert.Equal(t, shell.StatusSuccess, result.BusinessOutcome)
	assert.Equal(t, 1, result.RetryAttempts)

	state := dispatcher.State()
	require.Len(t, state.Authors, 3)
	assert.Equal(t, "Ursula K. Le Guin", state.Authors[0].Name)
	assert.NotNil(t, state.Authors[0].Books)
	assert.Empty(t, state.Authors[0].Books)
}

func Test_Handle_RetriesTransientFetchFailures(t *testing.T) {
	// arrange
	source := helper.NewFakeDataSource(helper.FixtureAuthors(), nil).FailNextCalls(2)
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	handler := loadauthors.NewCommandHandler(source, dispatcher, fastRetries())

	// act
	result, err := handler.Handle(context.Background(), loadauthors.BuildCommand())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Equal(t, 3, source.CallCount("FetchAuthors"))
	assert.Len(t, dispatcher.State().Authors, 3)
}

func Test_Handle_DispatchesNothingWhenRetriesAreExhausted(t *testing.T) {
	// arrange
	source := helper.NewFakeDataSource(helper.FixtureAuthors(), nil).FailNextCalls(5)
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	before := dispatcher.State()
	handler := loadauthors.NewCommandHandler(source, dispatcher, fastRetries())

	// act
	result, err := handler.Handle(context.Background(), loadauthors.BuildCommand())

	// assert
	assert.ErrorIs(t, err, datasource.ErrFetchFailed)
	assert.True(t, result.RetriesExhausted)
	assert.Same(t, before, dispatcher.State())
}

func Test_Handle_DispatchesEnvelopeStartingANewCausationChain(t *testing.T) {
	// arrange
	source := helper.NewFakeDataSource(helper.FixtureAuthors(), nil)
	dispatcher, err := dispatch.NewDispatcher()
	require.NoError(t, err)
	var envelopes []shell.EventEnvelope
	require.NoError(t, dispatcher.SubscribeEnvelopes(
		func(_ context.Context, envelope shell.EventEnvelope, _ dispatch.Transition) {
			envelopes = append(envelopes, envelope)
		}))
	handler := loadauthors.NewCommandHandler(source, dispatcher, fastRetries())

	// act
	_, err = handler.Handle(context.Background(), loadauthors.BuildCommand())

	// assert
	require.NoError(t, err)
	require.Len(t, envelopes, 1)
	metadata := envelopes[0].EventMetadata
	assert.NotEmpty(t, metadata.MessageID)
	assert.Equal(t, metadata.MessageID, metadata.CausationID)
	assert.Equal(t, metadata.MessageID, metadata.CorrelationID)
	assert.Equal(t, viewmodel.AuthorsLoadedEventType, envelopes[0].Event.EventType())
}
