package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/testutil/helper"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

func Test_ClassifyBusinessOutcome(t *testing.T) {
	prior := viewmodel.Empty()

	assert.Equal(t, shell.StatusUnchanged, shell.ClassifyBusinessOutcome(prior, prior))
	assert.Equal(t, shell.StatusSuccess, shell.ClassifyBusinessOutcome(prior, viewmodel.Empty()))
}

func Test_NewSuccessResult_CarriesRetryMetadataAndOutcome(t *testing.T) {
	// arrange
	retryMetrics := shell.RetryMetrics{Attempts: 2, TotalDelay: time.Millisecond, LastErrorType: "none"}
	prior := viewmodel.Empty()
	next := viewmodel.Reduce(prior, viewmodel.BuildAuthorsLoaded(helper.FixtureAuthors()))

	// act
	result := shell.NewSuccessResult(retryMetrics, prior, next)

	// assert
	assert.Equal(t, shell.HandlerResult{
		RetryAttempts:   2,
		TotalRetryDelay: time.Millisecond,
		LastErrorType:   "none",
		AuthorCount:     3,
		BusinessOutcome: shell.StatusSuccess,
	}, result)
}

func Test_StatusFromError(t *testing.T) {
	assert.Equal(t, shell.StatusSuccess, shell.StatusFromError(nil))
	assert.Equal(t, shell.StatusCanceled, shell.StatusFromError(errors.Join(errors.New("x"), context.Canceled)))
	assert.Equal(t, shell.StatusTimeout, shell.StatusFromError(context.DeadlineExceeded))
	assert.Equal(t, shell.StatusError, shell.StatusFromError(errors.New("boom")))
}

func Test_RecordCommandMetrics_CountsSpecialOutcomesSeparately(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy(true)
	ctx := context.Background()

	// act
	shell.RecordCommandMetrics(ctx, metrics, "LoadBooks", shell.StatusUnchanged, time.Millisecond)
	shell.RecordCommandMetrics(ctx, metrics, "LoadBooks", shell.StatusCanceled, time.Millisecond)
	shell.RecordCommandMetrics(ctx, metrics, "LoadBooks", shell.StatusTimeout, time.Millisecond)
	shell.RecordCommandMetrics(ctx, nil, "LoadBooks", shell.StatusSuccess, time.Millisecond)

	// assert
	assert.Equal(t, 3, metrics.CountCounterRecordsForMetric(shell.CommandHandlerCallsMetric))
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.CommandHandlerUnchangedMetric))
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.CommandHandlerCanceledMetric))
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.CommandHandlerTimeoutMetric))
}

func Test_CommandSpan_IsNoopWithoutCollector(t *testing.T) {
	ctx := context.Background()

	newCtx, span := shell.StartCommandSpan(ctx, nil, "LoadBooks")
	shell.FinishCommandSpan(nil, span, shell.StatusSuccess, time.Millisecond, nil)

	assert.Equal(t, ctx, newCtx)
	assert.Nil(t, span)
}
