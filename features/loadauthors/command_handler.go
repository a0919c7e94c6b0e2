package loadauthors

import (
	"context"

	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// AuthorsSource defines what the CommandHandler needs from a data source.
type AuthorsSource interface {
	FetchAuthors(ctx context.Context) ([]viewmodel.Author, error)
}

// Dispatcher applies event envelopes to the view model.
type Dispatcher interface {
	ApplyEnvelope(ctx context.Context, envelope shell.EventEnvelope) dispatch.Transition
}

// CommandHandler fetches authors with retry and dispatches them as one AuthorsLoaded event.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	source       AuthorsSource
	dispatcher   Dispatcher
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(source AuthorsSource, dispatcher Dispatcher, opts ...Option) CommandHandler {
	handler := CommandHandler{
		source:     source,
		dispatcher: dispatcher,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle fetches and dispatches. Nothing is dispatched when fetching fails.
func (h CommandHandler) Handle(ctx context.Context, _ Command) (shell.HandlerResult, error) {
	var authors []viewmodel.Author

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var fetchErr error
		authors, fetchErr = h.source.FetchAuthors(retryCtx)

		return fetchErr
	}, h.retryOptions...)
	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	envelope := shell.BuildEventEnvelope(viewmodel.BuildAuthorsLoaded(authors), shell.BuildRootEventMetadata())
	transition := h.dispatcher.ApplyEnvelope(ctx, envelope)

	return shell.NewSuccessResult(retryMetrics, transition.Prior, transition.Next), nil
}
