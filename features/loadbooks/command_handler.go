package loadbooks

import (
	"context"

	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// BooksSource defines what the CommandHandler needs from a data source.
type BooksSource interface {
	FetchBooks(ctx context.Context) ([]viewmodel.RawBook, error)
}

// Dispatcher applies event envelopes to the view model.
type Dispatcher interface {
	ApplyEnvelope(ctx context.Context, envelope shell.EventEnvelope) dispatch.Transition
}

// CommandHandler fetches all books with retry and dispatches them as one BooksLoaded event.
type CommandHandler struct {
	source       BooksSource
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
func NewCommandHandler(source BooksSource, dispatcher Dispatcher, opts ...Option) CommandHandler {
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
	var books []viewmodel.RawBook

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var fetchErr error
		books, fetchErr = h.source.FetchBooks(retryCtx)

		return fetchErr
	}, h.retryOptions...)
	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	envelope := shell.BuildEventEnvelope(viewmodel.BuildBooksLoaded(books), shell.BuildRootEventMetadata())
	transition := h.dispatcher.ApplyEnvelope(ctx, envelope)

	return shell.NewSuccessResult(retryMetrics, transition.Prior, transition.Next), nil
}
