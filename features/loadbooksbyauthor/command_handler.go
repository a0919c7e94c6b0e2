package loadbooksbyauthor

import (
	"context"

	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// BooksByAuthorSource defines what the CommandHandler needs from a data source.
type BooksByAuthorSource interface {
	FetchBooksByAuthor(ctx context.Context, authorID viewmodel.AuthorIDInt) ([]viewmodel.Book, error)
}

// Dispatcher applies event envelopes to the view model.
type Dispatcher interface {
	ApplyEnvelope(ctx context.Context, envelope shell.EventEnvelope) dispatch.Transition
}

// CommandHandler fetches one author's books with retry and dispatches them as a BooksByAuthorLoaded event.
type CommandHandler struct {
	source       BooksByAuthorSource
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
func NewCommandHandler(source BooksByAuthorSource, dispatcher Dispatcher, opts ...Option) CommandHandler {
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
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var books []viewmodel.Book

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var fetchErr error
		books, fetchErr = h.source.FetchBooksByAuthor(retryCtx, command.AuthorID)

		return fetchErr
	}, h.retryOptions...)
	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	envelope := shell.BuildEventEnvelope(viewmodel.BuildBooksByAuthorLoaded(command.AuthorID, books), shell.BuildRootEventMetadata())
	transition := h.dispatcher.ApplyEnvelope(ctx, envelope)

	return shell.NewSuccessResult(retryMetrics, transition.Prior, transition.Next), nil
}
