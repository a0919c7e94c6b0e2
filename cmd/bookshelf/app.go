package main

import (
	"context"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/dispatch"
	"github.com/AntonStoeckl/bookshelf-viewmodel/features/loadauthors"
	"github.com/AntonStoeckl/bookshelf-viewmodel/features/loadbooks"
	"github.com/AntonStoeckl/bookshelf-viewmodel/features/loadbooksbyauthor"
	"github.com/AntonStoeckl/bookshelf-viewmodel/journal"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell/observable"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

const (
	logMsgStateChanged    = "view model changed"
	logMsgJournalFailed   = "appending to journal failed"
	logMsgReplayCompleted = "journal replayed"
	logAttrAuthorCount    = "author_count"
	logAttrBookCount      = "book_count"
	logAttrEventCount     = "event_count"
	logAttrError          = "error"
)

// Observability bundles the optional collectors wired into every component.
type Observability struct {
	Logger  shell.ContextualLogger
	Metrics shell.MetricsCollector
	Tracing shell.TracingCollector
}

// App owns the view model and the load use cases.
type App struct {
	logger            shell.ContextualLogger
	dispatcher        *dispatch.Dispatcher
	loadAuthors       shell.CommandHandler[loadauthors.Command]
	loadBooks         shell.CommandHandler[loadbooks.Command]
	loadBooksByAuthor shell.CommandHandler[loadbooksbyauthor.Command]
}

// NewApp wires the dispatcher and the observable command handlers on top of source.
func NewApp(source datasource.DataSource, obs Observability, retryOptions ...shell.RetryOption) (*App, error) {
	dispatcher, err := dispatch.NewDispatcher(dispatcherOptions(obs)...)
	if err != nil {
		return nil, err
	}

	loadAuthors, err := observable.NewCommandWrapper[loadauthors.Command](
		loadauthors.NewCommandHandler(source, dispatcher,
			loadauthors.WithRetryOptions(retryOptionsFor(obs, loadauthors.Command{}, retryOptions)...)),
		wrapperOptions[loadauthors.Command](obs)...,
	)
	if err != nil {
		return nil, err
	}

	loadBooks, err := observable.NewCommandWrapper[loadbooks.Command](
		loadbooks.NewCommandHandler(source, dispatcher,
			loadbooks.WithRetryOptions(retryOptionsFor(obs, loadbooks.Command{}, retryOptions)...)),
		wrapperOptions[loadbooks.Command](obs)...,
	)
	if err != nil {
		return nil, err
	}

	loadBooksByAuthor, err := observable.NewCommandWrapper[loadbooksbyauthor.Command](
		loadbooksbyauthor.NewCommandHandler(source, dispatcher,
			loadbooksbyauthor.WithRetryOptions(retryOptionsFor(obs, loadbooksbyauthor.Command{}, retryOptions)...)),
		wrapperOptions[loadbooksbyauthor.Command](obs)...,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		logger:            obs.Logger,
		dispatcher:        dispatcher,
		loadAuthors:       loadAuthors,
		loadBooks:         loadBooks,
		loadBooksByAuthor: loadBooksByAuthor,
	}, nil
}

// Run loads the authors, then all books if requested, then the books of one author if requested.
func (a *App) Run(ctx context.Context, cfg Config) error {
	if _, err := a.loadAuthors.Handle(ctx, loadauthors.BuildCommand()); err != nil {
		return err
	}

	if cfg.LoadBooks {
		if _, err := a.loadBooks.Handle(ctx, loadbooks.BuildCommand()); err != nil {
			return err
		}
	}

	if cfg.LoadAuthor {
		if _, err := a.loadBooksByAuthor.Handle(ctx, loadbooksbyauthor.BuildCommand(cfg.AuthorID)); err != nil {
			return err
		}
	}

	return nil
}

// RecordTo appends every envelope the load use cases and Replay apply to writer.
// Write failures are logged and do not stop loading.
func (a *App) RecordTo(writer *journal.Writer) error {
	return a.dispatcher.SubscribeEnvelopes(
		func(ctx context.Context, envelope shell.EventEnvelope, _ dispatch.Transition) {
			if err := writer.Append(envelope); err != nil && a.logger != nil {
				a.logger.ErrorContext(ctx, logMsgJournalFailed, logAttrError, err.Error())
			}
		})
}

// Replay rebuilds the view model from a journal. Every replayed envelope becomes a new message
// caused by the journaled one.
func (a *App) Replay(ctx context.Context, r io.Reader) (int, error) {
	replayed, err := journal.Replay(ctx, r, func(ctx context.Context, envelope shell.EventEnvelope) error {
		a.dispatcher.DispatchEnvelope(ctx, shell.BuildEventEnvelope(envelope.Event, envelope.EventMetadata.CausedBy()))
		return nil
	})

	if err == nil && a.logger != nil {
		a.logger.InfoContext(ctx, logMsgReplayCompleted, logAttrEventCount, replayed)
	}

	return replayed, err
}

// State returns the current view model.
func (a *App) State() *viewmodel.ViewModel {
	return a.dispatcher.State()
}

// WriteState writes the current view model as indented JSON.
func (a *App) WriteState(w io.Writer) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(a.State(), "", "  ")
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

func dispatcherOptions(obs Observability) []dispatch.Option {
	var options []dispatch.Option

	if obs.Logger != nil {
		logger := obs.Logger
		options = append(options,
			dispatch.WithContextualLogger(logger),
			dispatch.WithListener(func(ctx context.Context, state *viewmodel.ViewModel) {
				logger.InfoContext(ctx, logMsgStateChanged,
					logAttrAuthorCount, state.AuthorCount(),
					logAttrBookCount, state.BookCount(),
				)
			}),
		)
	}

	if obs.Metrics != nil {
		options = append(options, dispatch.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, dispatch.WithTracing(obs.Tracing))
	}

	return options
}

func wrapperOptions[C shell.Command](obs Observability) []observable.CommandOption[C] {
	var options []observable.CommandOption[C]

	if obs.Logger != nil {
		options = append(options, observable.WithCommandContextualLogging[C](obs.Logger))
	}

	if obs.Metrics != nil {
		options = append(options, observable.WithCommandMetrics[C](obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.Tracing))
	}

	return options
}

func retryOptionsFor(obs Observability, command shell.Command, base []shell.RetryOption) []shell.RetryOption {
	if obs.Metrics == nil {
		return base
	}

	return append(append([]shell.RetryOption{}, base...), shell.WithMetrics(obs.Metrics, command.CommandType()))
}
