package dispatch

import (
	"context"
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

const (
	// DispatchDurationMetric tracks how long applying one event took.
	DispatchDurationMetric = "dispatcher_dispatch_duration_seconds"

	// DispatchCallsMetric counts dispatched events by type and outcome.
	DispatchCallsMetric = "dispatcher_dispatch_calls_total"

	// AuthorsMetric records the number of authors after each dispatch.
	AuthorsMetric = "dispatcher_authors_total"

	// SpanNameDispatch is the tracing span name for one dispatch.
	SpanNameDispatch = "dispatcher.dispatch"

	outcomeApplied = "applied"
	outcomeIgnored = "ignored"

	eventTypeNil          = "nil"
	eventTypeUnrecognized = "unrecognized"

	logMsgDispatchStarted   = "dispatch started"
	logMsgDispatchCompleted = "dispatch completed"
	logMsgEnvelopeReceived  = "event envelope received"

	logAttrEventType     = "event_type"
	logAttrOutcome       = "outcome"
	logAttrAuthorCount   = "author_count"
	logAttrBookCount     = "book_count"
	logAttrMessageID     = "message_id"
	logAttrCausationID   = "causation_id"
	logAttrCorrelationID = "correlation_id"
)

func (d *Dispatcher) startDispatchSpan(ctx context.Context, eventType string) (context.Context, shell.SpanContext) {
	if d.tracingCollector == nil {
		return ctx, nil
	}

	return d.tracingCollector.StartSpan(ctx, SpanNameDispatch, map[string]string{logAttrEventType: eventType})
}

func (d *Dispatcher) observeDispatch(
	ctx context.Context,
	span shell.SpanContext,
	eventType string,
	outcome string,
	state *viewmodel.ViewModel,
	duration time.Duration,
) {
	d.logDebug(ctx, logMsgDispatchCompleted,
		logAttrEventType, eventType,
		logAttrOutcome, outcome,
		logAttrAuthorCount, state.AuthorCount(),
		logAttrBookCount, state.BookCount(),
		shell.LogAttrDurationMS, shell.ToMilliseconds(duration),
	)

	if d.metricsCollector != nil {
		labels := map[string]string{logAttrEventType: eventType, logAttrOutcome: outcome}

		if contextualCollector, ok := d.metricsCollector.(shell.ContextualMetricsCollector); ok {
			contextualCollector.RecordDurationContext(ctx, DispatchDurationMetric, duration, labels)
			contextualCollector.IncrementCounterContext(ctx, DispatchCallsMetric, labels)
			contextualCollector.RecordValueContext(ctx, AuthorsMetric, float64(state.AuthorCount()), nil)
		} else {
			d.metricsCollector.RecordDuration(DispatchDurationMetric, duration, labels)
			d.metricsCollector.IncrementCounter(DispatchCallsMetric, labels)
			d.metricsCollector.RecordValue(AuthorsMetric, float64(state.AuthorCount()), nil)
		}
	}

	if d.tracingCollector != nil && span != nil {
		d.tracingCollector.FinishSpan(span, outcome, map[string]string{
			logAttrOutcome:          outcome,
			shell.LogAttrDurationMS: shell.FormatDurationMS(duration),
		})
	}
}

func (d *Dispatcher) logDispatchStarted(ctx context.Context, eventType string) {
	d.logDebug(ctx, logMsgDispatchStarted, logAttrEventType, eventType)
}

func (d *Dispatcher) logEnvelope(ctx context.Context, envelope shell.EventEnvelope) {
	args := []any{
		logAttrEventType, eventTypeLabel(envelope.Event),
		logAttrMessageID, envelope.EventMetadata.MessageID,
		logAttrCausationID, envelope.EventMetadata.CausationID,
		logAttrCorrelationID, envelope.EventMetadata.CorrelationID,
	}

	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, logMsgEnvelopeReceived, args...)
	} else if d.logger != nil {
		d.logger.Info(logMsgEnvelopeReceived, args...)
	}
}

func (d *Dispatcher) logDebug(ctx context.Context, msg string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.DebugContext(ctx, msg, args...)
	} else if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
