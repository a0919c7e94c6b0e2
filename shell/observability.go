package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

const (
	// CommandHandlerDurationMetric is the histogram of load command durations, in seconds.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric counts handled load commands by command_type and status.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerUnchangedMetric tracks loads that left the view model untouched.
	CommandHandlerUnchangedMetric = "commandhandler_unchanged_operations_total"

	// CommandHandlerCanceledMetric counts commands aborted by context cancellation.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric counts commands aborted by a context deadline.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerRetriesMetric counts scheduled retries.
	// Labels: command_type, attempt_number (1-based), error_type.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric is the histogram of backoff waits.
	// Labels: command_type, attempt_number.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts commands that used up all attempts.
	// Labels: command_type, final_error_type.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// CommandHandlerTotalRetryDelayMetric tracks the backoff time one command spent in total.
	CommandHandlerTotalRetryDelayMetric = "commandhandler_total_retry_delay_seconds"

	// StatusSuccess marks a load that produced a new view model.
	StatusSuccess = "success"

	// StatusError marks a failed load.
	StatusError = "error"

	// StatusUnchanged indicates the dispatched event did not change the view model.
	StatusUnchanged = "unchanged"

	// StatusCanceled marks a load aborted by context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout marks a load aborted by a context deadline.
	StatusTimeout = "timeout"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandFailed    = "command handler failed"

	LogAttrCommandType     = "command_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrError           = "error"

	// LogAttrAuthorCount indicates the number of authors in the view model.
	LogAttrAuthorCount = "author_count"

	// LogAttrAuthorID identifies the author a load was targeted at.
	LogAttrAuthorID = "author_id"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"
)

// ClassifyBusinessOutcome compares the state before and after a dispatch.
// The reducer returns the prior pointer for events it ignores.
func ClassifyBusinessOutcome(prior, next *viewmodel.ViewModel) string {
	if prior == next {
		return StatusUnchanged
	}

	return StatusSuccess
}

// BuildCommandLabels returns the command_type and status labels.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildRetryLabels returns the labels of CommandHandlerRetriesMetric.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     errorType,
	}
}

// ToMilliseconds returns d in fractional milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records calls and duration of one command, plus the counter matching
// an unchanged, canceled or timed out status. A nil collector records nothing.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, CommandHandlerDurationMetric, duration, labels)
	} else {
		collector.RecordDuration(CommandHandlerDurationMetric, duration, labels)
	}

	switch status {
	case StatusUnchanged:
		incrementCounter(ctx, collector, CommandHandlerUnchangedMetric, labels)
	case StatusCanceled:
		incrementCounter(ctx, collector, CommandHandlerCanceledMetric, labels)
	case StatusTimeout:
		incrementCounter(ctx, collector, CommandHandlerTimeoutMetric, labels)
	}
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartCommandSpan starts the command span. Without a collector it returns ctx and a nil span.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{
		LogAttrCommandType: commandType,
	}

	return tracingCollector.StartSpan(ctx, SpanNameCommandHandle, attrs)
}

// FinishCommandSpan ends the span with status, duration and, on failure, the error message.
func FinishCommandSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: FormatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
	} else if logger != nil {
		logger.Info(LogMsgCommandStarted, LogAttrCommandType, commandType)
	}
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	result HandlerResult,
	duration time.Duration,
) {
	args := []any{
		LogAttrCommandType, commandType,
		LogAttrBusinessOutcome, result.BusinessOutcome,
		LogAttrAuthorCount, result.AuthorCount,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted, args...)
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted, args...)
	}
}

// LogCommandError logs command processing errors.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
) {
	args := []any{
		LogAttrCommandType, commandType,
		LogAttrError, err.Error(),
	}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed, args...)
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed, args...)
	}
}

// FormatAttempts formats an attempt count as a metric label value.
func FormatAttempts(attempts int) string {
	return strconv.Itoa(attempts)
}

// FormatBool formats a flag as a metric label value.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// FormatDurationMS formats duration in milliseconds for span attributes.
func FormatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}

// StatusFromError maps a command error to its metrics status.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	default:
		return StatusError
	}
}

// IsCancellationError reports whether err wraps context.Canceled.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether err wraps context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
