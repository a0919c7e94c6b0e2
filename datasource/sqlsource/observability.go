package sqlsource

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

const (
	metricFetchDuration = "datasource_fetch_duration_seconds"
	metricFetchCalls    = "datasource_fetch_calls_total"
	metricRowsFetched   = "datasource_rows_fetched"
	metricErrors        = "datasource_errors_total"

	spanNameFetch = "datasource.fetch"

	operationFetchAuthors       = "fetch_authors"
	operationFetchBooks         = "fetch_books"
	operationFetchBooksByAuthor = "fetch_books_by_author"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseQuery = "database_query"
	errorTypeRowScan       = "row_scan"

	logMsgBuildQueryFailed = "failed to build select query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgFetchCompleted   = "fetch completed"

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrOperation  = "operation"
	logAttrRowCount   = "row_count"
	logAttrDurationMS = "duration_ms"
	logAttrErrorType  = "error_type"
	labelStatus       = "status"
)

func (s Source) startFetchSpan(ctx context.Context, operation string) (context.Context, shell.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, spanNameFetch, map[string]string{logAttrOperation: operation})
}

func (s Source) observeSuccess(ctx context.Context, span shell.SpanContext, operation string, rowCount int, duration time.Duration) {
	s.logInfo(ctx, logMsgFetchCompleted,
		logAttrOperation, operation,
		logAttrRowCount, rowCount,
		logAttrDurationMS, shell.ToMilliseconds(duration),
	)

	labels := map[string]string{logAttrOperation: operation, labelStatus: statusSuccess}
	s.recordDuration(ctx, metricFetchDuration, duration, labels)
	s.incrementCounter(ctx, metricFetchCalls, labels)
	s.recordValue(ctx, metricRowsFetched, float64(rowCount), labels)

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusSuccess, map[string]string{
			logAttrRowCount:   fmt.Sprintf("%d", rowCount),
			logAttrDurationMS: shell.FormatDurationMS(duration),
		})
	}
}

func (s Source) observeError(
	ctx context.Context,
	span shell.SpanContext,
	operation string,
	errorType string,
	message string,
	err error,
	duration time.Duration,
) {
	s.logError(ctx, message, logAttrError, err.Error(), logAttrOperation, operation)

	labels := map[string]string{logAttrOperation: operation, labelStatus: statusError}
	s.recordDuration(ctx, metricFetchDuration, duration, labels)
	s.incrementCounter(ctx, metricFetchCalls, labels)
	s.incrementCounter(ctx, metricErrors, map[string]string{
		logAttrOperation: operation,
		labelStatus:      statusError,
		logAttrErrorType: errorType,
	})

	if s.tracingCollector != nil && span != nil {
		s.tracingCollector.FinishSpan(span, statusError, map[string]string{
			logAttrErrorType:  errorType,
			logAttrDurationMS: shell.FormatDurationMS(duration),
		})
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (s Source) logQueryWithDuration(ctx context.Context, sqlQuery, operation string, duration time.Duration) {
	args := []any{logAttrDurationMS, shell.ToMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

func (s Source) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s Source) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s Source) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

func (s Source) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

func (s Source) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
	} else {
		s.metricsCollector.IncrementCounter(metric, labels)
	}
}

func (s Source) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(shell.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
	} else {
		s.metricsCollector.RecordValue(metric, value, labels)
	}
}
