// Package zerologadapter lets a zerolog.Logger serve as shell.Logger and shell.ContextualLogger.
//
// Key/value argument pairs become zerolog fields. The context-aware methods add the
// OpenTelemetry trace_id and span_id of the active span when there is one.
package zerologadapter
