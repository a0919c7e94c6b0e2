package sqlsource

import (
	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
)

// Option defines a functional option for configuring Source.
type Option func(*Source) error

// WithAuthorsTableName sets the table authors are read from.
func WithAuthorsTableName(tableName string) Option {
	return func(s *Source) error {
		if tableName == "" {
			return datasource.ErrEmptyTableName
		}

		s.authorsTableName = tableName

		return nil
	}
}

// WithBooksTableName sets the table books are read from.
func WithBooksTableName(tableName string) Option {
	return func(s *Source) error {
		if tableName == "" {
			return datasource.ErrEmptyTableName
		}

		s.booksTableName = tableName

		return nil
	}
}

// WithDialect sets the SQL dialect queries are built for, "postgres" (default) or "sqlite3".
func WithDialect(dialect string) Option {
	return func(s *Source) error {
		if dialect != DialectPostgres && dialect != DialectSQLite3 {
			return datasource.ErrUnsupportedDialect
		}

		s.dialect = dialect

		return nil
	}
}

// WithLogger sets the logger for the Source.
//
// Debug level: SQL queries with execution timing
// Info level: row counts and durations
// Error level: failed queries and scans.
func WithLogger(logger shell.Logger) Option {
	return func(s *Source) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Source.
// It takes precedence over a logger set with WithLogger.
func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(s *Source) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Source.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(s *Source) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Source.
func WithTracing(collector shell.TracingCollector) Option {
	return func(s *Source) error {
		s.tracingCollector = collector
		return nil
	}
}
