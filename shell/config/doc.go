// Package config resolves the runtime configuration of the bookshelf binaries.
//
// Settings come from the environment, optionally seeded from .env files with godotenv:
//   - BOOKSHELF_DB_DRIVER: pgx, postgres, sqlx or sqlite (default pgx)
//   - BOOKSHELF_DB_DSN: connection string (default local postgres, or an in-memory sqlite database)
//   - BOOKSHELF_LOG_LEVEL: debug, info, warn or error (default info)
//   - BOOKSHELF_LOG_FORMAT: json, text, zerolog or otel (default json)
//
// It also opens pre-tuned connection pools for each supported driver, builds the logger and
// installs the OpenTelemetry SDK providers.
package config
