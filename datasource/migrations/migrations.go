// Package migrations holds the embedded schema of the authors and books tables.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"sync"

	"github.com/pressly/goose/v3"
)

const migrationsDir = "sql"

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite3  = "sqlite3"
)

var (
	// ErrMigrationFailed is returned when applying or rolling back migrations fails.
	ErrMigrationFailed = errors.New("schema migration failed")

	// ErrUnsupportedDialect is returned for dialects without schema support.
	ErrUnsupportedDialect = errors.New("unsupported migration dialect")
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// Up applies all pending migrations.
func Up(db *sql.DB, dialect string) error {
	return run(db, dialect, func() error { return goose.Up(db, migrationsDir) })
}

// Down rolls back all migrations.
func Down(db *sql.DB, dialect string) error {
	return run(db, dialect, func() error { return goose.DownTo(db, migrationsDir, 0) })
}

// Version returns the currently applied schema version.
func Version(db *sql.DB, dialect string) (int64, error) {
	var version int64

	err := run(db, dialect, func() error {
		var err error
		version, err = goose.GetDBVersion(db)

		return err
	})

	return version, err
}

func run(db *sql.DB, dialect string, fn func() error) error {
	if dialect != DialectPostgres && dialect != DialectSQLite3 {
		return errors.Join(ErrMigrationFailed, ErrUnsupportedDialect)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embeddedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	goose.SetLogger(goose.NopLogger())

	if err := fn(); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}
