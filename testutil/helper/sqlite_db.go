package helper

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource/migrations"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// NewSQLiteTestDB opens a private in-memory sqlite database with the schema applied.
// It is closed when the test ends.
func NewSQLiteTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "error in arranging test database")

	// every connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(db, migrations.DialectSQLite3), "error in migrating test database")

	return db
}

// GivenAuthorsAndBooksWereStored inserts authors and books into a migrated test database.
func GivenAuthorsAndBooksWereStored(t testing.TB, db *sql.DB, authors []viewmodel.Author, books []viewmodel.RawBook) {
	t.Helper()

	for _, author := range authors {
		_, err := db.Exec(`INSERT INTO authors (id, name) VALUES (?, ?)`, author.ID, author.Name)
		require.NoError(t, err, "error in arranging test data")
	}

	for _, book := range books {
		_, err := db.Exec(`INSERT INTO books (id, title, author_id) VALUES (?, ?, ?)`, book.ID, book.Title, book.AuthorID)
		require.NoError(t, err, "error in arranging test data")
	}
}
