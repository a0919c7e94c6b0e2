package datasource

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

var (
	// ErrFetchFailed is returned when the underlying storage could not be queried.
	// Errors wrapping it are considered transient.
	ErrFetchFailed = errors.New("fetching from data source failed")

	// ErrScanningRowFailed is returned when a result row could not be read.
	ErrScanningRowFailed = errors.New("scanning db row failed")

	// ErrBuildingQueryFailed is returned when a query could not be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrNilDatabaseConnection is returned when a nil database connection is supplied.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is supplied.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrUnsupportedDialect is returned for SQL dialects without query support.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")
)

// DataSource delivers the raw collections the view model is built from.
type DataSource interface {
	FetchAuthors(ctx context.Context) ([]viewmodel.Author, error)
	FetchBooks(ctx context.Context) ([]viewmodel.RawBook, error)
	FetchBooksByAuthor(ctx context.Context, authorID viewmodel.AuthorIDInt) ([]viewmodel.Book, error)
}
