package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource/sqlsource/internal/adapters"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite3  = "sqlite3"
)

const (
	defaultAuthorsTableName = "authors"
	defaultBooksTableName   = "books"
	colID                   = "id"
	colName                 = "name"
	colTitle                = "title"
	colAuthorID             = "author_id"
)

// Source reads authors and books from relational tables.
type Source struct {
	db               adapters.DBAdapter
	dialect          string
	authorsTableName string
	booksTableName   string
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
}

var _ datasource.DataSource = Source{}

// NewSourceFromPGXPool creates a new Source using a pgx Pool with optional configuration.
func NewSourceFromPGXPool(db *pgxpool.Pool, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, datasource.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewPGXAdapter(db), options)
}

// NewSourceFromSQLDB creates a new Source using a sql.DB with optional configuration.
func NewSourceFromSQLDB(db *sql.DB, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, datasource.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewSQLAdapter(db), options)
}

// NewSourceFromSQLX creates a new Source using a sqlx.DB with optional configuration.
func NewSourceFromSQLX(db *sqlx.DB, options ...Option) (Source, error) {
	if db == nil {
		return Source{}, datasource.ErrNilDatabaseConnection
	}

	return newSource(adapters.NewSQLXAdapter(db), options)
}

func newSource(db adapters.DBAdapter, options []Option) (Source, error) {
	s := Source{
		db:               db,
		dialect:          DialectPostgres,
		authorsTableName: defaultAuthorsTableName,
		booksTableName:   defaultBooksTableName,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Source{}, err
		}
	}

	return s, nil
}

// FetchAuthors returns all authors ordered by id, with unknown books.
func (s Source) FetchAuthors(ctx context.Context) ([]viewmodel.Author, error) {
	query := goqu.Dialect(s.dialect).
		From(s.authorsTableName).
		Select(colID, colName).
		Order(goqu.C(colID).Asc())

	authors := make([]viewmodel.Author, 0)

	err := s.fetch(ctx, operationFetchAuthors, query, func(rows adapters.DBRows) error {
		var author viewmodel.Author
		if err := rows.Scan(&author.ID, &author.Name); err != nil {
			return err
		}

		authors = append(authors, author)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return authors, nil
}

// FetchBooks returns the books of all authors.
func (s Source) FetchBooks(ctx context.Context) ([]viewmodel.RawBook, error) {
	query := goqu.Dialect(s.dialect).
		From(s.booksTableName).
		Select(colID, colTitle, colAuthorID).
		Order(goqu.C(colID).Asc(), goqu.C(colAuthorID).Asc())

	books := make([]viewmodel.RawBook, 0)

	err := s.fetch(ctx, operationFetchBooks, query, func(rows adapters.DBRows) error {
		var book viewmodel.RawBook
		if err := rows.Scan(&book.ID, &book.Title, &book.AuthorID); err != nil {
			return err
		}

		books = append(books, book)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// FetchBooksByAuthor returns the books of one author. An unknown author has no books.
func (s Source) FetchBooksByAuthor(ctx context.Context, authorID viewmodel.AuthorIDInt) ([]viewmodel.Book, error) {
	query := goqu.Dialect(s.dialect).
		From(s.booksTableName).
		Select(colID, colTitle).
		Where(goqu.C(colAuthorID).Eq(authorID)).
		Order(goqu.C(colID).Asc())

	books := make([]viewmodel.Book, 0)

	err := s.fetch(ctx, operationFetchBooksByAuthor, query, func(rows adapters.DBRows) error {
		var book viewmodel.Book
		if err := rows.Scan(&book.ID, &book.Title); err != nil {
			return err
		}

		books = append(books, book)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// fetch runs the query and hands every row to scanRow, with full instrumentation.
func (s Source) fetch(
	ctx context.Context,
	operation string,
	query *goqu.SelectDataset,
	scanRow func(rows adapters.DBRows) error,
) error {
	ctx, span := s.startFetchSpan(ctx, operation)
	start := time.Now()

	sqlQuery, _, err := query.ToSQL()
	if err != nil {
		err = errors.Join(datasource.ErrBuildingQueryFailed, err)
		s.observeError(ctx, span, operation, errorTypeBuildQuery, logMsgBuildQueryFailed, err, time.Since(start))

		return err
	}

	rows, err := s.db.Query(ctx, sqlQuery)
	if err != nil {
		err = errors.Join(datasource.ErrFetchFailed, err)
		s.observeError(ctx, span, operation, errorTypeDatabaseQuery, logMsgDBQueryFailed, err, time.Since(start))

		return err
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}()

	rowCount := 0

	for rows.Next() {
		if err = scanRow(rows); err != nil {
			err = errors.Join(datasource.ErrScanningRowFailed, err)
			s.observeError(ctx, span, operation, errorTypeRowScan, logMsgScanRowFailed, err, time.Since(start))

			return err
		}

		rowCount++
	}

	if err = rows.Err(); err != nil {
		err = errors.Join(datasource.ErrFetchFailed, err)
		s.observeError(ctx, span, operation, errorTypeDatabaseQuery, logMsgDBQueryFailed, err, time.Since(start))

		return err
	}

	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, operation, duration)
	s.observeSuccess(ctx, span, operation, rowCount, duration)

	return nil
}
