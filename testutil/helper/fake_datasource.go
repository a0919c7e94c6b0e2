package helper

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// ErrFakeBackendDown is the cause of the failures a FakeDataSource injects.
var ErrFakeBackendDown = errors.New("fake backend down")

// FakeDataSource is an in-memory datasource.DataSource.
// It can fail a configurable number of calls before it starts answering.
type FakeDataSource struct {
	mu            sync.Mutex
	authors       []viewmodel.Author
	books         []viewmodel.RawBook
	failuresLeft  int
	failWith      error
	calls         map[string]int
	lastAuthorIDs []viewmodel.AuthorIDInt
}

// NewFakeDataSource creates a FakeDataSource holding the given authors and books.
func NewFakeDataSource(authors []viewmodel.Author, books []viewmodel.RawBook) *FakeDataSource {
	return &FakeDataSource{
		authors: authors,
		books:   books,
		calls:   make(map[string]int),
	}
}

// FailNextCalls makes the next n fetches fail with datasource.ErrFetchFailed.
func (f *FakeDataSource) FailNextCalls(n int) *FakeDataSource {
	return f.FailNextCallsWith(n, errors.Join(datasource.ErrFetchFailed, ErrFakeBackendDown))
}

// FailNextCallsWith makes the next n fetches fail with err.
func (f *FakeDataSource) FailNextCallsWith(n int, err error) *FakeDataSource {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failuresLeft = n
	f.failWith = err

	return f
}

// FetchAuthors implements datasource.DataSource.
func (f *FakeDataSource) FetchAuthors(ctx context.Context) ([]viewmodel.Author, error) {
	if err := f.begin(ctx, "FetchAuthors"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.authors), nil
}

// FetchBooks implements datasource.DataSource.
func (f *FakeDataSource) FetchBooks(ctx context.Context) ([]viewmodel.RawBook, error) {
	if err := f.begin(ctx, "FetchBooks"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.books), nil
}

// FetchBooksByAuthor implements datasource.DataSource.
func (f *FakeDataSource) FetchBooksByAuthor(ctx context.Context, authorID viewmodel.AuthorIDInt) ([]viewmodel.Book, error) {
	if err := f.begin(ctx, "FetchBooksByAuthor"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastAuthorIDs = append(f.lastAuthorIDs, authorID)

	books := make([]viewmodel.Book, 0)
	for _, book := range f.books {
		if book.AuthorID == authorID {
			books = append(books, book.Book())
		}
	}

	return books, nil
}

// CallCount returns how often the named fetch method was called, failed calls included.
func (f *FakeDataSource) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[method]
}

// RequestedAuthorIDs returns the author ids FetchBooksByAuthor answered for.
func (f *FakeDataSource) RequestedAuthorIDs() []viewmodel.AuthorIDInt {
	f.mu.Lock()
	defer f.mu.Unlock()

	return slices.Clone(f.lastAuthorIDs)
}

func (f *FakeDataSource) begin(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[method]++

	if f.failuresLeft > 0 {
		f.failuresLeft--
		return f.failWith
	}

	return nil
}
