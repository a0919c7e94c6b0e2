package viewmodel

const (
	// AuthorsLoadedEventType is the event type identifier for AuthorsLoaded.
	AuthorsLoadedEventType = "LOAD_AUTHORS_SUCCESS"

	// BooksLoadedEventType is the event type identifier for BooksLoaded.
	BooksLoadedEventType = "LOAD_BOOKS_SUCCESS"

	// BooksByAuthorLoadedEventType is the event type identifier for BooksByAuthorLoaded.
	BooksByAuthorLoadedEventType = "LOAD_BOOKS_BY_AUTHOR_SUCCESS"
)

// Event is a tagged update handed to Reduce.
// Implementations other than the ones in this package are valid and are ignored by Reduce.
type Event interface {
	// EventType returns the string tag of this event.
	EventType() string
}

// AuthorsLoaded carries a complete list of authors.
type AuthorsLoaded struct {
	Authors []Author
}

// BuildAuthorsLoaded creates a new AuthorsLoaded event.
func BuildAuthorsLoaded(authors []Author) AuthorsLoaded {
	return AuthorsLoaded{Authors: authors}
}

// EventType returns the event type identifier.
func (e AuthorsLoaded) EventType() string {
	return AuthorsLoadedEventType
}

// BooksLoaded carries all books of all authors.
type BooksLoaded struct {
	Books []RawBook
}

// BuildBooksLoaded creates a new BooksLoaded event.
func BuildBooksLoaded(books []RawBook) BooksLoaded {
	return BooksLoaded{Books: books}
}

// EventType returns the event type identifier.
func (e BooksLoaded) EventType() string {
	return BooksLoadedEventType
}

// BooksByAuthorLoaded carries the books of a single author.
type BooksByAuthorLoaded struct {
	AuthorID AuthorIDInt
	Books    []Book
}

// BuildBooksByAuthorLoaded creates a new BooksByAuthorLoaded event.
func BuildBooksByAuthorLoaded(authorID AuthorIDInt, books []Book) BooksByAuthorLoaded {
	return BooksByAuthorLoaded{AuthorID: authorID, Books: books}
}

// EventType returns the event type identifier.
func (e BooksByAuthorLoaded) EventType() string {
	return BooksByAuthorLoadedEventType
}

// UnrecognizedEvent represents an event with a tag this version does not know.
// It is kept so that newer producers can talk to older consumers.
type UnrecognizedEvent struct {
	Type        string
	PayloadJSON []byte
}

// BuildUnrecognizedEvent creates a new UnrecognizedEvent.
func BuildUnrecognizedEvent(eventType string, payloadJSON []byte) UnrecognizedEvent {
	return UnrecognizedEvent{Type: eventType, PayloadJSON: payloadJSON}
}

// EventType returns the original event type tag.
func (e UnrecognizedEvent) EventType() string {
	return e.Type
}
