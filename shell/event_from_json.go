package shell

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// TaggedEvent is the wire form of an event: its tag and its JSON payload.
type TaggedEvent struct {
	Type    string             `json:"type"`
	Payload jsoniter.RawMessage `json:"payload"`
}

type bookDTO struct {
	ID       *int    `json:"id"`
	Title    *string `json:"title"`
	AuthorID *int    `json:"authorId"`
}

type authorDTO struct {
	ID    *int      `json:"id"`
	Name  *string   `json:"name"`
	Books []bookDTO `json:"books"`
}

type booksByAuthorDTO struct {
	AuthorID *int      `json:"authorId"`
	Books    []bookDTO `json:"books"`
}

// EventFrom decodes the payload of an event with the given tag.
// Tags this version does not know yield a viewmodel.UnrecognizedEvent and no error.
func EventFrom(eventType string, payloadJSON []byte) (viewmodel.Event, error) {
	switch eventType {
	case viewmodel.AuthorsLoadedEventType:
		return unmarshalAuthorsLoaded(payloadJSON)

	case viewmodel.BooksLoadedEventType:
		return unmarshalBooksLoaded(payloadJSON)

	case viewmodel.BooksByAuthorLoadedEventType:
		return unmarshalBooksByAuthorLoaded(payloadJSON)

	default:
		return viewmodel.BuildUnrecognizedEvent(eventType, payloadJSON), nil
	}
}

func unmarshalAuthorsLoaded(payloadJSON []byte) (viewmodel.Event, error) {
	var payload []authorDTO

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, errors.Join(ErrMappingToEventFailed, err)
	}

	authors := make([]viewmodel.Author, 0, len(payload))

	for i, dto := range payload {
		err := validation.ValidateStruct(&dto,
			validation.Field(&dto.ID, validation.NotNil),
			validation.Field(&dto.Name, validation.NotNil),
		)
		if err != nil {
			return nil, malformed(fmt.Sprintf("authors[%d]", i), err)
		}

		var books []viewmodel.Book
		if dto.Books != nil {
			books, err = booksFrom(dto.Books, fmt.Sprintf("authors[%d].books", i))
			if err != nil {
				return nil, err
			}
		}

		authors = append(authors, viewmodel.Author{ID: *dto.ID, Name: *dto.Name, Books: books})
	}

	return viewmodel.BuildAuthorsLoaded(authors), nil
}

func unmarshalBooksLoaded(payloadJSON []byte) (viewmodel.Event, error) {
	var payload []bookDTO

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, errors.Join(ErrMappingToEventFailed, err)
	}

	books := make([]viewmodel.RawBook, 0, len(payload))

	for i, dto := range payload {
		err := validation.ValidateStruct(&dto,
			validation.Field(&dto.ID, validation.NotNil),
			validation.Field(&dto.Title, validation.NotNil),
			validation.Field(&dto.AuthorID, validation.NotNil),
		)
		if err != nil {
			return nil, malformed(fmt.Sprintf("books[%d]", i), err)
		}

		books = append(books, viewmodel.RawBook{ID: *dto.ID, Title: *dto.Title, AuthorID: *dto.AuthorID})
	}

	return viewmodel.BuildBooksLoaded(books), nil
}

func unmarshalBooksByAuthorLoaded(payloadJSON []byte) (viewmodel.Event, error) {
	payload := new(booksByAuthorDTO)

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, payload); err != nil {
		return nil, errors.Join(ErrMappingToEventFailed, err)
	}

	err := validation.ValidateStruct(payload,
		validation.Field(&payload.AuthorID, validation.NotNil),
	)
	if err != nil {
		return nil, malformed("payload", err)
	}

	books, err := booksFrom(payload.Books, "books")
	if err != nil {
		return nil, err
	}

	return viewmodel.BuildBooksByAuthorLoaded(*payload.AuthorID, books), nil
}

func booksFrom(dtos []bookDTO, path string) ([]viewmodel.Book, error) {
	books := make([]viewmodel.Book, 0, len(dtos))

	for i, dto := range dtos {
		err := validation.ValidateStruct(&dto,
			validation.Field(&dto.ID, validation.NotNil),
			validation.Field(&dto.Title, validation.NotNil),
		)
		if err != nil {
			return nil, malformed(fmt.Sprintf("%s[%d]", path, i), err)
		}

		books = append(books, viewmodel.Book{ID: *dto.ID, Title: *dto.Title})
	}

	return books, nil
}

func malformed(path string, err error) error {
	return errors.Join(ErrMappingToEventFailed, ErrMalformedPayload, fmt.Errorf("%s: %w", path, err))
}
