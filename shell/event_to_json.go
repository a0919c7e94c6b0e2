package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

type booksByAuthorPayload struct {
	AuthorID viewmodel.AuthorIDInt `json:"authorId"`
	Books    []viewmodel.Book      `json:"books"`
}

// TaggedEventFrom converts an event into its wire form.
// An UnrecognizedEvent keeps its original tag and payload.
func TaggedEventFrom(event viewmodel.Event) (TaggedEvent, error) {
	var payload any

	switch actualEvent := event.(type) {
	case viewmodel.AuthorsLoaded:
		payload = actualEvent.Authors

	case viewmodel.BooksLoaded:
		payload = actualEvent.Books

	case viewmodel.BooksByAuthorLoaded:
		payload = booksByAuthorPayload{AuthorID: actualEvent.AuthorID, Books: actualEvent.Books}

	case viewmodel.UnrecognizedEvent:
		rawPayload := actualEvent.PayloadJSON
		if len(rawPayload) == 0 {
			rawPayload = []byte("null")
		}

		return TaggedEvent{Type: actualEvent.Type, Payload: rawPayload}, nil

	default:
		return TaggedEvent{}, errors.Join(ErrMappingFromEventFailed, ErrUnknownEventImplementation)
	}

	payloadJSON, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return TaggedEvent{}, errors.Join(ErrMappingFromEventFailed, err)
	}

	return TaggedEvent{Type: event.EventType(), Payload: payloadJSON}, nil
}
