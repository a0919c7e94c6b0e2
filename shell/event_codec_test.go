package shell_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell"
	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

func Test_EventEnvelopeFromJSON_DecodesAuthorsLoaded(t *testing.T) {
	// arrange
	data := []byte(`{"type":"LOAD_AUTHORS_SUCCESS","payload":[
		{"id":1,"name":"Ursula K. Le Guin"},
		{"id":2,"name":"Octavia E. Butler","books":[{"id":7,"title":"Kindred"}]}
	]}`)

	// act
	envelope, err := shell.EventEnvelopeFromJSON(data)

	// assert
	require.NoError(t, err)
	event := envelope.Event
	assert.Equal(t, viewmodel.BuildAuthorsLoaded([]viewmodel.Author{
		{ID: 1, Name: "Ursula K. Le Guin"},
		{ID: 2, Name: "Octavia E. Butler", Books: []viewmodel.Book{{ID: 7, Title: "Kindred"}}},
	}), event)
}

func Test_EventEnvelopeFromJSON_DecodesBooksLoaded(t *testing.T) {
	// arrange
	data := []byte(`{"type":"LOAD_BOOKS_SUCCESS","payload":[{"id":1,"title":"Kindred","authorId":2}]}`)

	// act
	envelope, err := shell.EventEnvelopeFromJSON(data)

	// assert
	require.NoError(t, err)
	event := envelope.Event
	assert.Equal(t, viewmodel.BuildBooksLoaded([]viewmodel.RawBook{{ID: 1, Title: "Kindred", AuthorID: 2}}), event)
}

func Test_EventEnvelopeFromJSON_DecodesBooksByAuthorLoaded(t *testing.T) {
	// arrange
	data := []byte(`{"type":"LOAD_BOOKS_BY_AUTHOR_SUCCESS","payload":{"authorId":0,"books":[{"id":3,"title":"Solaris"}]}}`)

	// act
	envelope, err := shell.EventEnvelopeFromJSON(data)

	// assert
	require.NoError(t, err)
	event := envelope.Event
	assert.Equal(t, viewmodel.BuildBooksByAuthorLoaded(0, []viewmodel.Book{{ID: 3, Title: "Solaris"}}), event)
}

func Test_EventEnvelopeFromJSON_UnknownTagBecomesUnrecognizedEvent(t *testing.T) {
	// arrange
	data := []byte(`{"type":"LOAD_REVIEWS_SUCCESS","payload":{"stars":5}}`)

	// act
	envelope, err := shell.EventEnvelopeFromJSON(data)

	// assert
	require.NoError(t, err)
	event := envelope.Event
	unrecognized, ok := event.(viewmodel.UnrecognizedEvent)
	require.True(t, ok)
	assert.Equal(t, "LOAD_REVIEWS_SUCCESS", unrecognized.EventType())
	assert.JSONEq(t, `{"stars":5}`, string(unrecognized.PayloadJSON))
}

func Test_EventEnvelopeFromJSON_RejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name      string
		data      string
		malformed bool
	}{
		{name: "not json", data: `{"type":`},
		{name: "missing type", data: `{"payload":[]}`},
		{name: "payload of wrong shape", data: `{"type":"LOAD_BOOKS_SUCCESS","payload":{"id":1}}`},
		{name: "author without id", data: `{"type":"LOAD_AUTHORS_SUCCESS","payload":[{"name":"Lem"}]}`, malformed: true},
		{name: "author without name", data: `{"type":"LOAD_AUTHORS_SUCCESS","payload":[{"id":3}]}`, malformed: true},
		{name: "book without authorId", data: `{"type":"LOAD_BOOKS_SUCCESS","payload":[{"id":1,"title":"Solaris"}]}`, malformed: true},
		{name: "nested book without title", data: `{"type":"LOAD_BOOKS_BY_AUTHOR_SUCCESS","payload":{"authorId":3,"books":[{"id":1}]}}`, malformed: true},
		{name: "books by author without authorId", data: `{"type":"LOAD_BOOKS_BY_AUTHOR_SUCCESS","payload":{"books":[]}}`, malformed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			envelope, err := shell.EventEnvelopeFromJSON([]byte(tc.data))

			// assert
			assert.Nil(t, envelope.Event)
			assert.ErrorIs(t, err, shell.ErrMappingToEventFailed)
			if tc.malformed {
				assert.ErrorIs(t, err, shell.ErrMalformedPayload)
			}
		})
	}
}

func Test_EventEnvelopeToJSON_IsInverseOfEventEnvelopeFromJSON(t *testing.T) {
	events := []viewmodel.Event{
		viewmodel.BuildAuthorsLoaded([]viewmodel.Author{{ID: 1, Name: "Ursula K. Le Guin", Books: []viewmodel.Book{}}}),
		viewmodel.BuildBooksLoaded([]viewmodel.RawBook{{ID: 1, Title: "Kindred", AuthorID: 2}}),
		viewmodel.BuildBooksByAuthorLoaded(2, []viewmodel.Book{{ID: 1, Title: "Kindred"}}),
		viewmodel.BuildUnrecognizedEvent("SOMETHING_ELSE", []byte(`{"a":1}`)),
	}

	for _, event := range events {
		t.Run(event.EventType(), func(t *testing.T) {
			// act
			data, err := shell.EventEnvelopeToJSON(shell.BuildEventEnvelope(event, shell.EventMetadata{}))
			require.NoError(t, err)
			decoded, err := shell.EventEnvelopeFromJSON(data)

			// assert
			require.NoError(t, err)
			assert.Equal(t, event, decoded.Event)
		})
	}
}

func Test_TaggedEventFrom_RejectsForeignEventImplementations(t *testing.T) {
	// act
	_, err := shell.TaggedEventFrom(foreignEvent{})

	// assert
	assert.ErrorIs(t, err, shell.ErrMappingFromEventFailed)
	assert.ErrorIs(t, err, shell.ErrUnknownEventImplementation)
}

func Test_EventEnvelope_RoundTripKeepsMetadata(t *testing.T) {
	// arrange
	root := shell.BuildRootEventMetadata()
	metadata := root.CausedBy()
	envelope := shell.BuildEventEnvelope(viewmodel.BuildBooksByAuthorLoaded(2, []viewmodel.Book{}), metadata)

	// act
	data, err := shell.EventEnvelopeToJSON(envelope)
	require.NoError(t, err)
	decoded, err := shell.EventEnvelopeFromJSON(data)

	// assert
	require.NoError(t, err)
	assert.Equal(t, envelope, decoded)
	assert.Equal(t, root.MessageID, decoded.EventMetadata.CausationID)
	assert.Equal(t, root.CorrelationID, decoded.EventMetadata.CorrelationID)
	assert.NotEqual(t, root.MessageID, decoded.EventMetadata.MessageID)
}

type foreignEvent struct{}

func (foreignEvent) EventType() string { return "FOREIGN" }
