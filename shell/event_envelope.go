package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/bookshelf-viewmodel/viewmodel"
)

// EventEnvelope combines an event with its metadata.
type EventEnvelope struct {
	Event         viewmodel.Event
	EventMetadata EventMetadata
}

type eventEnvelopeJSON struct {
	TaggedEvent
	Metadata EventMetadata `json:"metadata"`
}

// BuildEventEnvelope creates a new EventEnvelope from an event and metadata.
func BuildEventEnvelope(event viewmodel.Event, eventMetadata EventMetadata) EventEnvelope {
	return EventEnvelope{
		Event:         event,
		EventMetadata: eventMetadata,
	}
}

// EventEnvelopeToJSON encodes an envelope as a tagged event with an additional metadata field.
func EventEnvelopeToJSON(envelope EventEnvelope) ([]byte, error) {
	tagged, err := TaggedEventFrom(envelope.Event)
	if err != nil {
		return nil, err
	}

	data, err := jsoniter.ConfigFastest.Marshal(eventEnvelopeJSON{TaggedEvent: tagged, Metadata: envelope.EventMetadata})
	if err != nil {
		return nil, errors.Join(ErrMappingFromEventFailed, err)
	}

	return data, nil
}

// EventEnvelopeFromJSON is the inverse of EventEnvelopeToJSON.
func EventEnvelopeFromJSON(data []byte) (EventEnvelope, error) {
	decoded := new(eventEnvelopeJSON)

	if err := jsoniter.ConfigFastest.Unmarshal(data, decoded); err != nil {
		return EventEnvelope{}, errors.Join(ErrMappingToEventFailed, err)
	}

	if decoded.Type == "" {
		return EventEnvelope{}, errors.Join(ErrMappingToEventFailed, ErrMissingEventType)
	}

	event, err := EventFrom(decoded.Type, decoded.Payload)
	if err != nil {
		return EventEnvelope{}, err
	}

	return BuildEventEnvelope(event, decoded.Metadata), nil
}
