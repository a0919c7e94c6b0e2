package shell

import "errors"

var (
	// ErrMappingToEventFailed is returned when a tagged event could not be decoded.
	ErrMappingToEventFailed = errors.New("mapping to event failed")

	// ErrMappingFromEventFailed is returned when an event could not be encoded.
	ErrMappingFromEventFailed = errors.New("mapping from event failed")

	// ErrMalformedPayload is returned when a payload lacks required fields.
	ErrMalformedPayload = errors.New("malformed event payload")

	// ErrMissingEventType is returned when a tagged event has no type.
	ErrMissingEventType = errors.New("missing event type")

	// ErrUnknownEventImplementation is returned when encoding an Event type the codec does not know.
	ErrUnknownEventImplementation = errors.New("unknown event implementation")
)
