package shell

import (
	"github.com/google/uuid"
)

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating related messages.
type CorrelationID = string

// EventMetadata contains event tracking information.
type EventMetadata struct {
	MessageID     MessageID     `json:"messageId"`
	CausationID   CausationID   `json:"causationId"`
	CorrelationID CorrelationID `json:"correlationId"`
}

// BuildEventMetadata creates EventMetadata from UUID values.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// BuildRootEventMetadata creates metadata for an event that starts a new causation chain.
func BuildRootEventMetadata() EventMetadata {
	id := uuid.New()

	return BuildEventMetadata(id, id, id)
}

// CausedBy creates metadata for a follow-up event of the message described by m.
func (m EventMetadata) CausedBy() EventMetadata {
	return EventMetadata{
		MessageID:     uuid.NewString(),
		CausationID:   m.MessageID,
		CorrelationID: m.CorrelationID,
	}
}
