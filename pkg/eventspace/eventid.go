package eventspace

import (
	"fmt"

	"github.com/google/uuid"
)

// EventIDLength is the fixed size of an event identifier in bytes.
const EventIDLength = 16

// EventID is the unique identifier of a single event occurrence.
// Uniqueness is probabilistic: identifiers are 128 random bits.
type EventID [EventIDLength]byte

// NewEventID returns a fresh random event identifier.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// EventIDFromBytes converts a raw byte slice into an EventID.
// The slice must be exactly EventIDLength bytes.
func EventIDFromBytes(b []byte) (EventID, error) {
	if len(b) != EventIDLength {
		return EventID{}, fmt.Errorf("event id must be %d bytes, got %d: %w",
			EventIDLength, len(b), ErrInvalidArgument)
	}
	return EventID(b), nil
}

// Bytes returns the identifier as a fresh byte slice.
func (id EventID) Bytes() []byte {
	b := make([]byte, EventIDLength)
	copy(b, id[:])
	return b
}

// String returns the canonical textual form of the identifier.
func (id EventID) String() string {
	return uuid.UUID(id).String()
}
