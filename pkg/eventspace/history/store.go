// Package history provides persistent storage for the event journal.
//
// Triggered events are ephemeral: the address-space instance is deleted as
// soon as delivery finishes. The journal keeps a diagnostic record of each
// trigger so operators can answer "what fired, when, from where" after the
// fact. Journal writes are best-effort; a failed append never fails the
// trigger that produced it.
package history

import (
	"errors"
	"time"
)

// Record is one journal entry for a triggered event.
type Record struct {
	// EventID is the textual form of the 16-byte event identifier.
	EventID string
	// EventType is the event's type node.
	EventType string
	// Origin is the node the event was triggered from.
	Origin string
	// ReceiveTime is when the server received the trigger.
	ReceiveTime time.Time
	// Delivered is the number of watcher queues the event was fanned out to.
	Delivered int
}

// Store persists the event journal.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a record to the journal.
	Append(rec Record) error

	// List returns up to limit records, newest first.
	// limit <= 0 returns everything.
	List(limit int) ([]Record, error)

	// ListByType returns up to limit records of one event type, newest first.
	ListByType(eventType string, limit int) ([]Record, error)

	// Count returns the number of records in the journal.
	Count() (int, error)

	// Prune removes records with a receive time before the cutoff.
	Prune(before time.Time) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")
)
