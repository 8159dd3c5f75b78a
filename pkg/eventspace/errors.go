package eventspace

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for argument validation.
var (
	// ErrInvalidArgument indicates a bad event type or an origin outside the
	// accepted containment closure of the Objects folder.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEventFilterInvalid indicates a filter with no select clauses.
	ErrEventFilterInvalid = errors.New("event filter has no select clauses")

	// ErrNotSupported indicates a non-empty where-clause was supplied.
	// Where-clause evaluation is an extension point, not yet implemented.
	ErrNotSupported = errors.New("where clauses are not supported")
)

// Sentinel errors for address-space access.
var (
	// ErrNotFound indicates a named property could not be resolved under any
	// aggregation relation kind.
	ErrNotFound = errors.New("property not found")

	// ErrNodeNotFound indicates the referenced node does not exist in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoValue indicates the node exists but holds no value.
	ErrNoValue = errors.New("node holds no value")
)

// ResolveError wraps a failed property resolution with the node it started
// from and the relative path that was requested.
type ResolveError struct {
	// Node is the node the resolution started from.
	Node NodeID
	// Path is the relative browse path that was requested.
	Path []string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %s from node %s: %v", strings.Join(e.Path, "/"), e.Node, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// DeliveryError wraps a failed notification delivery. Deliveries made before
// the failure are not rolled back; callers must treat this error as "some
// watchers may have received the event".
type DeliveryError struct {
	// Subscription is the subscription whose watcher rejected the delivery.
	Subscription string
	// Ancestor is the ancestor node the watcher was registered on.
	Ancestor NodeID
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to subscription %s at node %s: %v", e.Subscription, e.Ancestor, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}
