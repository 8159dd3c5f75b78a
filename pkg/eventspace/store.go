package eventspace

import "iter"

// Reference is one typed, directed edge of the address-space graph.
// Inverse references point from a node back toward the source of the edge:
// if A organizes B, then B carries {Organizes, A, Inverse: true}.
type Reference struct {
	// Type is the reference type (e.g. RefHasProperty, RefOrganizes).
	Type NodeID
	// Target is the node on the other end of the edge.
	Target NodeID
	// Inverse is true when the edge is seen from its target side.
	Inverse bool
}

// NodeStore is the object store the event subsystem runs against.
// Implementations own their concurrency control; the event subsystem performs
// no locking of its own and assumes single-writer discipline for the duration
// of a CreateEvent or TriggerEvent call.
type NodeStore interface {
	// AddObject allocates a new parentless, unreferenced object instance of
	// the given type, with its display text set to displayName. Properties
	// declared by the type (and its supertypes) are instantiated onto the
	// new object.
	AddObject(typeDef NodeID, displayName string) (NodeID, error)

	// DeleteNode removes a node and its owned property variables.
	DeleteNode(id NodeID) error

	// Exists reports whether a node is present in the store.
	Exists(id NodeID) bool

	// ReadValue returns the value held by a variable node.
	// Returns ErrNodeNotFound or ErrNoValue on failure.
	ReadValue(id NodeID) (any, error)

	// WriteValue replaces the value held by a variable node.
	WriteValue(id NodeID, value any) error

	// TranslatePath resolves a relative browse path from start, following
	// only forward references of exactly the given type. Returns
	// ErrNotFound when a path element does not resolve.
	TranslatePath(start NodeID, refType NodeID, path []string) (NodeID, error)

	// References returns a lazy, restartable sequence of the edges attached
	// to a node, both forward and inverse. The sequence reflects a snapshot
	// taken when iteration starts.
	References(id NodeID) iter.Seq[Reference]

	// Watchers returns the monitored items registered on a node, in
	// registration order. The returned slice is a snapshot; mutating
	// registrations during iteration does not invalidate it.
	Watchers(id NodeID) []*MonitoredItem
}
