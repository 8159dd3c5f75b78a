package eventspace

// NodeID identifies a node in the address space.
// The empty string is never a valid identifier.
type NodeID string

// Well-known nodes of the base address-space model.
const (
	// ObjectsFolder is the root container every event origin must lie under.
	ObjectsFolder NodeID = "ObjectsFolder"

	// BaseEventType is the root event type. Every event instance is typed
	// as a subtype of it (or as BaseEventType itself).
	BaseEventType NodeID = "BaseEventType"
)

// Well-known reference types.
const (
	// RefHasSubtype connects a type to its direct subtypes.
	RefHasSubtype NodeID = "HasSubtype"

	// RefAggregates is the abstract aggregation relation. Its subtype
	// closure is the set of relation kinds a property may be exposed under.
	RefAggregates NodeID = "Aggregates"

	// RefHasProperty connects a node to its property variables.
	RefHasProperty NodeID = "HasProperty"

	// RefHasComponent connects a node to its structural components.
	RefHasComponent NodeID = "HasComponent"

	// RefOrganizes connects a folder to the nodes it organizes.
	RefOrganizes NodeID = "Organizes"
)

// Well-known event properties written by the lifecycle and read during
// filtering and id extraction.
const (
	PropEventID     = "EventId"
	PropEventType   = "EventType"
	PropSourceNode  = "SourceNode"
	PropReceiveTime = "ReceiveTime"
	PropTime        = "Time"
	PropSeverity    = "Severity"
)

// containmentReferences is the whitelist of relation kinds accepted when
// checking that an origin lies under the Objects folder, and the edge family
// followed when collecting the ancestors of an origin.
var containmentReferences = []NodeID{RefOrganizes, RefHasComponent}
