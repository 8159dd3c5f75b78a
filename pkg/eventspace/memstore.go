package eventspace

import (
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventspace/pkg/eventspace/registry"
)

// nodeClass distinguishes the node kinds MemStore knows about.
type nodeClass int

const (
	classObject nodeClass = iota
	classObjectType
	classVariable
	classReferenceType
)

// nodeRecord is MemStore's representation of one address-space node.
type nodeRecord struct {
	id          NodeID
	class       nodeClass
	browseName  string
	displayName string
	value       any
	hasValue    bool
	refs        []Reference
}

// MemStore is an in-memory NodeStore. It seeds the base address-space model
// (reference-type hierarchy, the Objects folder, BaseEventType with its
// well-known properties) and offers a builder API for modeling the rest of
// the server's address space.
//
// MemStore owns its concurrency control: all operations are safe for
// concurrent use. Watcher lists follow a snapshot-on-iterate contract, so
// registrations may change while a fan-out walk is in progress without
// invalidating it.
type MemStore struct {
	mu       sync.RWMutex
	nodes    *registry.Registry[NodeID, *nodeRecord]
	watchers *registry.Registry[NodeID, []*MonitoredItem]
}

// baseEventProperties are the properties every event instance carries.
var baseEventProperties = []string{
	PropEventID, PropEventType, PropSourceNode, PropReceiveTime, PropTime, PropSeverity,
}

// NewMemStore creates a MemStore seeded with the base model.
func NewMemStore() *MemStore {
	s := &MemStore{
		nodes:    registry.New[NodeID, *nodeRecord](),
		watchers: registry.New[NodeID, []*MonitoredItem](),
	}
	s.seedBaseModel()
	return s
}

func (s *MemStore) seedBaseModel() {
	s.addRecord(&nodeRecord{id: ObjectsFolder, class: classObject, browseName: "Objects", displayName: "Objects"})

	for _, refType := range []NodeID{RefHasSubtype, RefAggregates, RefHasProperty, RefHasComponent, RefOrganizes} {
		s.addRecord(&nodeRecord{id: refType, class: classReferenceType, browseName: string(refType), displayName: string(refType)})
	}
	s.linkLocked(RefAggregates, RefHasSubtype, RefHasProperty)
	s.linkLocked(RefAggregates, RefHasSubtype, RefHasComponent)

	s.addRecord(&nodeRecord{id: BaseEventType, class: classObjectType, browseName: string(BaseEventType), displayName: string(BaseEventType)})
	for _, name := range baseEventProperties {
		s.declarePropertyLocked(BaseEventType, name)
	}
}

// Builder API, used by the surrounding server to model its address space.

// AddObjectType derives a new object type from superType, declaring the
// given extra properties. Event types are object types: derive from
// BaseEventType to define a new event type. The type's name doubles as its
// node id.
func (s *MemStore) AddObjectType(superType NodeID, name string, properties ...string) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	superRec, ok := s.nodes.Get(superType)
	if !ok {
		return "", fmt.Errorf("supertype %s: %w", superType, ErrNodeNotFound)
	}
	if superRec.class != classObjectType {
		return "", fmt.Errorf("supertype %s is not an object type: %w", superType, ErrInvalidArgument)
	}

	id := NodeID(name)
	if s.nodes.Has(id) {
		return "", fmt.Errorf("node %s already exists: %w", id, ErrInvalidArgument)
	}
	s.addRecord(&nodeRecord{id: id, class: classObjectType, browseName: name, displayName: name})
	s.linkLocked(superType, RefHasSubtype, id)

	for _, property := range properties {
		s.declarePropertyLocked(id, property)
	}
	return id, nil
}

// AddFolder creates a folder organized by parent. The folder's name doubles
// as its node id.
func (s *MemStore) AddFolder(parent NodeID, name string) (NodeID, error) {
	return s.addChild(parent, name, RefOrganizes)
}

// AddObjectNode creates an object component of parent. The object's name
// doubles as its node id.
func (s *MemStore) AddObjectNode(parent NodeID, name string) (NodeID, error) {
	return s.addChild(parent, name, RefHasComponent)
}

func (s *MemStore) addChild(parent NodeID, name string, refType NodeID) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nodes.Has(parent) {
		return "", fmt.Errorf("parent %s: %w", parent, ErrNodeNotFound)
	}
	id := NodeID(name)
	if s.nodes.Has(id) {
		return "", fmt.Errorf("node %s already exists: %w", id, ErrInvalidArgument)
	}
	s.addRecord(&nodeRecord{id: id, class: classObject, browseName: name, displayName: name})
	s.linkLocked(parent, refType, id)
	return id, nil
}

// AddReference adds a typed edge between two existing nodes. The inverse
// direction becomes visible on the target.
func (s *MemStore) AddReference(source, refType, target NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []NodeID{source, refType, target} {
		if !s.nodes.Has(id) {
			return fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
		}
	}
	s.linkLocked(source, refType, target)
	return nil
}

// RegisterWatcher registers a monitored item on a node. The item receives
// every event triggered from the node or from any of its descendants.
func (s *MemStore) RegisterWatcher(node NodeID, item *MonitoredItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nodes.Has(node) {
		return fmt.Errorf("node %s: %w", node, ErrNodeNotFound)
	}
	s.watchers.Update(node, func(items []*MonitoredItem) []*MonitoredItem {
		// Copy-on-write keeps previously returned snapshots valid.
		updated := make([]*MonitoredItem, len(items), len(items)+1)
		copy(updated, items)
		return append(updated, item)
	})
	return nil
}

// UnregisterWatcher removes a monitored item registration from a node.
func (s *MemStore) UnregisterWatcher(node NodeID, item *MonitoredItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchers.Update(node, func(items []*MonitoredItem) []*MonitoredItem {
		updated := make([]*MonitoredItem, 0, len(items))
		for _, candidate := range items {
			if candidate != item {
				updated = append(updated, candidate)
			}
		}
		return updated
	})
}

// NodeStore implementation.

// AddObject implements NodeStore. The new instance gets a fresh copy of
// every property declared along typeDef's supertype chain; a subtype's own
// declaration shadows a supertype's declaration of the same name.
func (s *MemStore) AddObject(typeDef NodeID, displayName string) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	typeRec, ok := s.nodes.Get(typeDef)
	if !ok {
		return "", fmt.Errorf("type %s: %w", typeDef, ErrNodeNotFound)
	}
	if typeRec.class != classObjectType {
		return "", fmt.Errorf("type %s is not an object type: %w", typeDef, ErrInvalidArgument)
	}

	id := s.newNodeID()
	s.addRecord(&nodeRecord{id: id, class: classObject, displayName: displayName})

	aggregation := s.aggregationKindsLocked()
	instantiated := map[string]bool{}
	for _, typeNode := range s.typeChainLocked(typeDef) {
		for _, ref := range s.refsLocked(typeNode) {
			if ref.Inverse || !aggregation[ref.Type] {
				continue
			}
			declaration, ok := s.nodes.Get(ref.Target)
			if !ok || declaration.class != classVariable || instantiated[declaration.browseName] {
				continue
			}
			instantiated[declaration.browseName] = true

			varID := s.newNodeID()
			s.addRecord(&nodeRecord{id: varID, class: classVariable, browseName: declaration.browseName})
			s.linkLocked(id, ref.Type, varID)
		}
	}
	return id, nil
}

// DeleteNode implements NodeStore. Property variables owned by the node are
// removed with it, as are its watcher registrations.
func (s *MemStore) DeleteNode(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.nodes.Get(id)
	if !ok {
		return fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}

	// removeAllRefsToLocked compacts rec.refs in place while the variables
	// are deleted, so iterate over a snapshot.
	refs := make([]Reference, len(rec.refs))
	copy(refs, rec.refs)

	aggregation := s.aggregationKindsLocked()
	for _, ref := range refs {
		if ref.Inverse || !aggregation[ref.Type] {
			continue
		}
		if owned, ok := s.nodes.Get(ref.Target); ok && owned.class == classVariable {
			s.removeAllRefsToLocked(ref.Target)
			s.nodes.Delete(ref.Target)
			s.watchers.Delete(ref.Target)
		}
	}

	s.removeAllRefsToLocked(id)
	s.nodes.Delete(id)
	s.watchers.Delete(id)
	return nil
}

// Exists implements NodeStore.
func (s *MemStore) Exists(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Has(id)
}

// ReadValue implements NodeStore.
func (s *MemStore) ReadValue(id NodeID) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.nodes.Get(id)
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	if !rec.hasValue {
		return nil, fmt.Errorf("node %s: %w", id, ErrNoValue)
	}
	if raw, ok := rec.value.([]byte); ok {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	return rec.value, nil
}

// WriteValue implements NodeStore.
func (s *MemStore) WriteValue(id NodeID, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.nodes.Get(id)
	if !ok {
		return fmt.Errorf("node %s: %w", id, ErrNodeNotFound)
	}
	if rec.class != classVariable {
		return fmt.Errorf("node %s is not a variable: %w", id, ErrInvalidArgument)
	}
	if raw, ok := value.([]byte); ok {
		stored := make([]byte, len(raw))
		copy(stored, raw)
		value = stored
	}
	rec.value = value
	rec.hasValue = true
	return nil
}

// TranslatePath implements NodeStore. Only forward references of exactly
// refType are followed; reference subtypes are the resolver's concern.
func (s *MemStore) TranslatePath(start NodeID, refType NodeID, path []string) (NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.nodes.Has(start) {
		return "", fmt.Errorf("node %s: %w", start, ErrNodeNotFound)
	}
	if len(path) == 0 {
		return "", fmt.Errorf("empty browse path: %w", ErrNotFound)
	}

	current := start
	for _, name := range path {
		next := NodeID("")
		for _, ref := range s.refsLocked(current) {
			if ref.Inverse || ref.Type != refType {
				continue
			}
			if target, ok := s.nodes.Get(ref.Target); ok && target.browseName == name {
				next = ref.Target
				break
			}
		}
		if next == "" {
			return "", fmt.Errorf("path element %q from node %s: %w", name, current, ErrNotFound)
		}
		current = next
	}
	return current, nil
}

// References implements NodeStore. The sequence iterates over a snapshot
// taken when iteration starts, so it is finite and restartable.
func (s *MemStore) References(id NodeID) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		s.mu.RLock()
		var snapshot []Reference
		if rec, ok := s.nodes.Get(id); ok {
			snapshot = make([]Reference, len(rec.refs))
			copy(snapshot, rec.refs)
		}
		s.mu.RUnlock()

		for _, ref := range snapshot {
			if !yield(ref) {
				return
			}
		}
	}
}

// Watchers implements NodeStore.
func (s *MemStore) Watchers(id NodeID) []*MonitoredItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, _ := s.watchers.Get(id)
	snapshot := make([]*MonitoredItem, len(items))
	copy(snapshot, items)
	return snapshot
}

// Len returns the number of nodes in the store. Useful for testing.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Len()
}

// Internal helpers. All assume s.mu is held.

func (s *MemStore) addRecord(rec *nodeRecord) {
	s.nodes.Register(rec.id, rec)
}

func (s *MemStore) newNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// linkLocked records a forward reference on source and its inverse on target.
func (s *MemStore) linkLocked(source, refType, target NodeID) {
	if rec, ok := s.nodes.Get(source); ok {
		rec.refs = append(rec.refs, Reference{Type: refType, Target: target})
	}
	if rec, ok := s.nodes.Get(target); ok {
		rec.refs = append(rec.refs, Reference{Type: refType, Target: source, Inverse: true})
	}
}

// declarePropertyLocked attaches a property variable declaration to a type.
func (s *MemStore) declarePropertyLocked(owner NodeID, name string) NodeID {
	id := s.newNodeID()
	s.addRecord(&nodeRecord{id: id, class: classVariable, browseName: name, displayName: name})
	s.linkLocked(owner, RefHasProperty, id)
	return id
}

// refsLocked returns the live reference slice of a node.
func (s *MemStore) refsLocked(id NodeID) []Reference {
	rec, ok := s.nodes.Get(id)
	if !ok {
		return nil
	}
	return rec.refs
}

// aggregationKindsLocked returns the subtype closure of the aggregation
// reference as a set, walked with a visited guard.
func (s *MemStore) aggregationKindsLocked() map[NodeID]bool {
	kinds := map[NodeID]bool{}
	visited := map[NodeID]bool{RefAggregates: true}
	queue := []NodeID{RefAggregates}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, ref := range s.refsLocked(current) {
			if ref.Inverse || ref.Type != RefHasSubtype || visited[ref.Target] {
				continue
			}
			visited[ref.Target] = true
			kinds[ref.Target] = true
			queue = append(queue, ref.Target)
		}
	}
	return kinds
}

// typeChainLocked returns typeDef followed by its supertypes, nearest first.
func (s *MemStore) typeChainLocked(typeDef NodeID) []NodeID {
	chain := []NodeID{typeDef}
	visited := map[NodeID]bool{typeDef: true}
	current := typeDef
	for {
		var super NodeID
		for _, ref := range s.refsLocked(current) {
			if ref.Inverse && ref.Type == RefHasSubtype && !visited[ref.Target] {
				super = ref.Target
				break
			}
		}
		if super == "" {
			return chain
		}
		visited[super] = true
		chain = append(chain, super)
		current = super
	}
}

// removeAllRefsToLocked strips every edge between id and its neighbors, on
// the neighbor side.
func (s *MemStore) removeAllRefsToLocked(id NodeID) {
	rec, ok := s.nodes.Get(id)
	if !ok {
		return
	}
	refs := make([]Reference, len(rec.refs))
	copy(refs, rec.refs)
	for _, ref := range refs {
		neighbor, ok := s.nodes.Get(ref.Target)
		if !ok {
			continue
		}
		kept := neighbor.refs[:0]
		for _, nref := range neighbor.refs {
			if nref.Target != id {
				kept = append(kept, nref)
			}
		}
		neighbor.refs = kept
	}
}
