package eventspace

// Graph walks over the address space.
//
// The address space is externally mutable and not guaranteed loop-free, so
// every walk here runs over an explicit work queue with a visited set. The
// walks would not terminate on a cyclic model otherwise.

// subtypeClosure returns every strict descendant of root reachable over
// forward HasSubtype references, in discovery order.
func subtypeClosure(store NodeStore, root NodeID) []NodeID {
	visited := map[NodeID]bool{root: true}
	queue := []NodeID{root}
	var closure []NodeID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ref := range store.References(current) {
			if ref.Inverse || ref.Type != RefHasSubtype || visited[ref.Target] {
				continue
			}
			visited[ref.Target] = true
			closure = append(closure, ref.Target)
			queue = append(queue, ref.Target)
		}
	}
	return closure
}

// ancestorClosure returns origin followed by every node reachable from it
// over inverse containment references, in discovery order. Watchers on the
// origin itself are notified, so the origin is part of its own closure.
func ancestorClosure(store NodeStore, origin NodeID) []NodeID {
	visited := map[NodeID]bool{origin: true}
	queue := []NodeID{origin}
	closure := []NodeID{origin}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ref := range store.References(current) {
			if !ref.Inverse || !isContainmentReference(ref.Type) || visited[ref.Target] {
				continue
			}
			visited[ref.Target] = true
			closure = append(closure, ref.Target)
			queue = append(queue, ref.Target)
		}
	}
	return closure
}

// isNodeInTree reports whether leaf lies under root, following inverse
// references of the given kinds upward. A node lies under itself.
func isNodeInTree(store NodeStore, leaf, root NodeID, kinds ...NodeID) bool {
	if leaf == root {
		return true
	}
	visited := map[NodeID]bool{leaf: true}
	queue := []NodeID{leaf}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ref := range store.References(current) {
			if !ref.Inverse || !containsID(kinds, ref.Type) || visited[ref.Target] {
				continue
			}
			if ref.Target == root {
				return true
			}
			visited[ref.Target] = true
			queue = append(queue, ref.Target)
		}
	}
	return false
}

func isContainmentReference(refType NodeID) bool {
	return containsID(containmentReferences, refType)
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
