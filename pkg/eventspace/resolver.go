package eventspace

import "errors"

// findEventProperty resolves a relative browse path from root to the variable
// node holding the value, trying every relation kind in the subtype closure
// of the aggregation reference. A literal HasProperty lookup would be too
// narrow: well-formed models may expose a property under any aggregation
// subtype, so each discovered kind is tried in turn and the first resolution
// wins. Well-formed models expose each named property under exactly one kind,
// so first-match needs no tie-break.
func findEventProperty(store NodeStore, root NodeID, path []string) (NodeID, error) {
	if len(path) == 0 {
		return "", &ResolveError{Node: root, Path: path, Err: ErrInvalidArgument}
	}

	var lastErr error
	for _, kind := range subtypeClosure(store, RefAggregates) {
		target, err := store.TranslatePath(root, kind, path)
		if err == nil {
			return target, nil
		}
		lastErr = err
	}

	// Propagate a real resolution failure; otherwise the property simply
	// does not exist under any aggregation kind.
	if lastErr != nil && !errors.Is(lastErr, ErrNotFound) {
		return "", &ResolveError{Node: root, Path: path, Err: lastErr}
	}
	return "", &ResolveError{Node: root, Path: path, Err: ErrNotFound}
}
