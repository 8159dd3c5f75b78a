package eventspace

import (
	"github.com/randalmurphal/eventspace/pkg/eventspace/observability"
)

// SelectOperand is one filter term: a type qualifier plus the relative
// browse path of the property to extract.
type SelectOperand struct {
	// TypeDefinition qualifies the clause. When it is not BaseEventType,
	// the clause only applies to events whose type lies in its subtype
	// closure; other events get an empty field at this position.
	TypeDefinition NodeID

	// BrowsePath is the relative path of the property, one name per level.
	BrowsePath []string
}

// ContentFilterElement is one element of a structural where-clause.
// Where-clause evaluation is an extension point: supplying any element makes
// filtering report ErrNotSupported while still treating the event as a match.
type ContentFilterElement struct {
	Operator string
	Operands []any
}

// EventFilter selects which attributes of an event a watcher receives.
type EventFilter struct {
	// SelectClauses is the ordered field selection. At least one clause is
	// required.
	SelectClauses []SelectOperand

	// WhereClause is the optional structural predicate. Not evaluated.
	WhereClause []ContentFilterElement
}

// FieldList is the ordered result of applying a filter to an event.
// Its length always equals the filter's select-clause count; a nil entry is
// the empty placeholder for a clause that did not resolve or did not match.
type FieldList []any

// FilterEvent applies a filter to an event instance and produces its field
// list. Per-clause failures (type mismatch, unresolved path, unreadable
// value) leave the corresponding field empty and never fail the call.
//
// A non-empty where-clause aborts evaluation right after the clause being
// processed and returns ErrNotSupported alongside the partially filled list.
func (m *Manager) FilterEvent(event NodeID, filter *EventFilter) (FieldList, error) {
	if len(filter.SelectClauses) == 0 {
		return nil, ErrEventFilterInvalid
	}

	fields := make(FieldList, len(filter.SelectClauses))
	for i, clause := range filter.SelectClauses {
		if clause.TypeDefinition != BaseEventType && !m.eventIsOfType(event, clause.TypeDefinition) {
			continue
		}

		target, err := findEventProperty(m.store, event, clause.BrowsePath)
		if err != nil {
			continue
		}

		match, whereErr := m.applyWhereClause(filter.WhereClause)
		if !match {
			continue
		}
		if value, err := m.store.ReadValue(target); err == nil {
			fields[i] = value
		}
		if whereErr != nil {
			return fields, whereErr
		}
	}
	return fields, nil
}

// eventIsOfType reports whether the event instance's actual EventType lies in
// the subtype closure of typeDef.
func (m *Manager) eventIsOfType(event NodeID, typeDef NodeID) bool {
	target, err := findEventProperty(m.store, event, []string{PropEventType})
	if err != nil {
		return false
	}
	value, err := m.store.ReadValue(target)
	if err != nil {
		return false
	}
	actual, ok := value.(NodeID)
	if !ok {
		return false
	}
	return isNodeInTree(m.store, actual, typeDef, RefHasSubtype)
}

// applyWhereClause evaluates the structural predicate of a filter.
// An empty clause matches everything. A non-empty clause also matches, but
// reports ErrNotSupported: there is no evaluator behind it yet.
func (m *Manager) applyWhereClause(elements []ContentFilterElement) (bool, error) {
	if len(elements) == 0 {
		return true, nil
	}
	observability.LogWhereClauseUnsupported(m.log, len(elements))
	return true, ErrNotSupported
}
