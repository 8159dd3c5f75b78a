package eventspace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// plantModel is the address-space fixture shared by the tests:
//
//	ObjectsFolder
//	└── Plant            (Organizes)
//	    └── Line1        (HasComponent)
//	        └── Boiler1  (HasComponent)
type plantModel struct {
	store  *MemStore
	plant  NodeID
	line   NodeID
	boiler NodeID
}

func newPlantModel(t *testing.T) *plantModel {
	t.Helper()

	store := NewMemStore()
	plant, err := store.AddFolder(ObjectsFolder, "Plant")
	require.NoError(t, err)
	line, err := store.AddObjectNode(plant, "Line1")
	require.NoError(t, err)
	boiler, err := store.AddObjectNode(line, "Boiler1")
	require.NoError(t, err)

	return &plantModel{store: store, plant: plant, line: line, boiler: boiler}
}

// selectFilter builds a filter with one BaseEventType clause per property.
func selectFilter(properties ...string) EventFilter {
	clauses := make([]SelectOperand, len(properties))
	for i, property := range properties {
		clauses[i] = SelectOperand{
			TypeDefinition: BaseEventType,
			BrowsePath:     []string{property},
		}
	}
	return EventFilter{SelectClauses: clauses}
}
