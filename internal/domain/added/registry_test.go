package added

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

func addedRecord(id string) *replacement.Record {
	return &replacement.Record{
		ID:          id,
		Tier:        replacement.TierAdded,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Shop",
		Lane:        prefab.NoLane,
		Replacement: prefab.NewRef(prefab.KindProp, "Bench"),
	}
}

func TestRegistry_RemoveRenumbersLaterEntries(t *testing.T) {
	// Arrange
	r := NewRegistry()
	key := Key{Parent: "Shop", Lane: prefab.NoLane}
	r.Add(key, 5, addedRecord("a"))
	r.Add(key, 6, addedRecord("b"))
	r.Add(key, 7, addedRecord("c"))

	// Act
	removed := r.Remove(key, 6)

	// Assert
	require.NotNil(t, removed)
	assert.Equal(t, "b", removed.Record.ID)

	entries := r.Entries(key)
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Index)
	assert.Equal(t, "a", entries[0].Record.ID)
	assert.Equal(t, 6, entries[1].Index)
	assert.Equal(t, "c", entries[1].Record.ID)
	assert.Equal(t, 6, entries[1].Record.Slot)

	assert.True(t, r.IsAdded(key, 5))
	assert.True(t, r.IsAdded(key, 6))
	assert.False(t, r.IsAdded(key, 7))
}

func TestRegistry_RemoveLeavesOtherLanesAlone(t *testing.T) {
	r := NewRegistry()
	lane0 := Key{Parent: "Road", Lane: 0}
	lane1 := Key{Parent: "Road", Lane: 1}
	r.Add(lane0, 3, addedRecord("a"))
	r.Add(lane1, 4, addedRecord("b"))

	r.Remove(lane0, 3)

	assert.Empty(t, r.Entries(lane0))
	assert.True(t, r.IsAdded(lane1, 4))
	assert.Equal(t, []Key{lane1}, r.Keys())
}

func TestRegistry_RemoveUnknownIndex(t *testing.T) {
	r := NewRegistry()
	key := Key{Parent: "Shop", Lane: prefab.NoLane}
	r.Add(key, 5, addedRecord("a"))

	assert.Nil(t, r.Remove(key, 9))
	assert.True(t, r.IsAdded(key, 5))
}

func TestRegistry_AddStampsSlot(t *testing.T) {
	r := NewRegistry()
	rec := addedRecord("a")

	r.Add(Key{Parent: "Shop", Lane: prefab.NoLane}, 8, rec)

	assert.Equal(t, 8, rec.Slot)
	assert.Equal(t, []*replacement.Record{rec}, r.Records())
}
