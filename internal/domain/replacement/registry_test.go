package replacement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

func TestRegistry_AddKeepsExistingHandler(t *testing.T) {
	r := NewRegistry()
	ref := prefab.BuildingSlot("Shop", 2)
	first := r.Add(NewHandler(ref, baseline()))

	second := r.Add(NewHandler(ref, prefab.SlotState{Prefab: pine}))

	assert.Same(t, first, second)
	assert.Equal(t, oak, r.Get(ref).Original().Prefab)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ShiftRenumbersHandlersAboveRemovedSlot(t *testing.T) {
	// Arrange
	r := NewRegistry()
	for slot := 4; slot <= 7; slot++ {
		r.Add(NewHandler(prefab.NetworkSlot("Road", 1, slot), baseline()))
	}
	otherLane := r.Add(NewHandler(prefab.NetworkSlot("Road", 0, 6), baseline()))

	// Act
	dropped := r.Shift("Road", 1, 5)

	// Assert
	require.NotNil(t, dropped)
	assert.Equal(t, 5, dropped.Ref().Slot)
	assert.NotNil(t, r.Get(prefab.NetworkSlot("Road", 1, 4)))
	assert.Equal(t, 5, r.Get(prefab.NetworkSlot("Road", 1, 5)).Ref().Slot)
	assert.NotNil(t, r.Get(prefab.NetworkSlot("Road", 1, 6)))
	assert.Nil(t, r.Get(prefab.NetworkSlot("Road", 1, 7)))
	assert.Same(t, otherLane, r.Get(prefab.NetworkSlot("Road", 0, 6)))
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_ReferencingAndRemoveParent(t *testing.T) {
	// Arrange
	r := NewRegistry()
	rec := record("g", TierGrouped, pine)
	a := r.Add(NewHandler(prefab.BuildingSlot("Shop", 0), baseline()))
	b := r.Add(NewHandler(prefab.BuildingSlot("Shop", 1), baseline()))
	r.Add(NewHandler(prefab.BuildingSlot("Mall", 0), baseline()))
	a.Set(rec)
	b.Set(rec)

	// Act
	referencing := r.Referencing(rec)
	removed := r.RemoveParent("Shop")

	// Assert
	assert.Equal(t, []*Handler{a, b}, referencing)
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, r.Len())
}

func TestStore_DeleteOnlyRemovesOccupant(t *testing.T) {
	s := NewStore[prefab.Ref](TierAll)
	a := record("a", TierAll, pine)
	b := record("b", TierAll, birch)
	s.Put(oak, a)

	assert.False(t, s.Delete(oak, b))
	assert.Same(t, a, s.Get(oak))
	assert.Same(t, a, s.Put(oak, b))
	assert.True(t, s.Delete(oak, b))
	assert.Zero(t, s.Len())
}

func TestGroupKeyFor_SplitsSlotsByRecords(t *testing.T) {
	original := baseline()
	plain := GroupKeyFor(original, nil)

	h := NewHandler(prefab.BuildingSlot("Shop", 0), original)
	h.Set(record("ind", TierIndividual, pine))
	touched := GroupKeyFor(original, h)

	untouched := GroupKeyFor(original, NewHandler(prefab.BuildingSlot("Shop", 1), original))

	assert.NotEqual(t, plain, touched)
	assert.Equal(t, plain, untouched)
	assert.Equal(t, "ind", touched.Individual)
}
