package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/adapters/host"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

var (
	tree01      = prefab.NewRef(prefab.KindTree, "Tree01")
	tree02      = prefab.NewRef(prefab.KindTree, "Tree02")
	tree03      = prefab.NewRef(prefab.KindTree, "Tree03")
	bench       = prefab.NewRef(prefab.KindProp, "Bench")
	streetlight = prefab.NewRef(prefab.KindProp, "Streetlight")
	lamp        = prefab.NewRef(prefab.KindProp, "Lamp")
	lantern     = prefab.NewRef(prefab.KindProp, "Lantern")

	park   = prefab.NewRef(prefab.KindBuilding, "Park")
	avenue = prefab.NewRef(prefab.KindNetwork, "Avenue")
)

func slot(p prefab.Ref, x float64) prefab.SlotState {
	return prefab.SlotState{Prefab: p, Position: prefab.Vector3{X: x}, Probability: 100}
}

// newFixture loads a park building with three Tree01 slots and a bench, and
// a two-lane avenue lined with streetlights
func newFixture(t *testing.T) *host.MemoryHost {
	t.Helper()
	h := host.NewMemoryHost()
	for _, ref := range []prefab.Ref{tree01, tree02, tree03, bench, streetlight, lamp, lantern} {
		h.AddContent(ref, 1, 1)
	}
	h.AddBuilding("Park", slot(tree01, 1), slot(tree01, 2), slot(tree01, 3), slot(bench, 4))
	h.AddNetwork("Avenue",
		[]prefab.SlotState{slot(streetlight, 0), slot(tree01, 5)},
		[]prefab.SlotState{slot(streetlight, 0)},
	)
	return h
}

func applyTreeScenario(t *testing.T, ctx context.Context, e *engine.Engine) (*replacement.Record, *replacement.Record) {
	t.Helper()
	all, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierAll,
		ParentKind:  prefab.KindBuilding,
		Target:      tree01,
		Replacement: tree02,
		Probability: 80,
		Angle:       15,
	})
	require.NoError(t, err)
	individual, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierIndividual,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Park",
		Lane:        prefab.NoLane,
		Slot:        1,
		Replacement: tree03,
		Probability: 100,
	})
	require.NoError(t, err)
	return all, individual
}

func assertSlot(t *testing.T, state prefab.SlotState, p prefab.Ref, probability int, angle float64) {
	t.Helper()
	assert.Equal(t, p, state.Prefab)
	assert.Equal(t, probability, state.Probability)
	assert.Equal(t, angle, state.Angle)
}

func TestReplace_IndividualOverridesAllAndFallsBack(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)

	// Act
	_, individual := applyTreeScenario(t, ctx, e)

	// Assert
	slots := h.Slots(park, prefab.NoLane)
	assertSlot(t, slots[0], tree02, 80, 15)
	assertSlot(t, slots[1], tree03, 100, 0)
	assertSlot(t, slots[2], tree02, 80, 15)
	assertSlot(t, slots[3], bench, 100, 0)
	assert.Equal(t, tree01, individual.Target)

	// Act: removing the individual record falls back to the All tier
	require.NoError(t, e.RemoveReplacement(ctx, individual))

	// Assert
	assertSlot(t, h.Slots(park, prefab.NoLane)[1], tree02, 80, 15)
	original, err := e.Original(ctx, prefab.BuildingSlot("Park", 1))
	require.NoError(t, err)
	assert.Equal(t, tree01, original.Prefab)
}

func TestReplace_AllTierIsScopedToParentKind(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)

	applyTreeScenario(t, ctx, e)

	assert.Equal(t, tree01, h.Slots(avenue, 0)[1].Prefab)
}

func TestReplace_RemovingEveryTierRestoresBaseline(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	all, individual := applyTreeScenario(t, ctx, e)
	grouped, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierGrouped,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Park",
		Target:      tree01,
		Replacement: tree03,
		Probability: 50,
		Offset:      prefab.Vector3{Y: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, h.Slots(park, prefab.NoLane)[0].Position.Y)

	// Act
	require.NoError(t, e.RemoveReplacement(ctx, grouped))
	require.NoError(t, e.RemoveReplacement(ctx, individual))
	require.NoError(t, e.RemoveReplacement(ctx, all))

	// Assert
	for i, state := range h.Slots(park, prefab.NoLane)[:3] {
		assert.Equal(t, slot(tree01, float64(i+1)), state)
	}
	assert.Empty(t, e.ActiveReplacements(prefab.BuildingSlot("Park", 0)))
}

func TestReplace_DuplicateKeyEditsInPlace(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	params := engine.ReplaceParams{
		Tier:        replacement.TierGrouped,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Park",
		Target:      tree01,
		Replacement: tree02,
		Probability: 100,
	}
	first, err := e.Replace(ctx, params)
	require.NoError(t, err)

	// Act
	params.Replacement = tree03
	second, err := e.Replace(ctx, params)

	// Assert
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, e.Records(prefab.KindBuilding, replacement.TierGrouped), 1)
	assert.Equal(t, tree03, h.Slots(park, prefab.NoLane)[2].Prefab)
}

func TestReplace_RepeatedEditIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	params := engine.ReplaceParams{
		Tier:        replacement.TierAll,
		ParentKind:  prefab.KindBuilding,
		Target:      tree01,
		Replacement: tree02,
		Probability: 70,
		Angle:       30,
	}
	rec, err := e.Replace(ctx, params)
	require.NoError(t, err)
	before := h.Slots(park, prefab.NoLane)

	params.Existing = rec
	_, err = e.Replace(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, before, h.Slots(park, prefab.NoLane))
}

func TestReplace_MoveOntoActiveKeyIsRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	individual := func(slot int, p prefab.Ref) engine.ReplaceParams {
		return engine.ReplaceParams{
			Tier: replacement.TierIndividual, ParentKind: prefab.KindBuilding, Parent: "Park", Lane: prefab.NoLane, Slot: slot,
			Replacement: p, Probability: 100,
		}
	}
	first, err := e.Replace(ctx, individual(0, tree02))
	require.NoError(t, err)
	second, err := e.Replace(ctx, individual(2, tree03))
	require.NoError(t, err)

	// Act
	params := individual(2, tree02)
	params.Existing = first
	moved, err := e.Replace(ctx, params)

	// Assert
	require.Error(t, err)
	assert.Nil(t, moved)
	var dup *shared.DuplicateActiveRecordError
	assert.True(t, errors.As(err, &dup))
	records := e.Records(prefab.KindBuilding, replacement.TierIndividual)
	assert.Len(t, records, 2)
	assert.Contains(t, records, first)
	assert.Contains(t, records, second)
	slots := h.Slots(park, prefab.NoLane)
	assert.Equal(t, tree02, slots[0].Prefab)
	assert.Equal(t, tree03, slots[2].Prefab)
}

func TestReplace_InvalidSlotReference(t *testing.T) {
	ctx := context.Background()
	e := engine.New(newFixture(t))

	_, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierIndividual,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Park",
		Lane:        prefab.NoLane,
		Slot:        9,
		Replacement: tree02,
		Probability: 100,
	})

	var invalid *shared.InvalidSlotReferenceError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 4, invalid.Count)
	assert.Zero(t, e.HandlerCount(prefab.KindBuilding))
}

func TestReplace_RejectsPackTierAndMismatchedKinds(t *testing.T) {
	ctx := context.Background()
	e := engine.New(newFixture(t))

	_, err := e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierPack, ParentKind: prefab.KindNetwork, Target: streetlight, Replacement: lamp, Probability: 100,
	})
	assert.Error(t, err)

	_, err = e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierAll, ParentKind: prefab.KindBuilding, Target: tree01, Replacement: bench, Probability: 100,
	})
	assert.Error(t, err)

	_, err = e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierAll, ParentKind: prefab.KindBuilding, Target: tree01, Replacement: tree02, Probability: 150,
	})
	var validation *shared.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestReplace_UnresolvedRecordStaysInertUntilReresolve(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	tree09 := prefab.NewRef(prefab.KindTree, "Tree09")

	// Act
	rec, err := e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierAll, ParentKind: prefab.KindBuilding, Target: tree01, Replacement: tree09, Probability: 100,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, rec.Unresolved)
	assert.Equal(t, tree01, h.Slots(park, prefab.NoLane)[0].Prefab)

	// Act: the asset finishes loading
	h.AddContent(tree09, 1, 1)
	resolved := e.Reresolve(ctx)

	// Assert
	assert.Equal(t, 1, resolved)
	assert.False(t, rec.Unresolved)
	assert.Equal(t, tree09, h.Slots(park, prefab.NoLane)[0].Prefab)
}

func TestPreview_IsReversibleAndNeverStored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	handler, err := e.GetOrAddHandler(ctx, prefab.BuildingSlot("Park", 0))
	require.NoError(t, err)
	candidate := engine.NewCandidate(engine.ReplaceParams{
		Tier: replacement.TierIndividual, ParentKind: prefab.KindBuilding, Parent: "Park", Lane: prefab.NoLane, Slot: 0,
		Target: tree01, Replacement: tree03, Probability: 100,
	})

	// Act
	require.NoError(t, e.PreviewReplacement(ctx, handler, candidate))

	// Assert
	assert.Equal(t, tree03, h.Slots(park, prefab.NoLane)[0].Prefab)
	assert.Zero(t, e.Export().RecordCount())
	assert.Empty(t, e.Records(prefab.KindBuilding, replacement.TierIndividual))

	// Act
	require.NoError(t, e.ClearAllPreviews(ctx))

	// Assert
	assert.Equal(t, slot(tree01, 1), h.Slots(park, prefab.NoLane)[0])
	assert.False(t, handler.IsPreviewing())
}

func TestPreview_OverCommittedRecordRestoresCommittedState(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	applyTreeScenario(t, ctx, e)
	handler, err := e.GetOrAddHandler(ctx, prefab.BuildingSlot("Park", 2))
	require.NoError(t, err)
	before := h.Slots(park, prefab.NoLane)[2]
	candidate := engine.NewCandidate(engine.ReplaceParams{
		Tier: replacement.TierIndividual, ParentKind: prefab.KindBuilding, Parent: "Park", Lane: prefab.NoLane, Slot: 2,
		Target: tree01, Replacement: tree03, Probability: 40, Angle: 90,
	})
	require.NoError(t, e.PreviewReplacement(ctx, handler, candidate))
	assertSlot(t, h.Slots(park, prefab.NoLane)[2], tree03, 40, 90)

	// Act
	require.NoError(t, e.ClearPreview(ctx, handler))

	// Assert
	assert.Equal(t, before, h.Slots(park, prefab.NoLane)[2])
	assertSlot(t, before, tree02, 80, 15)
	assert.False(t, handler.IsPreviewing())
	assert.Equal(t, 2, e.Export().RecordCount())
}

func TestPreview_ReplaceOnPreviewedSlotEndsPreview(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	handler, err := e.GetOrAddHandler(ctx, prefab.BuildingSlot("Park", 2))
	require.NoError(t, err)
	candidate := engine.NewCandidate(engine.ReplaceParams{
		Tier: replacement.TierIndividual, ParentKind: prefab.KindBuilding, Parent: "Park", Lane: prefab.NoLane, Slot: 2,
		Target: tree01, Replacement: tree03, Probability: 100,
	})
	require.NoError(t, e.PreviewReplacement(ctx, handler, candidate))

	// Act
	applyTreeScenario(t, ctx, e)

	// Assert
	assert.False(t, handler.IsPreviewing())
	assertSlot(t, h.Slots(park, prefab.NoLane)[2], tree02, 80, 15)

	// Act: nothing is left to restore
	require.NoError(t, e.ClearAllPreviews(ctx))

	// Assert
	assertSlot(t, h.Slots(park, prefab.NoLane)[2], tree02, 80, 15)
}

func TestGroups_BucketsSlotsByOriginalAndRecords(t *testing.T) {
	ctx := context.Background()
	e := engine.New(newFixture(t))
	_, individual := applyTreeScenario(t, ctx, e)

	groups, err := e.Groups(ctx, prefab.KindBuilding, "Park")

	require.NoError(t, err)
	assert.Len(t, groups, 3)
	for key, refs := range groups {
		switch {
		case key.Original == bench:
			assert.Len(t, refs, 1)
		case key.Individual == individual.ID:
			assert.Equal(t, []prefab.InstanceRef{prefab.BuildingSlot("Park", 1)}, refs)
		default:
			assert.Len(t, refs, 2)
		}
	}
}

func TestAddedProps_RenumberOnRemoval(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	indices := make([]int, 0, 3)
	for _, p := range []prefab.Ref{bench, lamp, lantern} {
		_, index, err := e.AddNew(ctx, engine.AddParams{
			ParentKind: prefab.KindBuilding, Parent: "Park", Prefab: p, Probability: 100,
		})
		require.NoError(t, err)
		indices = append(indices, index)
	}
	assert.Equal(t, []int{4, 5, 6}, indices)

	// Act
	require.NoError(t, e.RemoveNew(ctx, prefab.KindBuilding, "Park", prefab.NoLane, 5))

	// Assert
	slots := h.Slots(park, prefab.NoLane)
	require.Len(t, slots, 6)
	assert.Equal(t, lantern, slots[5].Prefab)
	assert.True(t, e.IsAdded(prefab.KindBuilding, "Park", prefab.NoLane, 5))
	assert.False(t, e.IsAdded(prefab.KindBuilding, "Park", prefab.NoLane, 6))

	err := e.RemoveNew(ctx, prefab.KindBuilding, "Park", prefab.NoLane, 2)
	var addedErr *shared.AddedSlotError
	assert.True(t, errors.As(err, &addedErr))
}

func TestAddedProps_RejectTierReplacements(t *testing.T) {
	ctx := context.Background()
	e := engine.New(newFixture(t))
	_, index, err := e.AddNew(ctx, engine.AddParams{
		ParentKind: prefab.KindNetwork, Parent: "Avenue", Lane: 1, Prefab: bench, Probability: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	_, err = e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierIndividual, ParentKind: prefab.KindNetwork, Parent: "Avenue", Lane: 1, Slot: index,
		Target: bench, Replacement: lamp, Probability: 100,
	})

	var addedErr *shared.AddedSlotError
	assert.True(t, errors.As(err, &addedErr))
}

func TestAddedProps_UpdateAndPending(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	fountain := prefab.NewRef(prefab.KindProp, "Fountain")

	// Act: an unloaded prefab stays pending
	rec, index, err := e.AddNew(ctx, engine.AddParams{
		ParentKind: prefab.KindBuilding, Parent: "Park", Prefab: fountain, Probability: 100,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, -1, index)
	assert.True(t, rec.Unresolved)
	assert.Len(t, h.Slots(park, prefab.NoLane), 4)

	// Act
	h.AddContent(fountain, 1, 1)
	assert.Equal(t, 1, e.Reresolve(ctx))
	require.NoError(t, e.UpdateAdded(ctx, engine.UpdateAddedParams{
		ParentKind: prefab.KindBuilding, Parent: "Park", Index: 4, Prefab: lamp,
		Position: prefab.Vector3{X: 9}, Probability: 60,
	}))

	// Assert
	added := h.Slots(park, prefab.NoLane)[4]
	assert.Equal(t, lamp, added.Prefab)
	assert.Equal(t, 9.0, added.Position.X)
	assert.Equal(t, 60, added.Probability)
}

func TestPacks_LastAppliedWinsAndFallbackOnRevert(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	require.NoError(t, e.RegisterPack(pack.NewPack("Lamps", []*replacement.Record{
		{Target: streetlight, Replacement: lamp, Probability: 100},
	})))
	require.NoError(t, e.RegisterPack(pack.NewPack("Lanterns", []*replacement.Record{
		{Target: streetlight, Replacement: lantern, Probability: 100},
	})))

	// Act & Assert
	require.NoError(t, e.SetPackStatus(ctx, "Lamps", true))
	assert.Equal(t, lamp, h.Slots(avenue, 0)[0].Prefab)
	assert.Equal(t, lamp, h.Slots(avenue, 1)[0].Prefab)
	assert.True(t, e.Conflicts("Lanterns"))

	require.NoError(t, e.SetPackStatus(ctx, "Lanterns", true))
	assert.Equal(t, lantern, h.Slots(avenue, 0)[0].Prefab)

	require.NoError(t, e.SetPackStatus(ctx, "Lanterns", false))
	assert.Equal(t, lamp, h.Slots(avenue, 0)[0].Prefab)
	assert.True(t, e.PackApplied("Lamps"))

	require.NoError(t, e.SetPackStatus(ctx, "Lamps", false))
	assert.Equal(t, streetlight, h.Slots(avenue, 0)[0].Prefab)
	assert.Empty(t, e.Records(prefab.KindNetwork, replacement.TierPack))
}

func TestPacks_IndividualOverridesPack(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	require.NoError(t, e.RegisterPack(pack.NewPack("Lamps", []*replacement.Record{
		{Target: streetlight, Replacement: lamp, Probability: 100},
	})))
	require.NoError(t, e.SetPackStatus(ctx, "Lamps", true))

	_, err := e.Replace(ctx, engine.ReplaceParams{
		Tier: replacement.TierIndividual, ParentKind: prefab.KindNetwork, Parent: "Avenue", Lane: 1, Slot: 0,
		Replacement: lantern, Probability: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, lamp, h.Slots(avenue, 0)[0].Prefab)
	assert.Equal(t, lantern, h.Slots(avenue, 1)[0].Prefab)

	require.NoError(t, e.SetPackStatus(ctx, "Lamps", false))
	assert.Equal(t, lantern, h.Slots(avenue, 1)[0].Prefab)
	assert.Equal(t, streetlight, h.Slots(avenue, 0)[0].Prefab)
}

func TestPacks_UnknownPack(t *testing.T) {
	e := engine.New(newFixture(t))

	err := e.SetPackStatus(context.Background(), "Missing", true)

	var unknown *shared.UnknownPackError
	assert.True(t, errors.As(err, &unknown))
}

func TestReset_RestoresEverything(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	applyTreeScenario(t, ctx, e)
	_, _, err := e.AddNew(ctx, engine.AddParams{ParentKind: prefab.KindBuilding, Parent: "Park", Prefab: lamp, Probability: 100})
	require.NoError(t, err)
	_, err = e.ApplyMaxScale(ctx, tree01, 2)
	require.NoError(t, err)

	// Act
	require.NoError(t, e.Reset(ctx))

	// Assert
	assert.Equal(t, []prefab.SlotState{slot(tree01, 1), slot(tree01, 2), slot(tree01, 3), slot(bench, 4)}, h.Slots(park, prefab.NoLane))
	min, max, err := h.Scale(tree01)
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 1.0, max)
	assert.Zero(t, e.HandlerCount(prefab.KindBuilding))
	assert.Zero(t, e.Export().RecordCount())
}

func TestInvalidateParent_KeepsRecords(t *testing.T) {
	ctx := context.Background()
	e := engine.New(newFixture(t))
	applyTreeScenario(t, ctx, e)

	dropped := e.InvalidateParent(ctx, park)

	assert.Equal(t, 3, dropped)
	assert.Zero(t, e.HandlerCount(prefab.KindBuilding))
	assert.Len(t, e.Records(prefab.KindBuilding, replacement.TierAll), 1)
}

func TestInvalidateParent_RemovingRecordThenResetRestoresBaseline(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	all, _ := applyTreeScenario(t, ctx, e)
	e.InvalidateParent(ctx, park)

	// Act
	require.NoError(t, e.RemoveReplacement(ctx, all))

	// Assert
	slots := h.Slots(park, prefab.NoLane)
	assertSlot(t, slots[0], tree01, 100, 0)
	assertSlot(t, slots[1], tree03, 100, 0)
	assertSlot(t, slots[2], tree01, 100, 0)

	// Act
	require.NoError(t, e.Reset(ctx))

	// Assert
	assert.Equal(t, []prefab.SlotState{slot(tree01, 1), slot(tree01, 2), slot(tree01, 3), slot(bench, 4)}, h.Slots(park, prefab.NoLane))
}

func TestInvalidateParent_ResetRevertsUntouchedSlots(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	applyTreeScenario(t, ctx, e)
	e.InvalidateParent(ctx, park)

	require.NoError(t, e.Reset(ctx))

	assert.Equal(t, []prefab.SlotState{slot(tree01, 1), slot(tree01, 2), slot(tree01, 3), slot(bench, 4)}, h.Slots(park, prefab.NoLane))
}

func TestReplace_ParentLoadedLaterFallsBackToAllTier(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	_, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierAll,
		ParentKind:  prefab.KindBuilding,
		Target:      tree01,
		Replacement: tree02,
		Probability: 80,
		Angle:       15,
	})
	require.NoError(t, err)
	garden := prefab.NewRef(prefab.KindBuilding, "Garden")
	h.AddBuilding("Garden", slot(tree01, 7))
	individual, err := e.Replace(ctx, engine.ReplaceParams{
		Tier:        replacement.TierIndividual,
		ParentKind:  prefab.KindBuilding,
		Parent:      "Garden",
		Lane:        prefab.NoLane,
		Slot:        0,
		Replacement: tree03,
		Probability: 100,
	})
	require.NoError(t, err)
	assertSlot(t, h.Slots(garden, prefab.NoLane)[0], tree03, 100, 0)

	// Act
	require.NoError(t, e.RemoveReplacement(ctx, individual))

	// Assert
	assertSlot(t, h.Slots(garden, prefab.NoLane)[0], tree02, 80, 15)
	handler := e.GetHandler(prefab.BuildingSlot("Garden", 0))
	require.NotNil(t, handler)
	assert.Equal(t, slot(tree01, 7), handler.Original())
}

func TestGetOrAddHandler_RendersRecordsStoredBeforeParentLoaded(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	all, _ := applyTreeScenario(t, ctx, e)
	garden := prefab.NewRef(prefab.KindBuilding, "Garden")
	h.AddBuilding("Garden", slot(tree01, 7))

	handler, err := e.GetOrAddHandler(ctx, prefab.BuildingSlot("Garden", 0))

	require.NoError(t, err)
	assert.Same(t, all, handler.Effective())
	assertSlot(t, h.Slots(garden, prefab.NoLane)[0], tree02, 80, 15)
}
