package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/configuration"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// populate applies one of everything the document format carries
func populate(t *testing.T, ctx context.Context, e *engine.Engine) {
	t.Helper()
	applyTreeScenario(t, ctx, e)
	_, _, err := e.AddNew(ctx, engine.AddParams{
		ParentKind: prefab.KindBuilding, Parent: "Park", Prefab: lamp, Position: prefab.Vector3{X: 7}, Probability: 100,
	})
	require.NoError(t, err)
	require.NoError(t, e.RegisterPack(pack.NewPack("Lamps", []*replacement.Record{
		{Target: streetlight, Replacement: lamp, Probability: 100},
	})))
	require.NoError(t, e.SetPackStatus(ctx, "Lamps", true))
	_, err = e.ApplyMinScale(ctx, tree02, 1.5)
	require.NoError(t, err)
}

func TestExport_EmptyEngineHasNilSections(t *testing.T) {
	doc := engine.New(newFixture(t)).Export()

	assert.Equal(t, configuration.CurrentVersion, doc.Version)
	assert.Nil(t, doc.Buildings.Individual)
	assert.Nil(t, doc.Networks.All)
	assert.Nil(t, doc.Packs)
	assert.Nil(t, doc.Scales)
}

func TestExportImport_RoundTripOntoFreshHost(t *testing.T) {
	// Arrange
	ctx := context.Background()
	source := newFixture(t)
	e1 := engine.New(source)
	populate(t, ctx, e1)
	doc := e1.Export()

	target := newFixture(t)
	e2 := engine.New(target)

	// Act
	result, err := e2.Import(ctx, doc, engine.ImportOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Packs)
	assert.Equal(t, 1, result.Scales)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Unresolved)

	assert.Equal(t, source.Slots(park, prefab.NoLane), target.Slots(park, prefab.NoLane))
	assert.Equal(t, source.Slots(avenue, 0), target.Slots(avenue, 0))
	assert.True(t, e2.PackApplied("Lamps"))
	min, _, err := target.Scale(tree02)
	require.NoError(t, err)
	assert.Equal(t, 1.5, min)
	assert.Equal(t, doc.RecordCount(), e2.Export().RecordCount())
}

func TestImport_LiveAppliedRecoversBaselines(t *testing.T) {
	// Arrange: a host whose live data already renders the document
	ctx := context.Background()
	h := newFixture(t)
	e1 := engine.New(h)
	populate(t, ctx, e1)
	doc := e1.Export()
	live := h.Slots(park, prefab.NoLane)

	e2 := engine.New(h)

	// Act
	_, err := e2.Import(ctx, doc, engine.ImportOptions{LiveApplied: true})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, live, h.Slots(park, prefab.NoLane))
	for i := 0; i < 3; i++ {
		original, err := e2.Original(ctx, prefab.BuildingSlot("Park", i))
		require.NoError(t, err)
		assert.Equal(t, tree01, original.Prefab)
		assert.Zero(t, original.Angle)
	}
	assert.True(t, e2.IsAdded(prefab.KindBuilding, "Park", prefab.NoLane, 4))

	// Reset must now restore the true originals
	require.NoError(t, e2.Reset(ctx))
	assert.Equal(t, []prefab.SlotState{slot(tree01, 1), slot(tree01, 2), slot(tree01, 3), slot(bench, 4)}, h.Slots(park, prefab.NoLane))
	assert.Equal(t, streetlight, h.Slots(avenue, 0)[0].Prefab)
}

func TestImport_KeepsUnresolvedAndMissingSlotRecords(t *testing.T) {
	// Arrange
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	doc := configuration.New()
	doc.Buildings.All = []configuration.RecordDef{
		{ID: "all-1", Target: "Tree01", Replacement: "Tree99", IsTree: true, Probability: 100},
	}
	doc.Buildings.Individual = []configuration.ParentRecords{{
		Parent:  "Park",
		Records: []configuration.RecordDef{{ID: "ind-1", Target: "Tree01", Replacement: "Tree02", IsTree: true, Slot: 12, Probability: 100}},
	}}

	// Act
	result, err := e.Import(ctx, doc, engine.ImportOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"Tree99"}, result.Unresolved)
	assert.NotNil(t, e.FindRecord(prefab.KindBuilding, "all-1"))
	assert.NotNil(t, e.FindRecord(prefab.KindBuilding, "ind-1"))
	assert.Equal(t, tree01, h.Slots(park, prefab.NoLane)[0].Prefab)
	assert.Equal(t, 2, e.Export().RecordCount())
}

func TestImport_DuplicateRecordsKeepFirst(t *testing.T) {
	ctx := context.Background()
	h := newFixture(t)
	e := engine.New(h)
	doc := configuration.New()
	doc.Buildings.All = []configuration.RecordDef{
		{ID: "a", Target: "Tree01", Replacement: "Tree02", IsTree: true, Probability: 100},
		{ID: "b", Target: "Tree01", Replacement: "Tree03", IsTree: true, Probability: 100},
	}

	result, err := e.Import(ctx, doc, engine.ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, tree02, h.Slots(park, prefab.NoLane)[0].Prefab)
}

func TestImport_RequiresDocument(t *testing.T) {
	_, err := engine.New(newFixture(t)).Import(context.Background(), nil, engine.ImportOptions{})

	assert.Error(t, err)
}
