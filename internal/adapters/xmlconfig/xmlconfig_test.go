package xmlconfig

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/configuration"
)

func sampleDocument() *configuration.Document {
	doc := configuration.New()
	doc.Buildings.Individual = []configuration.ParentRecords{{
		Parent: "Corner Shop",
		Records: []configuration.RecordDef{{
			ID: "individual-1", Target: "Oak", Replacement: "Pine", IsTree: true,
			Lane: -1, Slot: 2, Angle: 30, OffsetY: 1.25, Probability: 80, CustomHeight: true,
		}},
	}}
	doc.Networks.All = []configuration.RecordDef{{
		ID: "all-1", Target: "Streetlight", Replacement: "Lamp", Lane: -1, Slot: -1, Probability: 100, RepeatDistance: 8,
	}}
	doc.Networks.Added = []configuration.ParentRecords{{
		Parent:  "Two-Lane Road",
		Records: []configuration.RecordDef{{ID: "added-1", Target: "Bin", Replacement: "Bin", Lane: 1, Slot: 3, Probability: 100}},
	}}
	doc.Packs = []configuration.PackDef{{Name: "Lamps", Applied: true, Records: []configuration.RecordDef{
		{Target: "Streetlight", Replacement: "Lamp", Lane: -1, Slot: -1, Probability: 100},
	}}}
	doc.Scales = []configuration.ScaleDef{{Prefab: "Oak", IsTree: true, Min: 0.5, Max: 1.5}}
	doc.Randoms = []configuration.RandomDef{{Name: "Mixed", IsTree: true, Variations: []configuration.VariationDef{
		{Prefab: "Oak", Probability: 70, Locked: true},
		{Prefab: "Pine", Probability: 30},
	}}}
	return doc
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// Arrange
	doc := sampleDocument()
	var buf bytes.Buffer

	// Act
	require.NoError(t, Encode(&buf, doc))
	decoded, err := Decode(bytes.NewReader(buf.Bytes()))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))
	assert.Contains(t, buf.String(), `<BOBConfig version="1">`)
	assert.Contains(t, buf.String(), `<Parent name="Corner Shop">`)
}

func TestEncodeDecode_EmptyDocumentKeepsNilSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, configuration.New()))

	decoded, err := Decode(&buf)

	require.NoError(t, err)
	assert.Equal(t, configuration.New(), decoded)
}

func TestDecode_RejectsMalformedInput(t *testing.T) {
	_, err := Decode(strings.NewReader("<BOBConfig"))

	assert.Error(t, err)
}

func TestFileRepository_SaveLoadListDelete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "profiles")
	repo := NewFileRepository(dir)

	// Act
	require.NoError(t, repo.Save(ctx, "default", sampleDocument()))
	require.NoError(t, repo.Save(ctx, "alt", configuration.New()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	// Assert
	loaded, err := repo.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), loaded)

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "default"}, names)

	require.NoError(t, repo.Delete(ctx, "alt"))
	_, err = repo.Load(ctx, "alt")
	assert.True(t, errors.Is(err, configuration.ErrProfileNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, "alt"), configuration.ErrProfileNotFound))
}

func TestFileRepository_ListMissingDirectory(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing"))

	names, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, names)
}
