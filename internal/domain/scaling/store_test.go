package scaling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

type fakeScaleSource struct {
	ranges map[prefab.Ref][2]float64
	writes int
}

func newFakeScaleSource() *fakeScaleSource {
	return &fakeScaleSource{ranges: map[prefab.Ref][2]float64{
		prefab.NewRef(prefab.KindTree, "Oak"):  {0.8, 1.2},
		prefab.NewRef(prefab.KindProp, "Lamp"): {1, 1},
	}}
}

func (f *fakeScaleSource) Scale(p prefab.Ref) (float64, float64, error) {
	r, ok := f.ranges[p]
	if !ok {
		return 0, 0, fmt.Errorf("%s not loaded", p)
	}
	return r[0], r[1], nil
}

func (f *fakeScaleSource) SetScale(p prefab.Ref, min, max float64) error {
	f.ranges[p] = [2]float64{min, max}
	f.writes++
	return nil
}

var oak = prefab.NewRef(prefab.KindTree, "Oak")

func TestStore_ApplyMinRaisesMax(t *testing.T) {
	// Arrange
	source := newFakeScaleSource()
	s := NewStore(source)

	// Act
	o, err := s.ApplyMin(oak, 1.5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1.5, o.Min)
	assert.Equal(t, 1.5, o.Max)
	assert.Equal(t, 0.8, o.OriginalMin)
	assert.Equal(t, 1.2, o.OriginalMax)
	assert.Equal(t, [2]float64{1.5, 1.5}, source.ranges[oak])
}

func TestStore_ApplyMaxLowersMin(t *testing.T) {
	s := NewStore(newFakeScaleSource())

	o, err := s.ApplyMax(oak, 0.5)

	require.NoError(t, err)
	assert.Equal(t, 0.5, o.Min)
	assert.Equal(t, 0.5, o.Max)
}

func TestStore_RevertKeepsOrDropsEntry(t *testing.T) {
	// Arrange
	source := newFakeScaleSource()
	s := NewStore(source)
	_, err := s.ApplyMax(oak, 2)
	require.NoError(t, err)

	// Act & Assert: keep the entry
	require.NoError(t, s.Revert(oak, false))
	assert.Equal(t, [2]float64{0.8, 1.2}, source.ranges[oak])
	require.NotNil(t, s.Get(oak))
	assert.Empty(t, s.Modified())

	// Act & Assert: drop the entry
	require.NoError(t, s.Revert(oak, true))
	assert.Nil(t, s.Get(oak))
}

func TestStore_BaselineCapturedOnce(t *testing.T) {
	s := NewStore(newFakeScaleSource())
	_, err := s.ApplyMin(oak, 1)
	require.NoError(t, err)

	o, err := s.ApplyMax(oak, 3)

	require.NoError(t, err)
	assert.Equal(t, 0.8, o.OriginalMin)
	assert.Equal(t, 1.2, o.OriginalMax)
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	s := NewStore(newFakeScaleSource())

	_, err := s.ApplyMin(oak, 0)
	assert.Error(t, err)

	_, err = s.ApplyMin(prefab.NewRef(prefab.KindBuilding, "Shop"), 1)
	assert.Error(t, err)

	_, err = s.Set(oak, 2, 1)
	assert.Error(t, err)

	_, err = s.ApplyMin(prefab.NewRef(prefab.KindTree, "Missing"), 1)
	assert.Error(t, err)
}

func TestStore_RevertAllEmptiesStore(t *testing.T) {
	source := newFakeScaleSource()
	s := NewStore(source)
	lamp := prefab.NewRef(prefab.KindProp, "Lamp")
	_, _ = s.ApplyMin(oak, 1)
	_, _ = s.Set(lamp, 2, 3)

	require.NoError(t, s.RevertAll())

	assert.Empty(t, s.Overrides())
	assert.Equal(t, [2]float64{1, 1}, source.ranges[lamp])
}
