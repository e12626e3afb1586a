package variation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

func variations(probabilities ...int) []*Variation {
	out := make([]*Variation, len(probabilities))
	for i, p := range probabilities {
		out[i] = &Variation{Prefab: prefab.NewRef(prefab.KindTree, string(rune('A'+i))), Probability: p}
	}
	return out
}

func probabilities(vs []*Variation) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.Probability
	}
	return out
}

func TestRebalance(t *testing.T) {
	tests := []struct {
		name    string
		start   []int
		locked  []int
		changed int
		value   int
		want    []int
	}{
		{"even split of remainder", []int{34, 33, 33}, nil, 0, 50, []int{50, 25, 25}},
		{"clamped so others keep one", []int{34, 33, 33}, nil, 0, 100, []int{98, 1, 1}},
		{"raised to one", []int{34, 33, 33}, nil, 1, 0, []int{50, 1, 49}},
		{"leftover goes to first unlocked", []int{25, 25, 25, 25}, nil, 3, 0, []int{33, 33, 33, 1}},
		{"locked entries reduce the room", []int{60, 20, 20}, []int{0}, 1, 50, []int{60, 39, 1}},
		{"only locked others", []int{30, 30, 40}, []int{0, 1}, 2, 10, []int{30, 30, 40}},
		{"locked entries leave nothing", []int{70, 30, 0, 0}, []int{0, 1}, 2, 20, []int{70, 30, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			vs := variations(tt.start...)
			for _, i := range tt.locked {
				vs[i].Locked = true
			}

			// Act
			err := Rebalance(vs, tt.changed, tt.value)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, probabilities(vs))
		})
	}
}

func TestRebalance_SingleVariationIsAlwaysHundred(t *testing.T) {
	vs := variations(40)

	require.NoError(t, Rebalance(vs, 0, 10))

	assert.Equal(t, []int{100}, probabilities(vs))
}

func TestRebalance_RejectsLockedOrMissingVariation(t *testing.T) {
	vs := variations(50, 50)
	vs[0].Locked = true

	assert.Error(t, Rebalance(vs, 0, 10))
	assert.Error(t, Rebalance(vs, 2, 10))
}

func TestRandom_AddAndRemoveKeepTotal(t *testing.T) {
	// Arrange
	r := &Random{Name: "Mixed Trees", Kind: prefab.KindTree}

	// Act
	require.NoError(t, r.Add(prefab.NewRef(prefab.KindTree, "Oak")))
	require.NoError(t, r.Add(prefab.NewRef(prefab.KindTree, "Pine")))
	require.NoError(t, r.Add(prefab.NewRef(prefab.KindTree, "Birch")))

	// Assert
	assert.Equal(t, 100, r.Total())
	assert.Equal(t, []int{34, 33, 33}, probabilities(r.Variations))

	require.NoError(t, r.Remove(0))
	assert.Equal(t, 100, r.Total())
	assert.Len(t, r.Variations, 2)
}

func TestRandom_AddRejectsOtherKind(t *testing.T) {
	r := &Random{Name: "Mixed Trees", Kind: prefab.KindTree}

	assert.Error(t, r.Add(prefab.NewRef(prefab.KindProp, "Bench")))
}

func TestLibrary_ResolveByKindAndName(t *testing.T) {
	l := NewLibrary()
	require.NoError(t, l.Register(&Random{Name: "Mixed", Kind: prefab.KindTree}))

	_, ok := l.Resolve(prefab.KindTree, "Mixed")
	assert.True(t, ok)
	_, ok = l.Resolve(prefab.KindProp, "Mixed")
	assert.False(t, ok)

	assert.Error(t, l.Register(&Random{Name: "Road", Kind: prefab.KindNetwork}))
}
