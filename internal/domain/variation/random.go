package variation

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// Variation is one weighted choice of a random prefab
type Variation struct {
	Prefab      prefab.Ref
	Probability int
	Locked      bool

	// Unresolved is set when Prefab did not resolve at load time
	Unresolved bool
}

// Random is a user-defined prefab that renders one of its variations,
// chosen by probability. It can be used as a replacement like any prefab.
type Random struct {
	Name       string
	Kind       prefab.Kind
	Variations []*Variation
}

// Ref returns the prefab reference replacement records use for this random
func (r *Random) Ref() prefab.Ref {
	return prefab.NewRef(r.Kind, r.Name)
}

// Total returns the sum of variation probabilities
func (r *Random) Total() int {
	total := 0
	for _, v := range r.Variations {
		total += v.Probability
	}
	return total
}

// Add appends a variation and rebalances so the total stays at 100
func (r *Random) Add(p prefab.Ref) error {
	if p.Kind != r.Kind {
		return shared.NewValidationError("variation", fmt.Sprintf("%s cannot vary a %s random", p, r.Kind))
	}
	r.Variations = append(r.Variations, &Variation{Prefab: p})
	return Rebalance(r.Variations, len(r.Variations)-1, 100/len(r.Variations))
}

// Remove drops variation index and rebalances the remaining ones evenly
func (r *Random) Remove(index int) error {
	if index < 0 || index >= len(r.Variations) {
		return shared.NewValidationError("variation", fmt.Sprintf("no variation %d", index))
	}
	r.Variations = append(r.Variations[:index], r.Variations[index+1:]...)
	if len(r.Variations) == 0 {
		return nil
	}
	unlocked := -1
	for i, v := range r.Variations {
		if !v.Locked {
			unlocked = i
			break
		}
	}
	if unlocked < 0 {
		r.Variations[0].Locked = false
		unlocked = 0
	}
	return Rebalance(r.Variations, unlocked, r.Variations[unlocked].Probability)
}

// Rebalance sets variation changed to value and redistributes the remainder
// so the probabilities sum to 100.
//
// Policy ("last changed wins"):
//   - a single variation is always 100
//   - changed is clamped to [1, 100 - sum(locked) - (unlocked others)] so every
//     other unlocked variation keeps at least 1; when locked entries leave no
//     room the bound drops to what remains (possibly 0)
//   - with no other unlocked variation, changed takes whatever locked entries leave
//   - the remainder is split evenly among the other unlocked variations, each
//     floor-divided, leftover units going to the first unlocked entries in order
func Rebalance(variations []*Variation, changed, value int) error {
	if changed < 0 || changed >= len(variations) {
		return shared.NewValidationError("variation", fmt.Sprintf("no variation %d", changed))
	}
	if variations[changed].Locked {
		return shared.NewValidationError("variation", fmt.Sprintf("variation %d is locked", changed))
	}
	if len(variations) == 1 {
		variations[0].Probability = 100
		return nil
	}

	locked := 0
	others := make([]*Variation, 0, len(variations)-1)
	for i, v := range variations {
		if i == changed {
			continue
		}
		if v.Locked {
			locked += v.Probability
		} else {
			others = append(others, v)
		}
	}

	available := 100 - locked
	if available < 0 {
		available = 0
	}
	if len(others) == 0 {
		variations[changed].Probability = available
		return nil
	}

	upper := available - len(others)
	if upper < 0 {
		upper = 0
	}
	lower := 1
	if upper < lower {
		lower = upper
	}
	switch {
	case value < lower:
		value = lower
	case value > upper:
		value = upper
	}
	variations[changed].Probability = value

	remainder := available - value
	share := remainder / len(others)
	leftover := remainder % len(others)
	for i, v := range others {
		v.Probability = share
		if i < leftover {
			v.Probability++
		}
	}
	return nil
}

// Library holds the random prefabs defined by the user
type Library struct {
	randoms map[prefab.Ref]*Random
}

// NewLibrary creates an empty random prefab library
func NewLibrary() *Library {
	return &Library{randoms: make(map[prefab.Ref]*Random)}
}

// Register adds or replaces a random prefab definition
func (l *Library) Register(r *Random) error {
	if r.Name == "" {
		return shared.NewValidationError("name", "random prefab name is required")
	}
	if !r.Kind.IsContent() {
		return shared.NewValidationError("kind", fmt.Sprintf("random prefabs must be trees or props, got %s", r.Kind))
	}
	l.randoms[r.Ref()] = r
	return nil
}

// Resolve returns the random prefab called name of kind
func (l *Library) Resolve(kind prefab.Kind, name string) (*Random, bool) {
	r, ok := l.randoms[prefab.NewRef(kind, name)]
	return r, ok
}

// Randoms returns every random prefab ordered by kind and name
func (l *Library) Randoms() []*Random {
	out := make([]*Random, 0, len(l.randoms))
	for _, r := range l.randoms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}
