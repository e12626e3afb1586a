package scaling

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// Override is a per-prefab scale range replacing the prefab's own range.
// OriginalMin/OriginalMax are captured the first time the prefab is touched.
type Override struct {
	Prefab      prefab.Ref
	Min         float64
	Max         float64
	OriginalMin float64
	OriginalMax float64
}

// Store applies scale overrides directly to tree/prop prefabs. There is no
// tiering: the last applied value wins.
type Store struct {
	source    prefab.ScaleSource
	overrides map[prefab.Ref]*Override
}

// NewStore creates a scaling store writing through source
func NewStore(source prefab.ScaleSource) *Store {
	return &Store{source: source, overrides: make(map[prefab.Ref]*Override)}
}

// ApplyMin sets the minimum scale of p
func (s *Store) ApplyMin(p prefab.Ref, value float64) (*Override, error) {
	o, err := s.touch(p, value)
	if err != nil {
		return nil, err
	}
	o.Min = value
	if o.Max < o.Min {
		o.Max = o.Min
	}
	return o, s.source.SetScale(p, o.Min, o.Max)
}

// ApplyMax sets the maximum scale of p
func (s *Store) ApplyMax(p prefab.Ref, value float64) (*Override, error) {
	o, err := s.touch(p, value)
	if err != nil {
		return nil, err
	}
	o.Max = value
	if o.Min > o.Max {
		o.Min = o.Max
	}
	return o, s.source.SetScale(p, o.Min, o.Max)
}

// Set installs a complete override, as when loading configuration
func (s *Store) Set(p prefab.Ref, min, max float64) (*Override, error) {
	o, err := s.touch(p, min)
	if err != nil {
		return nil, err
	}
	if max < min {
		return nil, shared.NewValidationError("max", fmt.Sprintf("max scale %.2f is below min scale %.2f", max, min))
	}
	o.Min, o.Max = min, max
	return o, s.source.SetScale(p, o.Min, o.Max)
}

// Revert restores the captured baseline of p. With removeEntry the override
// is dropped from the store; otherwise it is kept (holding the baseline) so
// it can be re-edited without recapturing.
func (s *Store) Revert(p prefab.Ref, removeEntry bool) error {
	o, ok := s.overrides[p]
	if !ok {
		return nil
	}
	if err := s.source.SetScale(p, o.OriginalMin, o.OriginalMax); err != nil {
		return err
	}
	if removeEntry {
		delete(s.overrides, p)
		return nil
	}
	o.Min, o.Max = o.OriginalMin, o.OriginalMax
	return nil
}

// RevertAll restores every prefab and empties the store
func (s *Store) RevertAll() error {
	for _, o := range s.Overrides() {
		if err := s.Revert(o.Prefab, true); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the override for p, or nil
func (s *Store) Get(p prefab.Ref) *Override {
	return s.overrides[p]
}

// Overrides returns every override ordered by prefab name
func (s *Store) Overrides() []*Override {
	out := make([]*Override, 0, len(s.overrides))
	for _, o := range s.overrides {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefab.Name < out[j].Prefab.Name })
	return out
}

// Modified lists overrides whose range differs from the baseline
func (s *Store) Modified() []*Override {
	out := make([]*Override, 0)
	for _, o := range s.Overrides() {
		if o.Min != o.OriginalMin || o.Max != o.OriginalMax {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) touch(p prefab.Ref, value float64) (*Override, error) {
	if !p.Kind.IsContent() {
		return nil, shared.NewValidationError("prefab", fmt.Sprintf("%s is not a tree or prop", p))
	}
	if value <= 0 {
		return nil, shared.NewValidationError("scale", fmt.Sprintf("scale must be positive, got %.2f", value))
	}
	if o, ok := s.overrides[p]; ok {
		return o, nil
	}
	min, max, err := s.source.Scale(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read scale of %s: %w", p, err)
	}
	o := &Override{Prefab: p, Min: min, Max: max, OriginalMin: min, OriginalMax: max}
	s.overrides[p] = o
	return o, nil
}
