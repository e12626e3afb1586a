package replacement

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// IndividualKey addresses one slot of one parent prefab
type IndividualKey struct {
	Parent string
	Lane   int
	Slot   int
}

func (k IndividualKey) String() string {
	if k.Lane == prefab.NoLane {
		return fmt.Sprintf("%s[%d]", k.Parent, k.Slot)
	}
	return fmt.Sprintf("%s/lane%d[%d]", k.Parent, k.Lane, k.Slot)
}

// GroupedKey addresses every slot of one parent whose original is Target
type GroupedKey struct {
	Parent string
	Target prefab.Ref
}

func (k GroupedKey) String() string {
	return k.Parent + ":" + k.Target.Name
}

// IndividualKeyOf returns the store key of an individual record
func IndividualKeyOf(r *Record) IndividualKey {
	return IndividualKey{Parent: r.Parent, Lane: r.Lane, Slot: r.Slot}
}

// GroupedKeyOf returns the store key of a grouped record
func GroupedKeyOf(r *Record) GroupedKey {
	return GroupedKey{Parent: r.Parent, Target: r.Target}
}

// Store maps keys to the single active record of one tier.
// Pack and All stores are keyed by the target prefab.
type Store[K comparable] struct {
	tier    Tier
	records map[K]*Record
}

// NewStore creates an empty store for tier
func NewStore[K comparable](tier Tier) *Store[K] {
	return &Store[K]{tier: tier, records: make(map[K]*Record)}
}

// Tier returns the tier this store holds
func (s *Store[K]) Tier() Tier {
	return s.tier
}

// Get returns the record stored at key, or nil
func (s *Store[K]) Get(key K) *Record {
	return s.records[key]
}

// Put stores r at key and returns the record it displaced, if any
func (s *Store[K]) Put(key K, r *Record) *Record {
	previous := s.records[key]
	s.records[key] = r
	return previous
}

// Delete removes r from key. Nothing happens if another record occupies key.
func (s *Store[K]) Delete(key K, r *Record) bool {
	if stored, ok := s.records[key]; !ok || stored != r {
		return false
	}
	delete(s.records, key)
	return true
}

// Contains reports whether r is stored anywhere in this store
func (s *Store[K]) Contains(r *Record) bool {
	for _, stored := range s.records {
		if stored == r {
			return true
		}
	}
	return false
}

// Len returns the number of stored records
func (s *Store[K]) Len() int {
	return len(s.records)
}

// Records returns the stored records in a stable order
func (s *Store[K]) Records() []*Record {
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	SortRecords(out)
	return out
}

// Clear drops every record
func (s *Store[K]) Clear() {
	s.records = make(map[K]*Record)
}

// SortRecords orders records by parent, target, lane, slot and ID
func SortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Parent != b.Parent {
			return a.Parent < b.Parent
		}
		if a.Target.Name != b.Target.Name {
			return a.Target.Name < b.Target.Name
		}
		if a.Lane != b.Lane {
			return a.Lane < b.Lane
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.ID < b.ID
	})
}
