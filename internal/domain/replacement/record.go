package replacement

import (
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// Record is a persisted replacement rule: wherever Target would appear within
// the tier's scope, render Replacement instead with this transform and
// probability. A probability of 0 is a valid "hide" rule.
//
// Scope fields depend on the tier:
//   - Individual: Parent, Lane and Slot name exactly one slot
//   - Grouped: Parent names the prefab whose slots are affected
//   - Pack / All: no parent; every loaded prefab of ParentKind is affected
//   - Added: Parent, Lane and Slot name the synthetic slot; Offset is absolute
type Record struct {
	ID         string
	Tier       Tier
	ParentKind prefab.Kind
	Parent     string
	Lane       int
	Slot       int

	Target      prefab.Ref
	Replacement prefab.Ref

	Angle          float64
	Offset         prefab.Vector3
	Probability    int
	RepeatDistance float64
	CustomHeight   bool

	// Pack is the owning pack name for TierPack records
	Pack string

	// Unresolved is set when Target or Replacement did not resolve to a
	// loaded prefab. Such records stay stored but have no visible effect.
	Unresolved bool
}

// IsTree reports whether this record replaces a tree rather than a prop
func (r *Record) IsTree() bool {
	return r.Target.Kind == prefab.KindTree
}

// Active reports whether the record can currently be rendered
func (r *Record) Active() bool {
	return !r.Unresolved && !r.Replacement.IsZero()
}

// Apply computes the effective slot state for this record on top of a baseline
func (r *Record) Apply(base prefab.SlotState) prefab.SlotState {
	state := prefab.SlotState{
		Prefab:         r.Replacement,
		Angle:          base.Angle + r.Angle,
		Position:       base.Position.Add(r.Offset),
		Probability:    r.Probability,
		RepeatDistance: base.RepeatDistance,
		FixedHeight:    base.FixedHeight,
	}
	if r.RepeatDistance > 0 {
		state.RepeatDistance = r.RepeatDistance
	}
	if r.ParentKind == prefab.KindBuilding {
		state.FixedHeight = r.CustomHeight
	}
	return state
}

// AddedState returns the absolute slot state described by an added-prop record
func (r *Record) AddedState() prefab.SlotState {
	return prefab.SlotState{
		Prefab:         r.Replacement,
		Angle:          r.Angle,
		Position:       r.Offset,
		Probability:    r.Probability,
		RepeatDistance: r.RepeatDistance,
		FixedHeight:    r.ParentKind == prefab.KindBuilding && r.CustomHeight,
	}
}

// Clone returns a copy of the record
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

// SameKey reports whether two records occupy the same store key
func (r *Record) SameKey(o *Record) bool {
	if r.Tier != o.Tier || r.ParentKind != o.ParentKind {
		return false
	}
	switch r.Tier {
	case TierIndividual, TierAdded:
		return r.Parent == o.Parent && r.Lane == o.Lane && r.Slot == o.Slot
	case TierGrouped:
		return r.Parent == o.Parent && r.Target == o.Target
	default:
		return r.Target == o.Target
	}
}

// Metadata returns log metadata describing the record
func (r *Record) Metadata() map[string]interface{} {
	m := map[string]interface{}{
		"record_id":   r.ID,
		"tier":        r.Tier.String(),
		"parent_kind": r.ParentKind.String(),
		"target":      r.Target.Name,
		"replacement": r.Replacement.Name,
		"probability": r.Probability,
	}
	if r.Parent != "" {
		m["parent"] = r.Parent
	}
	if r.Tier == TierIndividual || r.Tier == TierAdded {
		m["lane"] = r.Lane
		m["slot"] = r.Slot
	}
	if r.Pack != "" {
		m["pack"] = r.Pack
	}
	return m
}
