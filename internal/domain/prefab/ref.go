package prefab

import "fmt"

// Ref identifies a loaded prefab by kind and name. Names are compared
// byte-for-byte; the zero Ref denotes an empty slot.
type Ref struct {
	Kind Kind
	Name string
}

func NewRef(kind Kind, name string) Ref {
	return Ref{Kind: kind, Name: name}
}

// IsZero reports whether the reference points at nothing
func (r Ref) IsZero() bool {
	return r.Name == ""
}

func (r Ref) String() string {
	if r.IsZero() {
		return "<none>"
	}
	return r.Kind.String() + ":" + r.Name
}

// NoLane is the lane index used for building slots
const NoLane = -1

// InstanceRef identifies exactly one prop-or-tree slot as authored in a
// parent prefab. Slot indices are only stable while the parent's slot array
// is unmodified; added props shift indices above the removed one.
type InstanceRef struct {
	Parent Ref
	Lane   int
	Slot   int
}

// BuildingSlot returns the reference for slot index of a building
func BuildingSlot(building string, slot int) InstanceRef {
	return InstanceRef{Parent: NewRef(KindBuilding, building), Lane: NoLane, Slot: slot}
}

// NetworkSlot returns the reference for slot index of one lane of a network
func NetworkSlot(network string, lane, slot int) InstanceRef {
	return InstanceRef{Parent: NewRef(KindNetwork, network), Lane: lane, Slot: slot}
}

func (r InstanceRef) String() string {
	if r.Lane == NoLane {
		return fmt.Sprintf("%s[%d]", r.Parent.Name, r.Slot)
	}
	return fmt.Sprintf("%s/lane%d[%d]", r.Parent.Name, r.Lane, r.Slot)
}

// Metadata returns log metadata describing the slot
func (r InstanceRef) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"parent":      r.Parent.Name,
		"parent_kind": r.Parent.Kind.String(),
		"lane":        r.Lane,
		"slot":        r.Slot,
	}
}
