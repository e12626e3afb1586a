package prefab

// SlotSource reads and writes the live prop/tree arrays of parent prefabs.
// Buildings have a single slot array addressed with lane NoLane.
type SlotSource interface {
	LaneCount(parent Ref) (int, error)
	SlotCount(parent Ref, lane int) (int, error)
	Slot(ref InstanceRef) (SlotState, error)
	SetSlot(ref InstanceRef, state SlotState) error

	// AppendSlot adds a slot at the end of the array and returns its index
	AppendSlot(parent Ref, lane int, state SlotState) (int, error)

	// RemoveSlot removes a slot, compacting the indices above it
	RemoveSlot(ref InstanceRef) error
}

// Catalog enumerates and resolves the currently loaded prefabs
type Catalog interface {
	Loaded(kind Kind) []Ref
	Resolve(kind Kind, name string) (Ref, bool)
}

// ScaleSource exposes a tree/prop prefab's own scale variation range
type ScaleSource interface {
	Scale(prefab Ref) (min, max float64, err error)
	SetScale(prefab Ref, min, max float64) error
}

// Renderer is notified when a prefab's rendered instances must be rebuilt
type Renderer interface {
	MarkDirty(prefab Ref)
}

// Host is the full set of collaborator interfaces supplied by the game engine
type Host interface {
	SlotSource
	Catalog
	ScaleSource
	Renderer
}
