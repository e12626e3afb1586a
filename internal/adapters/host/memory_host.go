package host

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

type laneKey struct {
	parent prefab.Ref
	lane   int
}

type scaleRange struct {
	min, max float64
}

// MemoryHost implements prefab.Host over in-memory prefab data
type MemoryHost struct {
	mu     sync.Mutex
	loaded map[prefab.Ref]bool
	lanes  map[prefab.Ref]int
	slots  map[laneKey][]prefab.SlotState
	scales map[prefab.Ref]scaleRange
	dirty  map[prefab.Ref]int
}

var _ prefab.Host = (*MemoryHost)(nil)

// NewMemoryHost creates an empty host
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		loaded: make(map[prefab.Ref]bool),
		lanes:  make(map[prefab.Ref]int),
		slots:  make(map[laneKey][]prefab.SlotState),
		scales: make(map[prefab.Ref]scaleRange),
		dirty:  make(map[prefab.Ref]int),
	}
}

// NewMemoryHostFromScene creates a host holding every prefab of scene
func NewMemoryHostFromScene(scene *Scene) (*MemoryHost, error) {
	h := NewMemoryHost()
	for _, t := range scene.Trees {
		h.AddContent(prefab.NewRef(prefab.KindTree, t.Name), t.MinScale, t.MaxScale)
	}
	for _, p := range scene.Props {
		h.AddContent(prefab.NewRef(prefab.KindProp, p.Name), p.MinScale, p.MaxScale)
	}
	for _, b := range scene.Buildings {
		if b.Name == "" {
			return nil, fmt.Errorf("building without a name")
		}
		slots := make([]prefab.SlotState, 0, len(b.Slots))
		for _, s := range b.Slots {
			slots = append(slots, s.state())
		}
		h.AddBuilding(b.Name, slots...)
	}
	for _, n := range scene.Networks {
		if n.Name == "" {
			return nil, fmt.Errorf("network without a name")
		}
		lanes := make([][]prefab.SlotState, 0, len(n.Lanes))
		for _, l := range n.Lanes {
			slots := make([]prefab.SlotState, 0, len(l.Slots))
			for _, s := range l.Slots {
				slots = append(slots, s.state())
			}
			lanes = append(lanes, slots)
		}
		h.AddNetwork(n.Name, lanes...)
	}
	return h, nil
}

// AddContent loads a tree or prop prefab. A zero scale range defaults to 1..1.
func (h *MemoryHost) AddContent(ref prefab.Ref, minScale, maxScale float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if minScale <= 0 {
		minScale = 1
	}
	if maxScale < minScale {
		maxScale = minScale
	}
	h.loaded[ref] = true
	h.scales[ref] = scaleRange{min: minScale, max: maxScale}
}

// Unload marks a prefab as not loaded, as for a missing asset
func (h *MemoryHost) Unload(ref prefab.Ref) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.loaded, ref)
}

// AddBuilding loads a building with its slots
func (h *MemoryHost) AddBuilding(name string, slots ...prefab.SlotState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref := prefab.NewRef(prefab.KindBuilding, name)
	h.loaded[ref] = true
	h.slots[laneKey{ref, prefab.NoLane}] = append([]prefab.SlotState(nil), slots...)
}

// AddNetwork loads a network with the slots of each lane
func (h *MemoryHost) AddNetwork(name string, lanes ...[]prefab.SlotState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref := prefab.NewRef(prefab.KindNetwork, name)
	h.loaded[ref] = true
	h.lanes[ref] = len(lanes)
	for i, slots := range lanes {
		h.slots[laneKey{ref, i}] = append([]prefab.SlotState(nil), slots...)
	}
}

// LaneCount returns the number of lanes of a network; buildings have none
func (h *MemoryHost) LaneCount(parent prefab.Ref) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded[parent] || !parent.Kind.IsParent() {
		return 0, fmt.Errorf("unknown parent prefab %s", parent)
	}
	return h.lanes[parent], nil
}

// SlotCount returns the number of slots of one parent lane
func (h *MemoryHost) SlotCount(parent prefab.Ref, lane int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(parent, lane)
	if err != nil {
		return 0, err
	}
	return len(slots), nil
}

// Slot returns the live state of one slot
func (h *MemoryHost) Slot(ref prefab.InstanceRef) (prefab.SlotState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(ref.Parent, ref.Lane)
	if err != nil {
		return prefab.SlotState{}, err
	}
	if ref.Slot < 0 || ref.Slot >= len(slots) {
		return prefab.SlotState{}, fmt.Errorf("slot %s out of range", ref)
	}
	return slots[ref.Slot], nil
}

// SetSlot overwrites the live state of one slot
func (h *MemoryHost) SetSlot(ref prefab.InstanceRef, state prefab.SlotState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(ref.Parent, ref.Lane)
	if err != nil {
		return err
	}
	if ref.Slot < 0 || ref.Slot >= len(slots) {
		return fmt.Errorf("slot %s out of range", ref)
	}
	slots[ref.Slot] = state
	return nil
}

// AppendSlot adds a slot at the end of a parent lane
func (h *MemoryHost) AppendSlot(parent prefab.Ref, lane int, state prefab.SlotState) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(parent, lane)
	if err != nil {
		return -1, err
	}
	h.slots[laneKey{parent, lane}] = append(slots, state)
	return len(slots), nil
}

// RemoveSlot deletes a slot, compacting the indices above it
func (h *MemoryHost) RemoveSlot(ref prefab.InstanceRef) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(ref.Parent, ref.Lane)
	if err != nil {
		return err
	}
	if ref.Slot < 0 || ref.Slot >= len(slots) {
		return fmt.Errorf("slot %s out of range", ref)
	}
	h.slots[laneKey{ref.Parent, ref.Lane}] = append(slots[:ref.Slot], slots[ref.Slot+1:]...)
	return nil
}

// Slots returns a copy of the live slots of one parent lane
func (h *MemoryHost) Slots(parent prefab.Ref, lane int) []prefab.SlotState {
	h.mu.Lock()
	defer h.mu.Unlock()
	slots, err := h.laneSlots(parent, lane)
	if err != nil {
		return nil
	}
	return append([]prefab.SlotState(nil), slots...)
}

// Loaded lists the loaded prefabs of kind ordered by name
func (h *MemoryHost) Loaded(kind prefab.Kind) []prefab.Ref {
	h.mu.Lock()
	defer h.mu.Unlock()
	refs := make([]prefab.Ref, 0)
	for ref, ok := range h.loaded {
		if ok && ref.Kind == kind {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// Resolve looks a prefab up by name
func (h *MemoryHost) Resolve(kind prefab.Kind, name string) (prefab.Ref, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref := prefab.NewRef(kind, name)
	return ref, h.loaded[ref]
}

// Scale returns the scale range of a tree or prop
func (h *MemoryHost) Scale(p prefab.Ref) (float64, float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.scales[p]
	if !ok || !h.loaded[p] {
		return 0, 0, fmt.Errorf("unknown prefab %s", p)
	}
	return s.min, s.max, nil
}

// SetScale overwrites the scale range of a tree or prop
func (h *MemoryHost) SetScale(p prefab.Ref, min, max float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.scales[p]; !ok || !h.loaded[p] {
		return fmt.Errorf("unknown prefab %s", p)
	}
	h.scales[p] = scaleRange{min: min, max: max}
	return nil
}

// MarkDirty counts render refresh requests
func (h *MemoryHost) MarkDirty(p prefab.Ref) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dirty[p]++
}

// DirtyCount returns how often p was marked dirty
func (h *MemoryHost) DirtyCount(p prefab.Ref) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty[p]
}

// laneSlots must be called with mu held
func (h *MemoryHost) laneSlots(parent prefab.Ref, lane int) ([]prefab.SlotState, error) {
	if !h.loaded[parent] || !parent.Kind.IsParent() {
		return nil, fmt.Errorf("unknown parent prefab %s", parent)
	}
	if parent.Kind == prefab.KindBuilding {
		if lane != prefab.NoLane {
			return nil, fmt.Errorf("building %s has no lane %d", parent.Name, lane)
		}
	} else if lane < 0 || lane >= h.lanes[parent] {
		return nil, fmt.Errorf("network %s has no lane %d", parent.Name, lane)
	}
	return h.slots[laneKey{parent, lane}], nil
}
