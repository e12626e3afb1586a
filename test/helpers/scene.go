package helpers

import (
	"fmt"

	"github.com/andrescamacho/bob-go/internal/adapters/host"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// SceneBuilder accumulates buildings and networks and loads them into fresh
// hosts, so a scene can be rebuilt identically for round-trip checks
type SceneBuilder struct {
	content   map[prefab.Ref]struct{}
	buildings map[string][]prefab.SlotState
	networks  map[string][][]prefab.SlotState
	order     []prefab.Ref
}

// NewSceneBuilder creates an empty scene
func NewSceneBuilder() *SceneBuilder {
	return &SceneBuilder{
		content:   make(map[prefab.Ref]struct{}),
		buildings: make(map[string][]prefab.SlotState),
		networks:  make(map[string][][]prefab.SlotState),
	}
}

// ContentRef parses "tree" or "prop" into a content reference
func ContentRef(kind, name string) (prefab.Ref, error) {
	k, err := prefab.ParseKind(kind)
	if err != nil {
		return prefab.Ref{}, err
	}
	if !k.IsContent() {
		return prefab.Ref{}, fmt.Errorf("%s is not a tree or prop kind", kind)
	}
	return prefab.NewRef(k, name), nil
}

// Content registers a loaded tree or prop
func (b *SceneBuilder) Content(ref prefab.Ref) {
	if _, ok := b.content[ref]; !ok {
		b.content[ref] = struct{}{}
		b.order = append(b.order, ref)
	}
}

// BuildingSlot appends a slot to a building, registering its prefab
func (b *SceneBuilder) BuildingSlot(building string, ref prefab.Ref) {
	b.Content(ref)
	b.buildings[building] = append(b.buildings[building], prefab.SlotState{
		Prefab:      ref,
		Position:    prefab.Vector3{X: float64(len(b.buildings[building]))},
		Probability: 100,
	})
}

// NetworkSlot appends a slot to one lane of a network
func (b *SceneBuilder) NetworkSlot(network string, lane int, ref prefab.Ref) {
	b.Content(ref)
	lanes := b.networks[network]
	for len(lanes) <= lane {
		lanes = append(lanes, nil)
	}
	lanes[lane] = append(lanes[lane], prefab.SlotState{Prefab: ref, Probability: 100, RepeatDistance: 20})
	b.networks[network] = lanes
}

// Build loads the scene into a new host
func (b *SceneBuilder) Build() *host.MemoryHost {
	h := host.NewMemoryHost()
	for _, ref := range b.order {
		h.AddContent(ref, 1, 1)
	}
	for name, slots := range b.buildings {
		h.AddBuilding(name, slots...)
	}
	for name, lanes := range b.networks {
		h.AddNetwork(name, lanes...)
	}
	return h
}
