package replacement

import (
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// Registry holds the handlers of the slots touched so far for one parent
// kind. Handlers are created lazily, never pre-allocated for every slot.
type Registry struct {
	handlers map[prefab.InstanceRef]*Handler
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[prefab.InstanceRef]*Handler)}
}

// Get returns the handler for ref, or nil
func (r *Registry) Get(ref prefab.InstanceRef) *Handler {
	return r.handlers[ref]
}

// Add registers h; an existing handler for the same slot is kept and returned
func (r *Registry) Add(h *Handler) *Handler {
	if existing, ok := r.handlers[h.ref]; ok {
		return existing
	}
	r.handlers[h.ref] = h
	return h
}

// Remove drops the handler for ref and returns it
func (r *Registry) Remove(ref prefab.InstanceRef) *Handler {
	h := r.handlers[ref]
	delete(r.handlers, ref)
	return h
}

// Len returns the number of tracked slots
func (r *Registry) Len() int {
	return len(r.handlers)
}

// All returns every handler ordered by parent, lane and slot
func (r *Registry) All() []*Handler {
	return r.collect(func(*Handler) bool { return true })
}

// ForParent returns the handlers of one parent prefab
func (r *Registry) ForParent(parent string) []*Handler {
	return r.collect(func(h *Handler) bool { return h.ref.Parent.Name == parent })
}

// Referencing returns the handlers with rec installed at its tier
func (r *Registry) Referencing(rec *Record) []*Handler {
	return r.collect(func(h *Handler) bool { return h.References(rec) })
}

// RemoveParent drops every handler of a parent prefab and returns them
func (r *Registry) RemoveParent(parent string) []*Handler {
	removed := r.ForParent(parent)
	for _, h := range removed {
		delete(r.handlers, h.ref)
	}
	return removed
}

// Shift applies the renumbering caused by removing slot index removed from
// one parent lane: the handler at removed is dropped and returned, handlers
// above it move down by one.
func (r *Registry) Shift(parent string, lane, removed int) *Handler {
	var dropped *Handler
	var moved []*Handler
	for ref, h := range r.handlers {
		if ref.Parent.Name != parent || ref.Lane != lane {
			continue
		}
		switch {
		case ref.Slot == removed:
			dropped = h
			delete(r.handlers, ref)
		case ref.Slot > removed:
			moved = append(moved, h)
			delete(r.handlers, ref)
		}
	}
	for _, h := range moved {
		h.rekey(h.ref.Slot - 1)
		r.handlers[h.ref] = h
	}
	return dropped
}

// Clear drops every handler
func (r *Registry) Clear() {
	r.handlers = make(map[prefab.InstanceRef]*Handler)
}

func (r *Registry) collect(keep func(*Handler) bool) []*Handler {
	out := make([]*Handler, 0)
	for _, h := range r.handlers {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessRef(out[i].ref, out[j].ref)
	})
	return out
}

func lessRef(a, b prefab.InstanceRef) bool {
	if a.Parent.Name != b.Parent.Name {
		return a.Parent.Name < b.Parent.Name
	}
	if a.Lane != b.Lane {
		return a.Lane < b.Lane
	}
	return a.Slot < b.Slot
}
