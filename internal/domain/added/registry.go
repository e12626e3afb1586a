package added

import (
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// Key addresses the slot array of one parent prefab lane
type Key struct {
	Parent string
	Lane   int
}

// Entry is one user-added slot. Record.Slot always mirrors Index.
type Entry struct {
	Index  int
	Record *replacement.Record
}

// Registry tracks the synthetic slots injected into parent prefabs.
// Added slots have no original, so they live outside the tier system.
type Registry struct {
	entries map[Key][]*Entry
}

// NewRegistry creates an empty added-prop registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key][]*Entry)}
}

// Add records that index of key now holds the added record
func (r *Registry) Add(key Key, index int, rec *replacement.Record) *Entry {
	rec.Slot = index
	entry := &Entry{Index: index, Record: rec}
	list := append(r.entries[key], entry)
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	r.entries[key] = list
	return entry
}

// IsAdded reports whether index of key is an added slot
func (r *Registry) IsAdded(key Key, index int) bool {
	return r.Get(key, index) != nil
}

// Get returns the entry at index, or nil
func (r *Registry) Get(key Key, index int) *Entry {
	for _, e := range r.entries[key] {
		if e.Index == index {
			return e
		}
	}
	return nil
}

// Remove deletes the entry at index and renumbers every later added entry of
// the same parent lane down by one. Original slot indices are untouched.
func (r *Registry) Remove(key Key, index int) *Entry {
	list := r.entries[key]
	var removed *Entry
	kept := list[:0]
	for _, e := range list {
		if e.Index == index {
			removed = e
			continue
		}
		kept = append(kept, e)
	}
	if removed == nil {
		return nil
	}
	for _, e := range kept {
		if e.Index > index {
			e.Index--
			e.Record.Slot = e.Index
		}
	}
	if len(kept) == 0 {
		delete(r.entries, key)
	} else {
		r.entries[key] = kept
	}
	return removed
}

// Entries returns the added entries of one parent lane ordered by index
func (r *Registry) Entries(key Key) []*Entry {
	list := r.entries[key]
	out := make([]*Entry, len(list))
	copy(out, list)
	return out
}

// Keys returns every parent lane carrying added slots
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Parent != keys[j].Parent {
			return keys[i].Parent < keys[j].Parent
		}
		return keys[i].Lane < keys[j].Lane
	})
	return keys
}

// Records returns every added record across all parents
func (r *Registry) Records() []*replacement.Record {
	out := make([]*replacement.Record, 0)
	for _, k := range r.Keys() {
		for _, e := range r.entries[k] {
			out = append(out, e.Record)
		}
	}
	return out
}

// Clear drops every entry
func (r *Registry) Clear() {
	r.entries = make(map[Key][]*Entry)
}
