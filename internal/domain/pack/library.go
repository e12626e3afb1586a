package pack

import (
	"sort"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

type entry struct {
	pack    *Pack
	applied bool

	// installed holds the live Pack-tier records created when applying
	installed map[prefab.Ref]*replacement.Record
}

// Library holds every known pack and which ones are applied
type Library struct {
	packs map[string]*entry
}

// NewLibrary creates an empty pack library
func NewLibrary() *Library {
	return &Library{packs: make(map[string]*entry)}
}

// Register adds p. Registering a name twice replaces the definition unless
// the existing pack is applied.
func (l *Library) Register(p *Pack) error {
	if p.Name == "" {
		return shared.NewValidationError("name", "pack name is required")
	}
	if existing, ok := l.packs[p.Name]; ok && existing.applied {
		return shared.NewValidationError("name", "pack "+p.Name+" is applied and cannot be redefined")
	}
	l.packs[p.Name] = &entry{pack: p}
	return nil
}

// Get returns the pack called name
func (l *Library) Get(name string) (*Pack, error) {
	e, ok := l.packs[name]
	if !ok {
		return nil, shared.NewUnknownPackError(name)
	}
	return e.pack, nil
}

// Names returns every pack name in order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.packs))
	for name := range l.packs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsApplied reports whether the pack is currently applied
func (l *Library) IsApplied(name string) bool {
	e, ok := l.packs[name]
	return ok && e.applied
}

// Applied returns the names of the applied packs in order
func (l *Library) Applied() []string {
	names := make([]string, 0)
	for _, name := range l.Names() {
		if l.packs[name].applied {
			names = append(names, name)
		}
	}
	return names
}

// Conflicts reports whether another applied pack targets any of the same
// originals as name. It is a warning gate, not an error.
func (l *Library) Conflicts(name string) bool {
	e, ok := l.packs[name]
	if !ok {
		return false
	}
	targets := e.pack.Targets()
	for otherName, other := range l.packs {
		if otherName == name || !other.applied {
			continue
		}
		for t := range other.pack.Targets() {
			if _, overlap := targets[t]; overlap {
				return true
			}
		}
	}
	return false
}

// NotAllLoaded reports whether the pack references prefabs that are not loaded
func (l *Library) NotAllLoaded(name string) bool {
	e, ok := l.packs[name]
	return ok && e.pack.NotAllLoaded()
}

// MarkApplied records the live records installed for name
func (l *Library) MarkApplied(name string, installed map[prefab.Ref]*replacement.Record) {
	if e, ok := l.packs[name]; ok {
		e.applied = true
		e.installed = installed
	}
}

// MarkReverted clears the applied state of name and returns the live records
// that were installed for it
func (l *Library) MarkReverted(name string) map[prefab.Ref]*replacement.Record {
	e, ok := l.packs[name]
	if !ok {
		return nil
	}
	installed := e.installed
	e.applied = false
	e.installed = nil
	return installed
}

// Installed returns the live record installed by pack name for target
func (l *Library) Installed(name string, target prefab.Ref) *replacement.Record {
	e, ok := l.packs[name]
	if !ok || !e.applied {
		return nil
	}
	return e.installed[target]
}

// SetInstalled records rec as the live record of an applied pack for target
func (l *Library) SetInstalled(name string, target prefab.Ref, rec *replacement.Record) {
	e, ok := l.packs[name]
	if !ok || !e.applied {
		return
	}
	if e.installed == nil {
		e.installed = make(map[prefab.Ref]*replacement.Record)
	}
	e.installed[target] = rec
}

// Fallback returns the template of another applied pack targeting target,
// used to reinstate it once the overriding pack is reverted
func (l *Library) Fallback(excluding string, target prefab.Ref) (string, *replacement.Record) {
	for _, name := range l.Applied() {
		if name == excluding {
			continue
		}
		if r := l.packs[name].pack.RecordFor(target); r != nil {
			return name, r
		}
	}
	return "", nil
}

// Packs returns every pack in name order
func (l *Library) Packs() []*Pack {
	out := make([]*Pack, 0, len(l.packs))
	for _, name := range l.Names() {
		out = append(out, l.packs[name].pack)
	}
	return out
}

// ResetApplied marks every pack as not applied
func (l *Library) ResetApplied() {
	for _, e := range l.packs {
		e.applied = false
		e.installed = nil
	}
}
