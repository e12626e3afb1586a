package pack

import (
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// Pack is a named bundle of network replacement rules applied and reverted
// as a unit. Records are templates; applying the pack installs copies of
// them at the Pack tier.
type Pack struct {
	Name    string
	Records []*replacement.Record
}

// NewPack creates a pack, stamping each record with the pack tier and name
func NewPack(name string, records []*replacement.Record) *Pack {
	for _, r := range records {
		r.Tier = replacement.TierPack
		r.ParentKind = prefab.KindNetwork
		r.Pack = name
		r.Parent = ""
		r.Lane = prefab.NoLane
		r.Slot = -1
	}
	return &Pack{Name: name, Records: records}
}

// Targets returns the set of original prefabs this pack replaces
func (p *Pack) Targets() map[prefab.Ref]struct{} {
	targets := make(map[prefab.Ref]struct{}, len(p.Records))
	for _, r := range p.Records {
		targets[r.Target] = struct{}{}
	}
	return targets
}

// NotAllLoaded reports whether any record references a prefab that failed
// to resolve
func (p *Pack) NotAllLoaded() bool {
	for _, r := range p.Records {
		if r.Unresolved {
			return true
		}
	}
	return false
}

// RecordFor returns the pack's template record for target, or nil
func (p *Pack) RecordFor(target prefab.Ref) *replacement.Record {
	for _, r := range p.Records {
		if r.Target == target {
			return r
		}
	}
	return nil
}
