package engine

import (
	"context"
	"sort"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/pkg/utils"
)

// RegisterPack adds a pack definition; template records are checked against
// the loaded prefabs so NotAllLoaded can be reported
func (e *Engine) RegisterPack(p *pack.Pack) error {
	for _, r := range p.Records {
		r.Unresolved = !e.resolvable(r.Target) || !e.resolvable(r.Replacement)
	}
	return e.packs.Register(p)
}

// Packs returns the names of every registered pack
func (e *Engine) Packs() []string {
	return e.packs.Names()
}

// PackApplied reports whether name is applied
func (e *Engine) PackApplied(name string) bool {
	return e.packs.IsApplied(name)
}

// Conflicts reports whether name targets originals another applied pack
// already replaces
func (e *Engine) Conflicts(name string) bool {
	return e.packs.Conflicts(name)
}

// PackNotAllLoaded reports whether name references prefabs that are not loaded
func (e *Engine) PackNotAllLoaded(name string) bool {
	return e.packs.NotAllLoaded(name)
}

// SetPackStatus applies or reverts a pack. Applying installs every pack
// record at the Pack tier across all loaded networks; when another applied
// pack already targets the same original, the newer pack wins and the older
// record is reinstated once the newer pack is reverted.
func (e *Engine) SetPackStatus(ctx context.Context, name string, apply bool) error {
	logger := common.LoggerFromContext(ctx)
	p, err := e.packs.Get(name)
	if err != nil {
		logger.Log(common.LevelError, "Unknown pack", map[string]interface{}{"pack": name})
		return err
	}
	ks, err := e.stores(prefab.KindNetwork)
	if err != nil {
		return err
	}
	if e.packs.IsApplied(name) == apply {
		return nil
	}

	if !apply {
		if err := e.revertPack(ctx, ks, name); err != nil {
			return err
		}
		e.metrics.RecordPackStatus(name, false)
		logger.Log(common.LevelInfo, "Pack reverted", map[string]interface{}{"pack": name})
		return nil
	}

	if e.packs.Conflicts(name) {
		logger.Log(common.LevelWarn, "Pack conflicts with an applied pack", map[string]interface{}{"pack": name})
	}
	if e.packs.NotAllLoaded(name) {
		logger.Log(common.LevelWarn, "Pack references prefabs that are not loaded", map[string]interface{}{"pack": name})
	}

	// Resolve every scope up front so a failure leaves the pack unapplied
	scopes := make([][]prefab.InstanceRef, len(p.Records))
	for i, tmpl := range p.Records {
		refs, err := e.matchingSlots(ctx, ks, e.host.Loaded(prefab.KindNetwork), tmpl.Target)
		if err != nil {
			logger.Log(common.LevelError, "Failed to resolve pack scope", withError(tmpl.Metadata(), err))
			return err
		}
		scopes[i] = refs
	}

	installed := make(map[prefab.Ref]*replacement.Record, len(p.Records))
	for i, tmpl := range p.Records {
		rec, err := e.installPackRecord(ctx, ks, name, tmpl, scopes[i])
		if err != nil {
			return err
		}
		installed[tmpl.Target] = rec
	}
	e.packs.MarkApplied(name, installed)
	e.metrics.RecordPackStatus(name, true)
	logger.Log(common.LevelInfo, "Pack applied", map[string]interface{}{"pack": name, "records": len(installed)})
	return nil
}

func (e *Engine) revertPack(ctx context.Context, ks *kindStores, name string) error {
	installed := e.packs.MarkReverted(name)
	targets := make([]prefab.Ref, 0, len(installed))
	for t := range installed {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })

	for _, target := range targets {
		rec := installed[target]
		// Displaced by a newer pack: nothing of ours is live
		if ks.lookup(rec) != rec {
			continue
		}
		if err := e.uninstall(ctx, ks, rec); err != nil {
			return err
		}
		if err := e.reinstatePackFallback(ctx, ks, name, target); err != nil {
			return err
		}
	}
	return nil
}

// installPackRecord creates the live Pack-tier record for one pack template,
// displacing another pack's record for the same target
func (e *Engine) installPackRecord(ctx context.Context, ks *kindStores, name string, tmpl *replacement.Record, refs []prefab.InstanceRef) (*replacement.Record, error) {
	rec := tmpl.Clone()
	rec.ID = utils.GenerateRecordID(replacement.TierPack.String())
	rec.Pack = name
	rec.Unresolved = !e.resolvable(rec.Target) || !e.resolvable(rec.Replacement)

	if occupant := ks.lookup(rec); occupant != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "Pack replacement overrides another pack", occupant.Metadata())
		if err := e.uninstall(ctx, ks, occupant); err != nil {
			return nil, err
		}
	}
	ks.put(rec)
	if err := e.install(ctx, ks, rec, refs); err != nil {
		return nil, err
	}
	return rec, nil
}

// reinstatePackFallback puts back another applied pack's record for target
func (e *Engine) reinstatePackFallback(ctx context.Context, ks *kindStores, excluding string, target prefab.Ref) error {
	owner, tmpl := e.packs.Fallback(excluding, target)
	if tmpl == nil || ks.pack.Get(target) != nil {
		return nil
	}
	refs, err := e.matchingSlots(ctx, ks, e.host.Loaded(prefab.KindNetwork), target)
	if err != nil {
		return err
	}
	rec, err := e.installPackRecord(ctx, ks, owner, tmpl, refs)
	if err != nil {
		return err
	}
	e.packs.SetInstalled(owner, target, rec)
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Reinstated pack replacement", rec.Metadata())
	return nil
}
