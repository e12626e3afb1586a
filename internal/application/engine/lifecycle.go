package engine

import (
	"context"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/added"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// InvalidateParent drops every handler of a parent whose live instance was
// deleted or reloaded. Stored records are kept. Returns the handlers dropped.
//
// The parent is remembered as stale: handlers created on it later recover
// their baseline from the records still rendered on its slots.
func (e *Engine) InvalidateParent(ctx context.Context, parent prefab.Ref) int {
	ks, err := e.stores(parent.Kind)
	if err != nil {
		return 0
	}
	dropped := len(ks.handlers.RemoveParent(parent.Name))
	if dropped > 0 {
		ks.stale[parent.Name] = struct{}{}
	}
	e.metrics.RecordHandlerCount(ks.kind, ks.handlers.Len())
	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Invalidated parent handlers", map[string]interface{}{
		"parent":      parent.Name,
		"parent_kind": parent.Kind.String(),
		"handlers":    dropped,
	})
	return dropped
}

// Reset reverts everything: every touched slot gets its baseline back, added
// slots are removed, scale overrides are reverted and all stores emptied.
func (e *Engine) Reset(ctx context.Context) error {
	logger := common.LoggerFromContext(ctx)
	for _, kind := range prefab.ParentKinds() {
		ks := e.kinds[kind]
		for _, tier := range replacement.PriorityOrder() {
			for _, rec := range ks.records(tier) {
				e.reclaimScope(ctx, ks, rec)
			}
		}
		dirty := newDirtySet()
		for _, h := range ks.handlers.All() {
			h.EndPreview()
			if err := e.write(ctx, h, h.Original()); err != nil {
				return err
			}
			dirty.add(h.Ref().Parent)
		}
		if err := e.detachAll(ctx, ks, dirty); err != nil {
			return err
		}
		dirty.flush(e.host)
		ks.clear()
		e.metrics.RecordHandlerCount(kind, 0)
	}
	e.packs.ResetApplied()
	if err := e.scaling.RevertAll(); err != nil {
		logger.Log(common.LevelError, "Failed to revert scales", map[string]interface{}{"error": err.Error()})
		return err
	}
	logger.Log(common.LevelInfo, "Engine reset", nil)
	return nil
}

// detachAll removes every added slot from the live data, highest index first
// so the remaining indices stay valid
func (e *Engine) detachAll(ctx context.Context, ks *kindStores, dirty *dirtySet) error {
	for _, key := range ks.added.Keys() {
		entries := ks.added.Entries(key)
		parent := prefab.NewRef(ks.kind, key.Parent)
		for i := len(entries) - 1; i >= 0; i-- {
			ref := prefab.InstanceRef{Parent: parent, Lane: key.Lane, Slot: entries[i].Index}
			if err := e.host.RemoveSlot(ref); err != nil {
				common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to remove slot", withError(ref.Metadata(), err))
				return err
			}
			ks.added.Remove(added.Key{Parent: key.Parent, Lane: key.Lane}, entries[i].Index)
			e.metrics.RecordAddedProp(ks.kind, -1)
		}
		dirty.add(parent)
	}
	return nil
}

// Reresolve retries name resolution of inert records, e.g. after an asset
// finished loading, and re-renders the slots they cover. Returns how many
// records resolved.
func (e *Engine) Reresolve(ctx context.Context) int {
	logger := common.LoggerFromContext(ctx)
	resolved := 0
	for _, kind := range prefab.ParentKinds() {
		ks := e.kinds[kind]
		for _, tier := range replacement.PriorityOrder() {
			for _, rec := range ks.records(tier) {
				if !rec.Unresolved || !e.resolvable(rec.Target) || !e.resolvable(rec.Replacement) {
					continue
				}
				rec.Unresolved = false
				resolved++
				if err := e.reresolveRecord(ctx, ks, rec); err != nil {
					logger.Log(common.LevelWarn, "Failed to apply resolved replacement", withError(rec.Metadata(), err))
				}
			}
		}

		pending := ks.pendingAdded
		ks.pendingAdded = nil
		for _, rec := range pending {
			if !e.resolvable(rec.Replacement) {
				ks.pendingAdded = append(ks.pendingAdded, rec)
				continue
			}
			rec.Unresolved = false
			if _, err := e.attach(ks, rec); err != nil {
				rec.Unresolved = true
				ks.pendingAdded = append(ks.pendingAdded, rec)
				logger.Log(common.LevelWarn, "Failed to attach resolved prop", withError(rec.Metadata(), err))
				continue
			}
			resolved++
		}
	}

	for _, p := range e.packs.Packs() {
		for _, r := range p.Records {
			if r.Unresolved && e.resolvable(r.Target) && e.resolvable(r.Replacement) {
				r.Unresolved = false
			}
		}
	}
	if resolved > 0 {
		logger.Log(common.LevelInfo, "Resolved pending replacements", map[string]interface{}{"records": resolved})
	}
	return resolved
}

// reresolveRecord installs a freshly resolved record on its scope. Slots it
// was already installed on are refreshed; new matches are added.
func (e *Engine) reresolveRecord(ctx context.Context, ks *kindStores, rec *replacement.Record) error {
	refs, err := e.scope(ctx, ks, rec)
	if err != nil {
		return e.refresh(ctx, ks, rec)
	}
	return e.install(ctx, ks, rec, refs)
}
