package engine

import (
	"context"
	"errors"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/added"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// GetOrAddHandler returns the handler of ref, creating it on first touch.
// Creation captures the slot's baseline from the live data.
func (e *Engine) GetOrAddHandler(ctx context.Context, ref prefab.InstanceRef) (*replacement.Handler, error) {
	ks, err := e.stores(ref.Parent.Kind)
	if err != nil {
		return nil, err
	}
	return e.handlerFor(ctx, ks, ref)
}

// GetHandler returns the handler of ref without creating one
func (e *Engine) GetHandler(ref prefab.InstanceRef) *replacement.Handler {
	ks, err := e.stores(ref.Parent.Kind)
	if err != nil {
		return nil
	}
	return ks.handlers.Get(ref)
}

// GetReplacement returns the record h carries at tier, or nil
func (e *Engine) GetReplacement(h *replacement.Handler, tier replacement.Tier) *replacement.Record {
	if h == nil {
		return nil
	}
	return h.Replacement(tier)
}

// ActiveReplacements lists the records installed on ref in priority order
func (e *Engine) ActiveReplacements(ref prefab.InstanceRef) []*replacement.Record {
	h := e.GetHandler(ref)
	if h == nil {
		return nil
	}
	return h.Active()
}

// Original returns the baseline of ref: the handler's captured original, or
// the live slot when the slot has not been touched yet
func (e *Engine) Original(ctx context.Context, ref prefab.InstanceRef) (prefab.SlotState, error) {
	ks, err := e.stores(ref.Parent.Kind)
	if err != nil {
		return prefab.SlotState{}, err
	}
	return e.originalOf(ctx, ks, ref)
}

func (e *Engine) handlerFor(ctx context.Context, ks *kindStores, ref prefab.InstanceRef) (*replacement.Handler, error) {
	if h := ks.handlers.Get(ref); h != nil {
		return h, nil
	}
	logger := common.LoggerFromContext(ctx)

	if ks.added.IsAdded(added.Key{Parent: ref.Parent.Name, Lane: ref.Lane}, ref.Slot) {
		err := shared.NewAddedSlotError(ref.Parent.Name, ref.Lane, ref.Slot, true)
		logger.Log(common.LevelWarn, "Replacement handler requested for an added slot", ref.Metadata())
		return nil, err
	}

	live, err := e.liveSlot(ctx, ref)
	if err != nil {
		return nil, err
	}

	baseline := e.captureBaseline(ks, ref, live)
	h := ks.handlers.Add(replacement.NewHandler(ref, baseline))
	e.metrics.RecordHandlerCount(ks.kind, ks.handlers.Len())
	for _, r := range e.covering(ks, ref, baseline.Prefab) {
		h.Set(r)
	}
	// Parents loaded after a record was stored have not rendered it yet
	if state := h.EffectiveState(); h.HasReplacements() && state != live {
		if err := e.write(ctx, h, state); err != nil {
			return nil, err
		}
		e.host.MarkDirty(ref.Parent)
	}
	return h, nil
}

// covering lists, highest tier first, the stored records whose scope
// includes a slot whose original prefab is original. Inert records are left out.
func (e *Engine) covering(ks *kindStores, ref prefab.InstanceRef, original prefab.Ref) []*replacement.Record {
	if original.IsZero() {
		return nil
	}
	candidates := []*replacement.Record{
		ks.individual.Get(replacement.IndividualKey{Parent: ref.Parent.Name, Lane: ref.Lane, Slot: ref.Slot}),
		ks.grouped.Get(replacement.GroupedKey{Parent: ref.Parent.Name, Target: original}),
	}
	if ks.pack != nil {
		candidates = append(candidates, ks.pack.Get(original))
	}
	candidates = append(candidates, ks.all.Get(original))

	out := make([]*replacement.Record, 0, len(candidates))
	for _, r := range candidates {
		if r != nil && r.Active() && r.Target == original {
			out = append(out, r)
		}
	}
	return out
}

// reclaimScope creates the missing handlers of rec's scope on parents whose
// handlers were invalidated while their live slots still show what the
// dropped handlers rendered
func (e *Engine) reclaimScope(ctx context.Context, ks *kindStores, rec *replacement.Record) {
	if len(ks.stale) == 0 || !rec.Active() {
		return
	}
	refs, err := e.scope(ctx, ks, rec)
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Skipped reclaiming replacement scope", withError(rec.Metadata(), err))
		return
	}
	for _, ref := range refs {
		if _, err := e.handlerFor(ctx, ks, ref); err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Failed to reclaim slot", withError(ref.Metadata(), err))
		}
	}
}

// liveSlot reads one slot after checking it is in bounds
func (e *Engine) liveSlot(ctx context.Context, ref prefab.InstanceRef) (prefab.SlotState, error) {
	count, err := e.host.SlotCount(ref.Parent, ref.Lane)
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to read slot count", withError(ref.Metadata(), err))
		return prefab.SlotState{}, err
	}
	if ref.Slot < 0 || ref.Slot >= count {
		e.metrics.RecordInvalidSlotReference(ref.Parent.Kind)
		metadata := ref.Metadata()
		metadata["slot_count"] = count
		common.LoggerFromContext(ctx).Log(common.LevelWarn, "Invalid slot reference", metadata)
		return prefab.SlotState{}, shared.NewInvalidSlotReferenceError(ref.Parent.Name, ref.Lane, ref.Slot, count)
	}
	return e.host.Slot(ref)
}

// originalOf returns the baseline of a slot, reading the live slot when no
// handler exists yet
func (e *Engine) originalOf(ctx context.Context, ks *kindStores, ref prefab.InstanceRef) (prefab.SlotState, error) {
	if h := ks.handlers.Get(ref); h != nil {
		return h.Original(), nil
	}
	live, err := e.liveSlot(ctx, ref)
	if err != nil {
		return prefab.SlotState{}, err
	}
	return e.captureBaseline(ks, ref, live), nil
}

// captureBaseline returns the live state unless the slot may still show a
// stored record: during a live-applied import, or on a parent whose handlers
// were invalidated. A record found rendered there is undone to recover the
// original. The recovered probability is always 100.
func (e *Engine) captureBaseline(ks *kindStores, ref prefab.InstanceRef, live prefab.SlotState) prefab.SlotState {
	if live.IsEmpty() || !(e.recovering || ks.isStale(ref.Parent.Name)) {
		return live
	}
	rec := e.appliedRecord(ks, ref, live.Prefab)
	if rec == nil {
		return live
	}
	original := live
	original.Prefab = rec.Target
	original.Angle = live.Angle - rec.Angle
	original.Position = live.Position.Sub(rec.Offset)
	original.Probability = 100
	return original
}

// appliedRecord finds, in priority order, the stored record whose scope
// covers ref and whose replacement is shown
func (e *Engine) appliedRecord(ks *kindStores, ref prefab.InstanceRef, shown prefab.Ref) *replacement.Record {
	matches := func(r *replacement.Record) bool {
		return r != nil && r.Active() && r.Replacement == shown
	}
	if r := ks.individual.Get(replacement.IndividualKey{Parent: ref.Parent.Name, Lane: ref.Lane, Slot: ref.Slot}); matches(r) {
		return r
	}
	for _, r := range ks.grouped.Records() {
		if r.Parent == ref.Parent.Name && matches(r) {
			return r
		}
	}
	if ks.pack != nil {
		for _, r := range ks.pack.Records() {
			if matches(r) {
				return r
			}
		}
		// Pack records are only stored once their scope is resolved
		for _, name := range e.livePacks {
			p, err := e.packs.Get(name)
			if err != nil {
				continue
			}
			for _, r := range p.Records {
				if matches(r) {
					return r
				}
			}
		}
	}
	for _, r := range ks.all.Records() {
		if matches(r) {
			return r
		}
	}
	return nil
}

// lanes returns the lane indices of a parent; buildings have the single NoLane
func (e *Engine) lanes(parent prefab.Ref) ([]int, error) {
	if parent.Kind == prefab.KindBuilding {
		return []int{prefab.NoLane}, nil
	}
	count, err := e.host.LaneCount(parent)
	if err != nil {
		return nil, err
	}
	lanes := make([]int, count)
	for i := range lanes {
		lanes[i] = i
	}
	return lanes, nil
}

// Groups buckets every original slot of parent by its GroupKey
func (e *Engine) Groups(ctx context.Context, parentKind prefab.Kind, parent string) (map[replacement.GroupKey][]prefab.InstanceRef, error) {
	ks, err := e.stores(parentKind)
	if err != nil {
		return nil, err
	}
	parentRef := prefab.NewRef(parentKind, parent)
	lanes, err := e.lanes(parentRef)
	if err != nil {
		return nil, err
	}

	groups := make(map[replacement.GroupKey][]prefab.InstanceRef)
	for _, lane := range lanes {
		count, err := e.host.SlotCount(parentRef, lane)
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < count; slot++ {
			if ks.added.IsAdded(added.Key{Parent: parent, Lane: lane}, slot) {
				continue
			}
			ref := prefab.InstanceRef{Parent: parentRef, Lane: lane, Slot: slot}
			original, err := e.originalOf(ctx, ks, ref)
			if err != nil {
				return nil, err
			}
			if original.IsEmpty() {
				continue
			}
			key := replacement.GroupKeyFor(original, ks.handlers.Get(ref))
			groups[key] = append(groups[key], ref)
		}
	}
	return groups, nil
}

// write pushes a handler's state to the live slot
func (e *Engine) write(ctx context.Context, h *replacement.Handler, state prefab.SlotState) error {
	if err := e.host.SetSlot(h.Ref(), state); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to write slot", withError(h.Ref().Metadata(), err))
		return err
	}
	return nil
}

// refresh rewrites the committed state of every handler referencing rec
func (e *Engine) refresh(ctx context.Context, ks *kindStores, rec *replacement.Record) error {
	dirty := newDirtySet()
	for _, h := range ks.handlers.Referencing(rec) {
		h.EndPreview()
		if err := e.write(ctx, h, h.EffectiveState()); err != nil {
			return err
		}
		dirty.add(h.Ref().Parent)
	}
	dirty.flush(e.host)
	return nil
}

// dirtySet collects parents to mark dirty once per operation
type dirtySet struct {
	order []prefab.Ref
	seen  map[prefab.Ref]struct{}
}

func newDirtySet() *dirtySet {
	return &dirtySet{seen: make(map[prefab.Ref]struct{})}
}

func (d *dirtySet) add(p prefab.Ref) {
	if _, ok := d.seen[p]; ok {
		return
	}
	d.seen[p] = struct{}{}
	d.order = append(d.order, p)
}

func (d *dirtySet) flush(r prefab.Renderer) {
	for _, p := range d.order {
		r.MarkDirty(p)
	}
}

func withError(metadata map[string]interface{}, err error) map[string]interface{} {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["error"] = err.Error()
	return metadata
}

// isInvalidSlot reports whether err is a stale slot reference
func isInvalidSlot(err error) bool {
	var invalid *shared.InvalidSlotReferenceError
	return errors.As(err, &invalid)
}
