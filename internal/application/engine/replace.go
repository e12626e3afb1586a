package engine

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/added"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
	"github.com/andrescamacho/bob-go/pkg/utils"
)

// ReplaceParams describes a replacement to create, or an edit of Existing
type ReplaceParams struct {
	Tier       replacement.Tier `validate:"gte=0,lte=3"`
	ParentKind prefab.Kind
	Parent     string
	Lane       int `validate:"gte=-1"`
	Slot       int `validate:"gte=-1"`

	Target      prefab.Ref
	Replacement prefab.Ref

	Angle          float64 `validate:"gte=-360,lte=360"`
	Offset         prefab.Vector3
	Probability    int     `validate:"gte=0,lte=100"`
	RepeatDistance float64 `validate:"gte=0"`
	CustomHeight   bool

	// Existing is the record being edited; nil creates a new record
	Existing *replacement.Record `validate:"-"`
}

// NewCandidate builds an unsaved record from params, as used for previews
func NewCandidate(params ReplaceParams) *replacement.Record {
	lane := params.Lane
	if params.ParentKind == prefab.KindBuilding {
		lane = prefab.NoLane
	}
	rec := &replacement.Record{
		Tier:           params.Tier,
		ParentKind:     params.ParentKind,
		Target:         params.Target,
		Replacement:    params.Replacement,
		Angle:          params.Angle,
		Offset:         params.Offset,
		Probability:    params.Probability,
		RepeatDistance: params.RepeatDistance,
		CustomHeight:   params.CustomHeight,
	}
	switch params.Tier {
	case replacement.TierIndividual:
		rec.Parent, rec.Lane, rec.Slot = params.Parent, lane, params.Slot
	case replacement.TierGrouped:
		rec.Parent, rec.Lane, rec.Slot = params.Parent, prefab.NoLane, -1
	default:
		rec.Lane, rec.Slot = prefab.NoLane, -1
	}
	return rec
}

// Replace creates or edits a replacement record and applies it to every slot
// in its scope. Matching slots are computed before anything is mutated.
func (e *Engine) Replace(ctx context.Context, params ReplaceParams) (*replacement.Record, error) {
	logger := common.LoggerFromContext(ctx)

	if err := e.check(params); err != nil {
		logger.Log(common.LevelError, "Invalid replacement parameters", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	ks, err := e.stores(params.ParentKind)
	if err != nil {
		return nil, err
	}
	if params.Tier == replacement.TierPack || !ks.supports(params.Tier) {
		return nil, shared.NewValidationError("tier", fmt.Sprintf("%s replacements cannot be set directly on %s prefabs", params.Tier, params.ParentKind))
	}

	rec := NewCandidate(params)
	if rec.Tier == replacement.TierIndividual && rec.Target.IsZero() {
		original, err := e.originalOf(ctx, ks, e.individualRef(rec))
		if err != nil {
			return nil, err
		}
		rec.Target = original.Prefab
	}
	if err := e.checkRecord(rec); err != nil {
		logger.Log(common.LevelError, "Invalid replacement", withError(rec.Metadata(), err))
		return nil, err
	}
	rec.Unresolved = !e.resolvable(rec.Target) || !e.resolvable(rec.Replacement)

	existing := params.Existing
	if existing == nil {
		if occupant := ks.lookup(rec); occupant != nil {
			dup := shared.NewDuplicateActiveRecordError(rec.Tier.String(), e.keyString(rec))
			logger.Log(common.LevelWarn, "Replacement already active, editing it in place", withError(occupant.Metadata(), dup))
			existing = occupant
		}
	} else if ks.lookup(existing) != existing {
		err := shared.NewUnknownRecordError(existing.ID)
		logger.Log(common.LevelError, "Cannot edit replacement", withError(existing.Metadata(), err))
		return nil, err
	}

	if existing != nil && existing.SameKey(rec) {
		if err := e.editInPlace(ctx, ks, existing, rec); err != nil {
			return nil, err
		}
		logger.Log(common.LevelInfo, "Replacement updated", existing.Metadata())
		return existing, nil
	}

	refs, err := e.scope(ctx, ks, rec)
	if err != nil {
		logger.Log(common.LevelError, "Failed to resolve replacement scope", withError(rec.Metadata(), err))
		return nil, err
	}

	if existing != nil {
		if occupant := ks.lookup(rec); occupant != nil && occupant != existing {
			dup := shared.NewDuplicateActiveRecordError(rec.Tier.String(), e.keyString(rec))
			logger.Log(common.LevelWarn, "Cannot move replacement onto an active record", withError(occupant.Metadata(), dup))
			return nil, dup
		}
		// Moving to another key keeps the record's identity
		if err := e.uninstall(ctx, ks, existing); err != nil {
			return nil, err
		}
		rec.ID = existing.ID
	} else {
		rec.ID = utils.GenerateRecordID(rec.Tier.String())
	}

	ks.put(rec)
	if err := e.install(ctx, ks, rec, refs); err != nil {
		return nil, err
	}
	logger.Log(common.LevelInfo, "Replacement applied", withCount(rec.Metadata(), len(refs)))
	return rec, nil
}

// RemoveReplacement deletes rec and lets every slot it covered fall through
// to the next tier or its baseline
func (e *Engine) RemoveReplacement(ctx context.Context, rec *replacement.Record) error {
	logger := common.LoggerFromContext(ctx)
	if rec == nil {
		return shared.NewValidationError("record", "record is required")
	}
	ks, err := e.stores(rec.ParentKind)
	if err != nil {
		return err
	}
	if ks.lookup(rec) != rec {
		err := shared.NewUnknownRecordError(rec.ID)
		logger.Log(common.LevelError, "Cannot remove replacement", withError(rec.Metadata(), err))
		return err
	}
	if err := e.uninstall(ctx, ks, rec); err != nil {
		return err
	}
	if rec.Tier == replacement.TierPack {
		if err := e.reinstatePackFallback(ctx, ks, rec.Pack, rec.Target); err != nil {
			return err
		}
	}
	logger.Log(common.LevelInfo, "Replacement removed", rec.Metadata())
	return nil
}

// checkRecord validates the prefab references of a record
func (e *Engine) checkRecord(rec *replacement.Record) error {
	if rec.Target.IsZero() {
		return shared.NewValidationError("target", "target prefab is required")
	}
	if rec.Replacement.IsZero() {
		return shared.NewValidationError("replacement", "replacement prefab is required")
	}
	if !rec.Target.Kind.IsContent() || rec.Target.Kind != rec.Replacement.Kind {
		return shared.NewValidationError("replacement", fmt.Sprintf("%s cannot replace %s", rec.Replacement, rec.Target))
	}
	if (rec.Tier == replacement.TierIndividual || rec.Tier == replacement.TierGrouped) && rec.Parent == "" {
		return shared.NewValidationError("parent", "parent prefab is required")
	}
	return nil
}

// resolvable reports whether p names a loaded prefab or a random prefab
func (e *Engine) resolvable(p prefab.Ref) bool {
	if p.IsZero() {
		return false
	}
	if _, ok := e.randoms.Resolve(p.Kind, p.Name); ok {
		return true
	}
	_, ok := e.host.Resolve(p.Kind, p.Name)
	return ok
}

func (e *Engine) individualRef(rec *replacement.Record) prefab.InstanceRef {
	return prefab.InstanceRef{Parent: prefab.NewRef(rec.ParentKind, rec.Parent), Lane: rec.Lane, Slot: rec.Slot}
}

func (e *Engine) keyString(rec *replacement.Record) string {
	switch rec.Tier {
	case replacement.TierIndividual:
		return replacement.IndividualKeyOf(rec).String()
	case replacement.TierGrouped:
		return replacement.GroupedKeyOf(rec).String()
	default:
		return rec.Target.String()
	}
}

// scope computes every slot rec applies to, validating each one
func (e *Engine) scope(ctx context.Context, ks *kindStores, rec *replacement.Record) ([]prefab.InstanceRef, error) {
	switch rec.Tier {
	case replacement.TierIndividual:
		ref := e.individualRef(rec)
		if ks.added.IsAdded(added.Key{Parent: rec.Parent, Lane: rec.Lane}, rec.Slot) {
			return nil, shared.NewAddedSlotError(rec.Parent, rec.Lane, rec.Slot, true)
		}
		original, err := e.originalOf(ctx, ks, ref)
		if err != nil {
			return nil, err
		}
		if original.Prefab != rec.Target {
			return nil, shared.NewValidationError("target", fmt.Sprintf("slot %s holds %s, not %s", ref, original.Prefab, rec.Target))
		}
		return []prefab.InstanceRef{ref}, nil
	case replacement.TierGrouped:
		return e.matchingSlots(ctx, ks, []prefab.Ref{prefab.NewRef(rec.ParentKind, rec.Parent)}, rec.Target)
	default:
		return e.matchingSlots(ctx, ks, e.host.Loaded(ks.kind), rec.Target)
	}
}

// matchingSlots enumerates the original slots of parents whose baseline
// prefab is target. Added slots never match.
func (e *Engine) matchingSlots(ctx context.Context, ks *kindStores, parents []prefab.Ref, target prefab.Ref) ([]prefab.InstanceRef, error) {
	refs := make([]prefab.InstanceRef, 0)
	for _, parent := range parents {
		lanes, err := e.lanes(parent)
		if err != nil {
			return nil, err
		}
		for _, lane := range lanes {
			count, err := e.host.SlotCount(parent, lane)
			if err != nil {
				return nil, err
			}
			for slot := 0; slot < count; slot++ {
				if ks.added.IsAdded(added.Key{Parent: parent.Name, Lane: lane}, slot) {
					continue
				}
				ref := prefab.InstanceRef{Parent: parent, Lane: lane, Slot: slot}
				original, err := e.originalOf(ctx, ks, ref)
				if err != nil {
					return nil, err
				}
				if original.Prefab == target {
					refs = append(refs, ref)
				}
			}
		}
	}
	return refs, nil
}

// install sets rec on the handlers of refs and writes their new state.
// Handlers are created first so a failing slot leaves no tier touched.
func (e *Engine) install(ctx context.Context, ks *kindStores, rec *replacement.Record, refs []prefab.InstanceRef) error {
	handlers := make([]*replacement.Handler, 0, len(refs))
	for _, ref := range refs {
		h, err := e.handlerFor(ctx, ks, ref)
		if err != nil {
			return err
		}
		handlers = append(handlers, h)
	}

	dirty := newDirtySet()
	for _, h := range handlers {
		h.EndPreview()
		h.Set(rec)
		if err := e.write(ctx, h, h.EffectiveState()); err != nil {
			return err
		}
		dirty.add(h.Ref().Parent)
	}
	dirty.flush(e.host)
	e.metrics.RecordReplacementApplied(ks.kind, rec.Tier, len(handlers))
	return nil
}

// uninstall deletes rec from its store and clears it from every handler
func (e *Engine) uninstall(ctx context.Context, ks *kindStores, rec *replacement.Record) error {
	e.reclaimScope(ctx, ks, rec)
	ks.remove(rec)
	dirty := newDirtySet()
	for _, h := range ks.handlers.Referencing(rec) {
		h.EndPreview()
		h.Clear(rec)
		if err := e.write(ctx, h, h.EffectiveState()); err != nil {
			return err
		}
		dirty.add(h.Ref().Parent)
	}
	dirty.flush(e.host)
	e.metrics.RecordReplacementRemoved(ks.kind, rec.Tier)
	return nil
}

// editInPlace copies the editable fields of edit onto existing and rewrites
// every slot existing covers. Repeating the same edit is a no-op.
func (e *Engine) editInPlace(ctx context.Context, ks *kindStores, existing, edit *replacement.Record) error {
	e.reclaimScope(ctx, ks, existing)
	existing.Replacement = edit.Replacement
	existing.Angle = edit.Angle
	existing.Offset = edit.Offset
	existing.Probability = edit.Probability
	existing.RepeatDistance = edit.RepeatDistance
	existing.CustomHeight = edit.CustomHeight
	existing.Unresolved = edit.Unresolved
	return e.refresh(ctx, ks, existing)
}

func withCount(metadata map[string]interface{}, slots int) map[string]interface{} {
	metadata["slots"] = slots
	return metadata
}
