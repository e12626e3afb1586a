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

// AddParams describes a prop or tree to inject into a parent prefab.
// Position is absolute within the parent.
type AddParams struct {
	ParentKind prefab.Kind
	Parent     string `validate:"required"`
	Lane       int    `validate:"gte=-1"`

	Prefab         prefab.Ref
	Angle          float64 `validate:"gte=-360,lte=360"`
	Position       prefab.Vector3
	Probability    int     `validate:"gte=0,lte=100"`
	RepeatDistance float64 `validate:"gte=0"`
	CustomHeight   bool

	// ID keeps the identity of a record being restored from a document
	ID string `validate:"-"`
}

// UpdateAddedParams edits the added slot at Index
type UpdateAddedParams struct {
	ParentKind prefab.Kind
	Parent     string `validate:"required"`
	Lane       int    `validate:"gte=-1"`
	Index      int    `validate:"gte=0"`

	Prefab         prefab.Ref
	Angle          float64 `validate:"gte=-360,lte=360"`
	Position       prefab.Vector3
	Probability    int     `validate:"gte=0,lte=100"`
	RepeatDistance float64 `validate:"gte=0"`
	CustomHeight   bool
}

// AddNew appends a synthetic slot to a parent (one lane of a network) and
// returns its record and index. Prefabs that are not loaded are kept pending
// until Reresolve finds them.
func (e *Engine) AddNew(ctx context.Context, params AddParams) (*replacement.Record, int, error) {
	logger := common.LoggerFromContext(ctx)
	if err := e.check(params); err != nil {
		logger.Log(common.LevelError, "Invalid added prop parameters", map[string]interface{}{"error": err.Error()})
		return nil, -1, err
	}
	ks, err := e.stores(params.ParentKind)
	if err != nil {
		return nil, -1, err
	}
	if !params.Prefab.Kind.IsContent() || params.Prefab.Name == "" {
		return nil, -1, shared.NewValidationError("prefab", fmt.Sprintf("%s cannot be added to a parent", params.Prefab))
	}

	lane := params.Lane
	if params.ParentKind == prefab.KindBuilding {
		lane = prefab.NoLane
	}
	parent := prefab.NewRef(params.ParentKind, params.Parent)
	if err := e.checkLane(parent, lane); err != nil {
		logger.Log(common.LevelError, "Cannot add prop", map[string]interface{}{"parent": params.Parent, "lane": lane, "error": err.Error()})
		return nil, -1, err
	}

	id := params.ID
	if id == "" {
		id = utils.GenerateRecordID(replacement.TierAdded.String())
	}
	rec := &replacement.Record{
		ID:             id,
		Tier:           replacement.TierAdded,
		ParentKind:     params.ParentKind,
		Parent:         params.Parent,
		Lane:           lane,
		Slot:           -1,
		Target:         params.Prefab,
		Replacement:    params.Prefab,
		Angle:          params.Angle,
		Offset:         params.Position,
		Probability:    params.Probability,
		RepeatDistance: params.RepeatDistance,
		CustomHeight:   params.CustomHeight,
		Unresolved:     !e.resolvable(params.Prefab),
	}

	if rec.Unresolved {
		ks.pendingAdded = append(ks.pendingAdded, rec)
		logger.Log(common.LevelWarn, "Added prop prefab is not loaded, keeping it pending", rec.Metadata())
		return rec, -1, nil
	}

	index, err := e.attach(ks, rec)
	if err != nil {
		logger.Log(common.LevelError, "Failed to append slot", withError(rec.Metadata(), err))
		return nil, -1, err
	}
	logger.Log(common.LevelInfo, "Prop added", rec.Metadata())
	return rec, index, nil
}

// attach appends the live slot of an added record and registers it
func (e *Engine) attach(ks *kindStores, rec *replacement.Record) (int, error) {
	parent := prefab.NewRef(rec.ParentKind, rec.Parent)
	index, err := e.host.AppendSlot(parent, rec.Lane, rec.AddedState())
	if err != nil {
		return -1, err
	}
	ks.added.Add(added.Key{Parent: rec.Parent, Lane: rec.Lane}, index, rec)
	e.host.MarkDirty(parent)
	e.metrics.RecordAddedProp(ks.kind, 1)
	return index, nil
}

// RemoveNew removes an added slot. Later added slots of the same lane are
// renumbered down by one; a handler keyed to the removed index is dropped.
func (e *Engine) RemoveNew(ctx context.Context, parentKind prefab.Kind, parent string, lane, index int) error {
	logger := common.LoggerFromContext(ctx)
	ks, err := e.stores(parentKind)
	if err != nil {
		return err
	}
	if parentKind == prefab.KindBuilding {
		lane = prefab.NoLane
	}
	ref := prefab.InstanceRef{Parent: prefab.NewRef(parentKind, parent), Lane: lane, Slot: index}
	key := added.Key{Parent: parent, Lane: lane}
	if !ks.added.IsAdded(key, index) {
		err := shared.NewAddedSlotError(parent, lane, index, false)
		logger.Log(common.LevelError, "Cannot remove prop", withError(ref.Metadata(), err))
		return err
	}

	if err := e.host.RemoveSlot(ref); err != nil {
		logger.Log(common.LevelError, "Failed to remove slot", withError(ref.Metadata(), err))
		return err
	}
	ks.added.Remove(key, index)
	if h := ks.handlers.Shift(parent, lane, index); h != nil {
		logger.Log(common.LevelDebug, "Dropped handler of removed slot", h.Ref().Metadata())
	}
	e.host.MarkDirty(ref.Parent)
	e.metrics.RecordAddedProp(ks.kind, -1)
	logger.Log(common.LevelInfo, "Prop removed", ref.Metadata())
	return nil
}

// UpdateAdded edits an added slot's record and its live slot in place
func (e *Engine) UpdateAdded(ctx context.Context, params UpdateAddedParams) error {
	logger := common.LoggerFromContext(ctx)
	if err := e.check(params); err != nil {
		return err
	}
	ks, err := e.stores(params.ParentKind)
	if err != nil {
		return err
	}
	lane := params.Lane
	if params.ParentKind == prefab.KindBuilding {
		lane = prefab.NoLane
	}
	ref := prefab.InstanceRef{Parent: prefab.NewRef(params.ParentKind, params.Parent), Lane: lane, Slot: params.Index}
	entry := ks.added.Get(added.Key{Parent: params.Parent, Lane: lane}, params.Index)
	if entry == nil {
		err := shared.NewAddedSlotError(params.Parent, lane, params.Index, false)
		logger.Log(common.LevelError, "Cannot update prop", withError(ref.Metadata(), err))
		return err
	}
	if !params.Prefab.Kind.IsContent() || !e.resolvable(params.Prefab) {
		err := shared.NewUnresolvedPrefabReferenceError(params.Prefab.Name, params.Prefab.Kind.String())
		logger.Log(common.LevelError, "Cannot update prop", withError(ref.Metadata(), err))
		return err
	}

	rec := entry.Record
	rec.Target = params.Prefab
	rec.Replacement = params.Prefab
	rec.Angle = params.Angle
	rec.Offset = params.Position
	rec.Probability = params.Probability
	rec.RepeatDistance = params.RepeatDistance
	rec.CustomHeight = params.CustomHeight

	if err := e.host.SetSlot(ref, rec.AddedState()); err != nil {
		logger.Log(common.LevelError, "Failed to write slot", withError(ref.Metadata(), err))
		return err
	}
	e.host.MarkDirty(ref.Parent)
	logger.Log(common.LevelInfo, "Prop updated", rec.Metadata())
	return nil
}

// IsAdded reports whether index is a user-added slot
func (e *Engine) IsAdded(parentKind prefab.Kind, parent string, lane, index int) bool {
	ks, err := e.stores(parentKind)
	if err != nil {
		return false
	}
	if parentKind == prefab.KindBuilding {
		lane = prefab.NoLane
	}
	return ks.added.IsAdded(added.Key{Parent: parent, Lane: lane}, index)
}

// checkLane verifies lane exists on parent
func (e *Engine) checkLane(parent prefab.Ref, lane int) error {
	if parent.Kind == prefab.KindBuilding {
		_, err := e.host.SlotCount(parent, prefab.NoLane)
		return err
	}
	count, err := e.host.LaneCount(parent)
	if err != nil {
		return err
	}
	if lane < 0 || lane >= count {
		return shared.NewValidationError("lane", fmt.Sprintf("%s has no lane %d", parent.Name, lane))
	}
	return nil
}
