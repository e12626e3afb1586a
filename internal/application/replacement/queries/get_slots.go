package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// GetSlotsQuery lists the prop/tree slots of one parent prefab, grouped the
// way the editor shows them
type GetSlotsQuery struct {
	ParentKind prefab.Kind
	Parent     string
}

// SlotGroup is one logical item: every slot sharing an original and the
// same records at every tier
type SlotGroup struct {
	Key       replacement.GroupKey
	Slots     []prefab.InstanceRef
	Original  prefab.SlotState
	Effective *replacement.Record
	Records   []*replacement.Record
}

// GetSlotsResponse represents the slots of a parent
type GetSlotsResponse struct {
	Groups []SlotGroup
	Added  []*replacement.Record
}

// GetSlotsHandler handles the GetSlots query
type GetSlotsHandler struct {
	engine *engine.Engine
}

// NewGetSlotsHandler creates a new GetSlotsHandler
func NewGetSlotsHandler(e *engine.Engine) *GetSlotsHandler {
	return &GetSlotsHandler{engine: e}
}

// Handle executes the GetSlots query
func (h *GetSlotsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetSlotsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetSlotsQuery")
	}
	if query.Parent == "" {
		return nil, fmt.Errorf("parent is required")
	}

	groups, err := h.engine.Groups(ctx, query.ParentKind, query.Parent)
	if err != nil {
		return nil, fmt.Errorf("failed to group slots: %w", err)
	}

	keys := make([]replacement.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	replacement.SortGroupKeys(keys)

	response := &GetSlotsResponse{}
	for _, k := range keys {
		slots := groups[k]
		group := SlotGroup{Key: k, Slots: slots}
		// Every slot of a group shares its records, so the first one speaks for all
		if handler := h.engine.GetHandler(slots[0]); handler != nil {
			group.Original = handler.Original()
			group.Effective = handler.Effective()
			group.Records = handler.Active()
		} else if original, err := h.engine.Original(ctx, slots[0]); err == nil {
			group.Original = original
		}
		response.Groups = append(response.Groups, group)
	}

	for _, rec := range h.engine.Records(query.ParentKind, replacement.TierAdded) {
		if rec.Parent == query.Parent {
			response.Added = append(response.Added, rec)
		}
	}
	return response, nil
}
