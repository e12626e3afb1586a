package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// AddPropCommand injects a new prop or tree into a parent prefab
type AddPropCommand struct {
	Params engine.AddParams
}

// AddPropResponse represents the added slot. Index is -1 while the prefab
// is not loaded.
type AddPropResponse struct {
	Record *replacement.Record
	Index  int
}

// AddPropHandler handles the AddProp command
type AddPropHandler struct {
	engine *engine.Engine
}

// NewAddPropHandler creates a new AddPropHandler
func NewAddPropHandler(e *engine.Engine) *AddPropHandler {
	return &AddPropHandler{engine: e}
}

// Handle executes the AddProp command
func (h *AddPropHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddPropCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AddPropCommand")
	}

	rec, index, err := h.engine.AddNew(ctx, cmd.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to add prop: %w", err)
	}
	return &AddPropResponse{Record: rec, Index: index}, nil
}

// RemovePropCommand removes an added prop
type RemovePropCommand struct {
	ParentKind prefab.Kind
	Parent     string
	Lane       int
	Index      int
}

// RemovePropHandler handles the RemoveProp command
type RemovePropHandler struct {
	engine *engine.Engine
}

// NewRemovePropHandler creates a new RemovePropHandler
func NewRemovePropHandler(e *engine.Engine) *RemovePropHandler {
	return &RemovePropHandler{engine: e}
}

// Handle executes the RemoveProp command
func (h *RemovePropHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RemovePropCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemovePropCommand")
	}
	if cmd.Parent == "" {
		return nil, fmt.Errorf("parent is required")
	}

	if err := h.engine.RemoveNew(ctx, cmd.ParentKind, cmd.Parent, cmd.Lane, cmd.Index); err != nil {
		return nil, fmt.Errorf("failed to remove prop: %w", err)
	}
	return struct{}{}, nil
}

// UpdatePropCommand edits an added prop in place
type UpdatePropCommand struct {
	Params engine.UpdateAddedParams
}

// UpdatePropHandler handles the UpdateProp command
type UpdatePropHandler struct {
	engine *engine.Engine
}

// NewUpdatePropHandler creates a new UpdatePropHandler
func NewUpdatePropHandler(e *engine.Engine) *UpdatePropHandler {
	return &UpdatePropHandler{engine: e}
}

// Handle executes the UpdateProp command
func (h *UpdatePropHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdatePropCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdatePropCommand")
	}

	if err := h.engine.UpdateAdded(ctx, cmd.Params); err != nil {
		return nil, fmt.Errorf("failed to update prop: %w", err)
	}
	return struct{}{}, nil
}
