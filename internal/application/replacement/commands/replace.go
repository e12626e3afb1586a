package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// ReplaceCommand creates a replacement, or edits the record named by
// ExistingID
type ReplaceCommand struct {
	Params     engine.ReplaceParams
	ExistingID string // Optional: ID of the record to edit or move
}

// ReplaceResponse represents the result of a replacement
type ReplaceResponse struct {
	Record *replacement.Record
}

// ReplaceHandler handles the Replace command
type ReplaceHandler struct {
	engine *engine.Engine
}

// NewReplaceHandler creates a new ReplaceHandler
func NewReplaceHandler(e *engine.Engine) *ReplaceHandler {
	return &ReplaceHandler{engine: e}
}

// Handle executes the Replace command
func (h *ReplaceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReplaceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReplaceCommand")
	}

	params := cmd.Params
	if cmd.ExistingID != "" {
		existing := h.engine.FindRecord(params.ParentKind, cmd.ExistingID)
		if existing == nil {
			return nil, fmt.Errorf("record %s not found", cmd.ExistingID)
		}
		params.Existing = existing
	}

	rec, err := h.engine.Replace(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to apply replacement: %w", err)
	}
	return &ReplaceResponse{Record: rec}, nil
}
