package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// RemoveReplacementCommand reverts one stored replacement by ID
type RemoveReplacementCommand struct {
	ParentKind prefab.Kind
	RecordID   string
}

// RemoveReplacementResponse represents the result of a revert
type RemoveReplacementResponse struct {
	Record *replacement.Record
}

// RemoveReplacementHandler handles the RemoveReplacement command
type RemoveReplacementHandler struct {
	engine *engine.Engine
}

// NewRemoveReplacementHandler creates a new RemoveReplacementHandler
func NewRemoveReplacementHandler(e *engine.Engine) *RemoveReplacementHandler {
	return &RemoveReplacementHandler{engine: e}
}

// Handle executes the RemoveReplacement command
func (h *RemoveReplacementHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RemoveReplacementCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RemoveReplacementCommand")
	}
	if cmd.RecordID == "" {
		return nil, fmt.Errorf("record_id is required")
	}

	rec := h.engine.FindRecord(cmd.ParentKind, cmd.RecordID)
	if rec == nil || rec.Tier == replacement.TierAdded {
		return nil, fmt.Errorf("replacement %s not found", cmd.RecordID)
	}
	if err := h.engine.RemoveReplacement(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to remove replacement: %w", err)
	}
	return &RemoveReplacementResponse{Record: rec}, nil
}
