package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
)

// ResetCommand reverts every replacement, added prop, pack and scale
type ResetCommand struct{}

// ResetHandler handles the Reset command
type ResetHandler struct {
	engine *engine.Engine
}

// NewResetHandler creates a new ResetHandler
func NewResetHandler(e *engine.Engine) *ResetHandler {
	return &ResetHandler{engine: e}
}

// Handle executes the Reset command
func (h *ResetHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*ResetCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResetCommand")
	}
	if err := h.engine.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset: %w", err)
	}
	return struct{}{}, nil
}
