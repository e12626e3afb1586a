package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
)

// SetPackStatusCommand applies or reverts a replacement pack
type SetPackStatusCommand struct {
	Name  string
	Apply bool
}

// SetPackStatusResponse reports the warnings raised while applying
type SetPackStatusResponse struct {
	Applied      bool
	Conflicts    bool
	NotAllLoaded bool
}

// SetPackStatusHandler handles the SetPackStatus command
type SetPackStatusHandler struct {
	engine *engine.Engine
}

// NewSetPackStatusHandler creates a new SetPackStatusHandler
func NewSetPackStatusHandler(e *engine.Engine) *SetPackStatusHandler {
	return &SetPackStatusHandler{engine: e}
}

// Handle executes the SetPackStatus command
func (h *SetPackStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SetPackStatusCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetPackStatusCommand")
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("pack name is required")
	}

	// Conflicts are checked before applying, against the other applied packs
	conflicts := cmd.Apply && h.engine.Conflicts(cmd.Name)
	if err := h.engine.SetPackStatus(ctx, cmd.Name, cmd.Apply); err != nil {
		return nil, fmt.Errorf("failed to set pack status: %w", err)
	}
	return &SetPackStatusResponse{
		Applied:      h.engine.PackApplied(cmd.Name),
		Conflicts:    conflicts,
		NotAllLoaded: h.engine.PackNotAllLoaded(cmd.Name),
	}, nil
}
