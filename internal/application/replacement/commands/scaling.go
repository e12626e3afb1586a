package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/scaling"
)

// Scale bounds accepted by ScaleCommand
const (
	BoundMin = "min"
	BoundMax = "max"
)

// ScaleCommand sets one bound of a prefab's scale range
type ScaleCommand struct {
	Prefab prefab.Ref
	Bound  string // "min" or "max"
	Value  float64
}

// ScaleResponse represents the resulting override
type ScaleResponse struct {
	Override *scaling.Override
}

// ScaleHandler handles the Scale command
type ScaleHandler struct {
	engine *engine.Engine
}

// NewScaleHandler creates a new ScaleHandler
func NewScaleHandler(e *engine.Engine) *ScaleHandler {
	return &ScaleHandler{engine: e}
}

// Handle executes the Scale command
func (h *ScaleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ScaleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ScaleCommand")
	}

	var (
		o   *scaling.Override
		err error
	)
	switch cmd.Bound {
	case BoundMin:
		o, err = h.engine.ApplyMinScale(ctx, cmd.Prefab, cmd.Value)
	case BoundMax:
		o, err = h.engine.ApplyMaxScale(ctx, cmd.Prefab, cmd.Value)
	default:
		return nil, fmt.Errorf("unknown scale bound %q", cmd.Bound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply scale: %w", err)
	}
	return &ScaleResponse{Override: o}, nil
}

// RevertScaleCommand restores a prefab's own scale range
type RevertScaleCommand struct {
	Prefab      prefab.Ref
	RemoveEntry bool
}

// RevertScaleHandler handles the RevertScale command
type RevertScaleHandler struct {
	engine *engine.Engine
}

// NewRevertScaleHandler creates a new RevertScaleHandler
func NewRevertScaleHandler(e *engine.Engine) *RevertScaleHandler {
	return &RevertScaleHandler{engine: e}
}

// Handle executes the RevertScale command
func (h *RevertScaleHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RevertScaleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RevertScaleCommand")
	}

	if err := h.engine.RevertScale(ctx, cmd.Prefab, cmd.RemoveEntry); err != nil {
		return nil, fmt.Errorf("failed to revert scale: %w", err)
	}
	return struct{}{}, nil
}
