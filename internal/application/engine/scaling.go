package engine

import (
	"context"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/scaling"
)

// ApplyMinScale sets the minimum scale of a tree or prop prefab
func (e *Engine) ApplyMinScale(ctx context.Context, p prefab.Ref, value float64) (*scaling.Override, error) {
	return e.applyScale(ctx, p, value, "min", e.scaling.ApplyMin)
}

// ApplyMaxScale sets the maximum scale of a tree or prop prefab
func (e *Engine) ApplyMaxScale(ctx context.Context, p prefab.Ref, value float64) (*scaling.Override, error) {
	return e.applyScale(ctx, p, value, "max", e.scaling.ApplyMax)
}

func (e *Engine) applyScale(ctx context.Context, p prefab.Ref, value float64, bound string, apply func(prefab.Ref, float64) (*scaling.Override, error)) (*scaling.Override, error) {
	logger := common.LoggerFromContext(ctx)
	metadata := map[string]interface{}{"prefab": p.Name, "kind": p.Kind.String(), "bound": bound, "value": value}

	o, err := apply(p, value)
	if err != nil {
		logger.Log(common.LevelError, "Failed to apply scale", withError(metadata, err))
		return nil, err
	}
	e.host.MarkDirty(p)
	metadata["min"], metadata["max"] = o.Min, o.Max
	logger.Log(common.LevelInfo, "Scale applied", metadata)
	return o, nil
}

// RevertScale restores a prefab's own scale range. removeEntry also drops
// the override so it is no longer persisted.
func (e *Engine) RevertScale(ctx context.Context, p prefab.Ref, removeEntry bool) error {
	logger := common.LoggerFromContext(ctx)
	metadata := map[string]interface{}{"prefab": p.Name, "kind": p.Kind.String(), "remove_entry": removeEntry}
	if err := e.scaling.Revert(p, removeEntry); err != nil {
		logger.Log(common.LevelError, "Failed to revert scale", withError(metadata, err))
		return err
	}
	e.host.MarkDirty(p)
	logger.Log(common.LevelInfo, "Scale reverted", metadata)
	return nil
}
