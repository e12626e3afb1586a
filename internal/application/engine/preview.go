package engine

import (
	"context"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// PreviewReplacement renders candidate on h's slot without storing anything.
// Calling it again replaces the earlier preview.
func (e *Engine) PreviewReplacement(ctx context.Context, h *replacement.Handler, candidate *replacement.Record) error {
	if h == nil || candidate == nil {
		return nil
	}
	state := h.BeginPreview(candidate)
	if err := e.write(ctx, h, state); err != nil {
		h.EndPreview()
		return err
	}
	e.host.MarkDirty(h.Ref().Parent)
	e.metrics.RecordPreview(h.Ref().Parent.Kind)

	metadata := h.Ref().Metadata()
	metadata["replacement"] = candidate.Replacement.Name
	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Previewing replacement", metadata)
	return nil
}

// ClearPreview restores the committed state of h. No-op without a preview.
func (e *Engine) ClearPreview(ctx context.Context, h *replacement.Handler) error {
	if h == nil || !h.EndPreview() {
		return nil
	}
	if err := e.write(ctx, h, h.EffectiveState()); err != nil {
		return err
	}
	e.host.MarkDirty(h.Ref().Parent)
	return nil
}

// ClearAllPreviews drops every active preview, as when the editing panel closes
func (e *Engine) ClearAllPreviews(ctx context.Context) error {
	for _, ks := range e.kinds {
		for _, h := range ks.handlers.All() {
			if err := e.ClearPreview(ctx, h); err != nil {
				return err
			}
		}
	}
	return nil
}
