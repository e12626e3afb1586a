package engine

import (
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// MetricsRecorder receives engine events. Implemented by the prometheus
// adapter; the engine defaults to a no-op recorder.
type MetricsRecorder interface {
	RecordReplacementApplied(parentKind prefab.Kind, tier replacement.Tier, slots int)
	RecordReplacementRemoved(parentKind prefab.Kind, tier replacement.Tier)
	RecordPreview(parentKind prefab.Kind)
	RecordInvalidSlotReference(parentKind prefab.Kind)
	RecordHandlerCount(parentKind prefab.Kind, count int)
	RecordPackStatus(name string, applied bool)
	RecordAddedProp(parentKind prefab.Kind, delta int)
}

type noOpRecorder struct{}

func (noOpRecorder) RecordReplacementApplied(prefab.Kind, replacement.Tier, int) {}
func (noOpRecorder) RecordReplacementRemoved(prefab.Kind, replacement.Tier)      {}
func (noOpRecorder) RecordPreview(prefab.Kind)                                    {}
func (noOpRecorder) RecordInvalidSlotReference(prefab.Kind)                       {}
func (noOpRecorder) RecordHandlerCount(prefab.Kind, int)                          {}
func (noOpRecorder) RecordPackStatus(string, bool)                                {}
func (noOpRecorder) RecordAddedProp(prefab.Kind, int)                             {}
