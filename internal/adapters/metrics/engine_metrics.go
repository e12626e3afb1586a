package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// EngineMetricsCollector records replacement engine events. It satisfies
// engine.MetricsRecorder.
type EngineMetricsCollector struct {
	replacementsApplied *prometheus.CounterVec
	slotsReplaced       *prometheus.CounterVec
	replacementsRemoved *prometheus.CounterVec
	previews            *prometheus.CounterVec
	invalidSlots        *prometheus.CounterVec
	handlers            *prometheus.GaugeVec
	addedProps          *prometheus.GaugeVec
	packsApplied        *prometheus.GaugeVec
}

// NewEngineMetricsCollector creates a new engine metrics collector
func NewEngineMetricsCollector() *EngineMetricsCollector {
	return &EngineMetricsCollector{
		replacementsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replacements_applied_total",
				Help:      "Total number of replacement records applied by parent kind and tier",
			},
			[]string{"parent_kind", "tier"},
		),

		slotsReplaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "slots_replaced_total",
				Help:      "Total number of slots written while applying replacements",
			},
			[]string{"parent_kind", "tier"},
		),

		replacementsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replacements_removed_total",
				Help:      "Total number of replacement records removed by parent kind and tier",
			},
			[]string{"parent_kind", "tier"},
		),

		previews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "previews_total",
				Help:      "Total number of replacement previews rendered",
			},
			[]string{"parent_kind"},
		),

		invalidSlots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "invalid_slot_references_total",
				Help:      "Total number of stale or out-of-range slot references",
			},
			[]string{"parent_kind"},
		),

		handlers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "handlers",
				Help:      "Number of touched slots with a replacement handler",
			},
			[]string{"parent_kind"},
		),

		addedProps: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "added_props",
				Help:      "Number of user-added props and trees",
			},
			[]string{"parent_kind"},
		),

		packsApplied: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pack_applied",
				Help:      "1 when a replacement pack is applied, 0 otherwise",
			},
			[]string{"pack"},
		),
	}
}

// Register registers all engine metrics with the Prometheus registry
func (c *EngineMetricsCollector) Register() error {
	return register(
		c.replacementsApplied,
		c.slotsReplaced,
		c.replacementsRemoved,
		c.previews,
		c.invalidSlots,
		c.handlers,
		c.addedProps,
		c.packsApplied,
	)
}

func (c *EngineMetricsCollector) RecordReplacementApplied(parentKind prefab.Kind, tier replacement.Tier, slots int) {
	c.replacementsApplied.WithLabelValues(parentKind.String(), tier.String()).Inc()
	c.slotsReplaced.WithLabelValues(parentKind.String(), tier.String()).Add(float64(slots))
}

func (c *EngineMetricsCollector) RecordReplacementRemoved(parentKind prefab.Kind, tier replacement.Tier) {
	c.replacementsRemoved.WithLabelValues(parentKind.String(), tier.String()).Inc()
}

func (c *EngineMetricsCollector) RecordPreview(parentKind prefab.Kind) {
	c.previews.WithLabelValues(parentKind.String()).Inc()
}

func (c *EngineMetricsCollector) RecordInvalidSlotReference(parentKind prefab.Kind) {
	c.invalidSlots.WithLabelValues(parentKind.String()).Inc()
}

func (c *EngineMetricsCollector) RecordHandlerCount(parentKind prefab.Kind, count int) {
	c.handlers.WithLabelValues(parentKind.String()).Set(float64(count))
}

func (c *EngineMetricsCollector) RecordPackStatus(name string, applied bool) {
	value := 0.0
	if applied {
		value = 1
	}
	c.packsApplied.WithLabelValues(name).Set(value)
}

func (c *EngineMetricsCollector) RecordAddedProp(parentKind prefab.Kind, delta int) {
	c.addedProps.WithLabelValues(parentKind.String()).Add(float64(delta))
}
