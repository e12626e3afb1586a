package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

// Request kinds, taken from the request type's suffix
const (
	kindCommand = "command"
	kindQuery   = "query"
	kindOther   = "other"
)

// CommandMetricsCollector tracks mediator traffic: every command and query
// the CLI dispatches, and why the failed ones failed
type CommandMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Mediator request duration by request type",
				// Engine edits touch at most a few thousand slots
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"request", "kind"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Commands and queries dispatched by type and outcome",
			},
			[]string{"request", "kind", "status"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_failures_total",
				Help:      "Failed requests by type and failure reason",
			},
			[]string{"request", "reason"},
		),
	}
}

// Register registers all command metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	return register(c.requestDuration, c.requestsTotal, c.failuresTotal)
}

// RecordRequest records one dispatched request and, on failure, its reason
func (c *CommandMetricsCollector) RecordRequest(request string, durationSeconds float64, err error) {
	kind := requestKind(request)
	status := "success"
	if err != nil {
		status = "failure"
		c.failuresTotal.WithLabelValues(request, failureReason(err)).Inc()
	}
	c.requestDuration.WithLabelValues(request, kind).Observe(durationSeconds)
	c.requestsTotal.WithLabelValues(request, kind, status).Inc()
}

func requestKind(request string) string {
	switch {
	case strings.HasSuffix(request, "Command"):
		return kindCommand
	case strings.HasSuffix(request, "Query"):
		return kindQuery
	default:
		return kindOther
	}
}

// failureReason maps engine errors to a small fixed label set
func failureReason(err error) string {
	var (
		validation  *shared.ValidationError
		invalidSlot *shared.InvalidSlotReferenceError
		addedSlot   *shared.AddedSlotError
		unknownPack *shared.UnknownPackError
		unknownRec  *shared.UnknownRecordError
		unresolved  *shared.UnresolvedPrefabReferenceError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &invalidSlot):
		return "invalid_slot"
	case errors.As(err, &addedSlot):
		return "added_slot"
	case errors.As(err, &unknownPack), errors.As(err, &unknownRec):
		return "not_found"
	case errors.As(err, &unresolved):
		return "unresolved"
	default:
		return "error"
	}
}
