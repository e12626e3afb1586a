package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/bob-go/internal/application/common"
)

// PrometheusMiddleware records the duration and outcome of every request
// sent through the mediator
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		commandName := extractCommandName(request)
		start := time.Now()

		response, err := next(ctx, request)

		collector.RecordRequest(commandName, time.Since(start).Seconds(), err)
		return response, err
	}
}

// extractCommandName strips the pointer and package prefix from the request type:
// "*commands.ReplaceCommand" becomes "ReplaceCommand"
func extractCommandName(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	parts := strings.Split(fullName, ".")
	return parts[len(parts)-1]
}
