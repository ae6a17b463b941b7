// Package observability provides OpenTelemetry instrumentation for tracing
// and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a
// Prometheus exporter. It returns the HTTP handler for the /metrics endpoint
// and a shutdown function to be called on exit.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// JobMetrics holds the instruments recorded per docking job.
type JobMetrics struct {
	jobs     metric.Int64Counter
	duration metric.Float64Histogram
}

// NewJobMetrics registers the docking job instruments on the global meter.
func NewJobMetrics() (*JobMetrics, error) {
	meter := otel.Meter("dockflow")

	jobs, err := meter.Int64Counter("dockflow.jobs.total",
		metric.WithDescription("Docking jobs processed, by outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("dockflow.job.duration.seconds",
		metric.WithDescription("Wall time per docking job"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &JobMetrics{jobs: jobs, duration: duration}, nil
}

// Record counts one finished job and its duration.
func (m *JobMetrics) Record(ctx context.Context, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.jobs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.duration.Record(ctx, seconds)
}
