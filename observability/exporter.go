package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownCallback flushes the pending metrics and stops the exporter.
type ShutdownCallback func(ctx context.Context) error

// NewConsoleMetricsExporter serves for test/dev environment.
// The rbtree stats are pushed to the stdout (or the stdoutmetric.WithWriter)
// by every interval and once more on shutdown.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownCallback, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusMetricsExporter serves for the product environment.
// The stats are registered into the prometheus default registerer and
// fetched by HTTP through MetricsHandler.
func NewPrometheusMetricsExporter(opts ...prometheus.Option) (ShutdownCallback, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
