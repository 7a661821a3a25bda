// Package metrics exposes request and job metrics through OpenTelemetry with
// a Prometheus exporter served on a separate diagnostics listener.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

const ServiceName = "conduit"

// Latency buckets in milliseconds.
var latencyBoundaries = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type Metrics struct {
	exporter *prometheus.Exporter

	requests  metric.Int64Counter
	latency   metric.Float64ValueRecorder
	reconcile metric.Int64Counter
}

// New builds the meter pipeline and installs it as the global provider.
func New() (*Metrics, error) {
	config := prometheus.Config{DefaultHistogramBoundaries: latencyBoundaries}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)
	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := exporter.MeterProvider().Meter(ServiceName)
	m := &Metrics{exporter: exporter}
	m.requests = metric.Must(meter).NewInt64Counter(
		"http.server.requests",
		metric.WithDescription("Count of completed requests, by HTTP method, route and response status"),
	)
	m.latency = metric.Must(meter).NewFloat64ValueRecorder(
		"http.server.duration",
		metric.WithDescription("Request latency in milliseconds"),
	)
	m.reconcile = metric.Must(meter).NewInt64Counter(
		"favorites.reconcile.corrected",
		metric.WithDescription("Articles whose favorites count was corrected by reconciliation"),
	)
	return m, nil
}

// Middleware records one request count and latency sample per request,
// labelled by the matched route rather than the raw path.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		}
		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, labels...)
		m.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, labels...)
	}
}

// RecordReconcile adds the number of corrected articles of one run.
func (m *Metrics) RecordReconcile(ctx context.Context, corrected int64) {
	m.reconcile.Add(ctx, corrected)
}

// Handler serves the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return m.exporter
}

// NewDiagnosticsServer returns the listener that serves /metrics, kept off
// the public API port.
func NewDiagnosticsServer(addr string, m *Metrics) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
