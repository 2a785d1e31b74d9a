// Package telemetry exposes Prometheus metrics for report fetches, comparisons and the HTTP API.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/datacompare/internal/contract"
	"github.com/huangsam/datacompare/schema"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "datacompare_build_info",
			Help: "Build information of datacompare",
		},
		[]string{"version", "commit", "date"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datacompare_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datacompare_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datacompare_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Report fetch metrics
	ReportFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datacompare_report_fetches_total",
			Help: "Total number of report executions",
		},
		[]string{"method", "status"},
	)

	ReportFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datacompare_report_fetch_duration_seconds",
			Help:    "Duration of report executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method"},
	)

	// Comparison metrics
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datacompare_comparisons_total",
			Help: "Total number of comparison runs",
		},
		[]string{"surface", "status"},
	)

	ComparisonVariants = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datacompare_comparison_variants",
			Help:    "Number of variants expanded per comparison",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)
)

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the route pattern if available, otherwise use the path
		path := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			path = rctx.RoutePattern()
		}
		if path == "" {
			path = r.URL.Path
		}

		status := strconv.Itoa(ww.Status())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordComparison records the outcome of one comparison run.
func RecordComparison(surface string, variants int, err error) {
	ComparisonsTotal.WithLabelValues(surface, statusLabel(err)).Inc()
	if err == nil {
		ComparisonVariants.Observe(float64(variants))
	}
}

// InstrumentedExecutor records count and latency of every report execution.
type InstrumentedExecutor struct {
	Next  contract.ReportExecutor
	Clock clockwork.Clock
}

var _ contract.ReportExecutor = &InstrumentedExecutor{}

// InstrumentExecutor wraps next with fetch metrics.
func InstrumentExecutor(next contract.ReportExecutor) *InstrumentedExecutor {
	return &InstrumentedExecutor{Next: next, Clock: clockwork.NewRealClock()}
}

// Execute delegates to the wrapped executor.
func (e *InstrumentedExecutor) Execute(ctx context.Context, method string, params map[string]any) (*schema.Table, error) {
	start := e.Clock.Now()
	table, err := e.Next.Execute(ctx, method, params)
	ReportFetchesTotal.WithLabelValues(method, statusLabel(err)).Inc()
	ReportFetchDuration.WithLabelValues(method).Observe(e.Clock.Since(start).Seconds())
	return table, err
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
