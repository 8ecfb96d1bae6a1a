package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/roadmapper/internal/llm"
)

// Metrics holds all Prometheus metrics for roadmapper.
type Metrics struct {
	// Completion backend metrics, one observation per attempt
	CompletionCalls   *prometheus.CounterVec
	CompletionLatency *prometheus.HistogramVec
	CompletionErrors  *prometheus.CounterVec

	// HTTP request metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Roadmap outcome metrics
	RoadmapPhases *prometheus.HistogramVec
	Extractions   *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CompletionCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadmapper_completion_calls_total",
				Help: "Total number of completion backend attempts",
			},
			[]string{"backend", "model", "success"},
		),
		CompletionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadmapper_completion_latency_seconds",
				Help:    "Completion backend attempt latency in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0},
			},
			[]string{"backend", "model"},
		),
		CompletionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadmapper_completion_errors_total",
				Help: "Total number of failed completion attempts",
			},
			[]string{"backend", "error_code"},
		),

		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadmapper_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadmapper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 180.0},
			},
			[]string{"route"},
		),

		RoadmapPhases: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roadmapper_roadmap_phases",
				Help:    "Number of phases in returned roadmaps",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
			},
			[]string{"operation"},
		),
		Extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roadmapper_resume_extractions_total",
				Help: "Total number of resume text extractions",
			},
			[]string{"format", "success"},
		),
	}
}

// NewRegistry creates a registry with the Go and process collectors plus
// a fresh Metrics instance.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler exposing reg.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RecordRequest records one finished HTTP request.
func (m *Metrics) RecordRequest(route string, status int, d time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordRoadmap records the phase count of a roadmap returned by operation.
func (m *Metrics) RecordRoadmap(operation string, phases int) {
	m.RoadmapPhases.WithLabelValues(operation).Observe(float64(phases))
}

// RecordExtraction records a resume extraction attempt.
func (m *Metrics) RecordExtraction(format string, success bool) {
	m.Extractions.WithLabelValues(format, strconv.FormatBool(success)).Inc()
}

// OnCallComplete makes Metrics an llm.Observer.
func (m *Metrics) OnCallComplete(event llm.CallEvent) {
	backend := string(event.Backend)
	m.CompletionCalls.WithLabelValues(backend, event.Model, strconv.FormatBool(event.Success)).Inc()
	m.CompletionLatency.WithLabelValues(backend, event.Model).
		Observe((time.Duration(event.LatencyMs) * time.Millisecond).Seconds())
	if !event.Success {
		m.CompletionErrors.WithLabelValues(backend, event.ErrorCode).Inc()
	}
}

var _ llm.Observer = (*Metrics)(nil)
