// Package metrics exposes Prometheus instrumentation for the dosing
// engine and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector behind one registry so tests can use
// isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RecommendationsTotal *prometheus.CounterVec
	DosesDispensed       *prometheus.CounterVec
	HoldsTotal           *prometheus.CounterVec
	SkipsTotal           prometheus.Counter
	AlertsTotal          prometheus.Counter
	WearableSyncTotal    *prometheus.CounterVec
	EngineLatency        prometheus.Histogram
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates a metrics set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := func(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(opts, labels)
		reg.MustRegister(c)
		return c
	}

	m := &Metrics{
		registry: reg,

		RecommendationsTotal: factory(prometheus.CounterOpts{
			Name: "dosepilot_recommendations_total",
			Help: "Recommendations generated, by resulting health status.",
		}, []string{"status"}),

		DosesDispensed: factory(prometheus.CounterOpts{
			Name: "dosepilot_doses_dispensed_total",
			Help: "Doses dispensed, by supplement.",
		}, []string{"supplement_id"}),

		HoldsTotal: factory(prometheus.CounterOpts{
			Name: "dosepilot_holds_total",
			Help: "Supplements held by a safety rule, by rule name.",
		}, []string{"rule"}),

		WearableSyncTotal: factory(prometheus.CounterOpts{
			Name: "dosepilot_wearable_sync_total",
			Help: "Wearable sync attempts, by result.",
		}, []string{"result"}),

		HTTPRequestsTotal: factory(prometheus.CounterOpts{
			Name: "dosepilot_http_requests_total",
			Help: "HTTP requests, by method, route, and status code.",
		}, []string{"method", "route", "status"}),
	}

	m.SkipsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dosepilot_skips_total",
		Help: "Supplements skipped by the assembly pipeline.",
	})
	reg.MustRegister(m.SkipsTotal)

	m.AlertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dosepilot_alerts_total",
		Help: "User alerts raised by high-priority rules.",
	})
	reg.MustRegister(m.AlertsTotal)

	m.EngineLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dosepilot_engine_latency_seconds",
		Help:    "Time to produce one recommendation.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(m.EngineLatency)

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dosepilot_http_duration_seconds",
		Help:    "HTTP request duration, by route.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route"})
	reg.MustRegister(m.HTTPDuration)

	return m
}

// ObserveEngine records one engine pass.
func (m *Metrics) ObserveEngine(status string, took time.Duration) {
	m.RecommendationsTotal.WithLabelValues(status).Inc()
	m.EngineLatency.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
