package restserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the REST server. Each
// controller gets its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	profiles        *prometheus.CounterVec
	profilePoints   prometheus.Histogram
	nonFinitePoints *prometheus.CounterVec
	cacheResults    *prometheus.CounterVec
}

// NewMetrics creates and registers the server's collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "timbercruise_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
		profiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timbercruise_profiles_evaluated_total",
				Help: "Taper profiles evaluated, by model",
			},
			[]string{"model"},
		),
		profilePoints: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "timbercruise_profile_points",
				Help:    "Number of stem heights per evaluated profile",
				Buckets: prometheus.LinearBuckets(0, 25, 10),
			},
		),
		nonFinitePoints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timbercruise_profile_nonfinite_points_total",
				Help: "Profile points whose DIB was NaN or infinite, by model",
			},
			[]string{"model"},
		),
		cacheResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timbercruise_profile_cache_results_total",
				Help: "Profile cache lookups by result (hit, miss, error)",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.profiles,
		m.profilePoints,
		m.nonFinitePoints,
		m.cacheResults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request durations labelled with the matched route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(req); cr != nil {
			if tmpl, err := cr.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		observer := m.requestDuration.MustCurryWith(prometheus.Labels{"route": route})
		promhttp.InstrumentHandlerDuration(observer, next).ServeHTTP(w, req)
	})
}

func (m *Metrics) observeProfile(model string, points, nonFinite int) {
	m.profiles.WithLabelValues(model).Inc()
	m.profilePoints.Observe(float64(points))
	if nonFinite > 0 {
		m.nonFinitePoints.WithLabelValues(model).Add(float64(nonFinite))
	}
}

func (m *Metrics) observeCache(result string) {
	m.cacheResults.WithLabelValues(result).Inc()
}
