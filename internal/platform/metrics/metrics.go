package metrics

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/opsboard/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "opsboard"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics holds every collector of the service.
type Metrics struct {
	registry       *prometheus.Registry
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	created        *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	openConns      atomic.Int64
}

// New creates the registry with the Go runtime and process collectors plus
// the service metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deployments",
			Name:      "created_total",
			Help:      "Deployments created, by environment",
		}, []string{"environment"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deployments",
			Name:      "transitions_total",
			Help:      "Persisted deployment status transitions",
		}, []string{"from", "to", "reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestLatency,
		m.created,
		m.transitions,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "open_connections",
			Help:      "Client connections currently open",
		}, func() float64 { return float64(m.openConns.Load()) }),
	)

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterActiveSequences exports the number of running lifecycle sequences.
func (m *Metrics) RegisterActiveSequences(active func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "active_sequences",
		Help:      "Deployment sequences currently running",
	}, func() float64 { return float64(active()) }))
}

// Middleware records the count and latency of every request, labelled by
// the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  routePattern(r),
			"status": strconv.Itoa(status),
		}
		m.requestTotal.With(labels).Inc()
		m.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded: unmatched paths collapse
// into a single value.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// TrackConnState is an http.Server ConnState hook counting open connections.
func (m *Metrics) TrackConnState(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		m.openConns.Add(1)
	case http.StateHijacked, http.StateClosed:
		m.openConns.Add(-1)
	}
}

// ActiveConnections returns the number of open client connections.
func (m *Metrics) ActiveConnections() int {
	return int(m.openConns.Load())
}

// HandleEvent implements events.EventHandler.
func (m *Metrics) HandleEvent(_ context.Context, event *events.DeploymentEvent) error {
	switch event.Type {
	case events.TypeDeploymentCreated:
		env := "unknown"
		if event.Deployment != nil {
			env = string(event.Deployment.Environment)
		}
		m.created.WithLabelValues(env).Inc()
	case events.TypeDeploymentTransitioned:
		m.transitions.WithLabelValues(string(event.From), string(event.To), event.Reason).Inc()
	}
	return nil
}
