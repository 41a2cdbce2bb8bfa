package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timekeep"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Sessions
	SessionsCreated *prometheus.CounterVec
	LoginFailures   prometheus.Counter

	// Timers
	TimersStarted prometheus.Counter
	TimersStopped prometheus.Counter
	TimerDuration prometheus.Histogram

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the Go and process collectors and
// all Timekeep metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		SessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Sessions created, by reason (login, signup)",
		}, []string{"reason"}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "login_failures_total",
			Help:      "Login attempts with unknown user or wrong password",
		}),

		TimersStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timers",
			Name:      "started_total",
			Help:      "Timers started",
		}),
		TimersStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timers",
			Name:      "stopped_total",
			Help:      "Timers stopped",
		}),
		TimerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "timers",
			Name:      "duration_seconds",
			Help:      "Frozen duration of stopped timers",
			Buckets:   []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800, 86400},
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.SessionsCreated,
		r.LoginFailures,
		r.TimersStarted,
		r.TimersStopped,
		r.TimerDuration,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// Registerer returns the registry for components that add their own
// collectors (storage).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer returns the registry for exposition and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns the /metrics handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRequest records one HTTP request. route is the route pattern,
// not the raw path, to keep label cardinality bounded.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SessionCreated implements service.Observer.
func (r *Registry) SessionCreated(reason string) {
	r.SessionsCreated.WithLabelValues(reason).Inc()
}

// LoginFailed implements service.Observer.
func (r *Registry) LoginFailed() {
	r.LoginFailures.Inc()
}

// TimerStarted implements service.Observer.
func (r *Registry) TimerStarted() {
	r.TimersStarted.Inc()
}

// TimerStopped implements service.Observer.
func (r *Registry) TimerStopped(d time.Duration) {
	r.TimersStopped.Inc()
	r.TimerDuration.Observe(d.Seconds())
}
