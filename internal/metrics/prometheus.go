package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all prometheus metrics.  A nil *Metrics is valid and records
// nothing, which keeps tests free of registry setup.
type Metrics struct {
	ProviderRequests  *prometheus.CounterVec
	ProviderLatency   prometheus.Histogram
	Operations        *prometheus.CounterVec
	CalendarSoftFails prometheus.Counter
	EventsPublished   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tmdb_requests_total",
			Help:      "The total number of TMDB API requests",
		}, []string{"endpoint", "outcome"}),
		ProviderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tmdb_request_duration_seconds",
			Help:      "Time taken by TMDB API requests",
			Buckets:   prometheus.DefBuckets,
		}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "The total number of entry and ticket operations",
		}, []string{"operation", "result"}),
		CalendarSoftFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_query_failures_total",
			Help:      "Calendar queries that failed and returned no events",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Entry lifecycle events accepted for publishing",
		}, []string{"kind", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.ProviderRequests, m.ProviderLatency, m.Operations, m.CalendarSoftFails, m.EventsPublished)
	}
	return m
}

// ObserveProvider records one TMDB call.
func (m *Metrics) ObserveProvider(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderLatency.Observe(time.Since(started).Seconds())
	m.ProviderRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

// ObserveOperation records the result of a service operation.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome(err)).Inc()
}

// CalendarSoftFail counts a swallowed calendar query error.
func (m *Metrics) CalendarSoftFail() {
	if m == nil {
		return
	}
	m.CalendarSoftFails.Inc()
}

// ObserveEvent records a publish attempt.
func (m *Metrics) ObserveEvent(kind string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(kind, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
