// Package metrics exposes client-side counters for requests and session reconciliation.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "punchclock"

// Metrics is nil-safe: every method is a no-op on a nil receiver so collaborators
// can be built without a registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests    *prometheus.CounterVec
	Refreshes   *prometheus.CounterVec
	CacheHits   prometheus.Counter
	Conflicts   prometheus.Counter
	Transitions *prometheus.CounterVec
}

// New registers the client counters on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Remote API requests by method and status class.",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Session view refreshes that reached the network, by result.",
		}, []string{"result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cache_hits_total",
			Help:      "Non-forced refreshes answered from the cache window.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_conflicts_total",
			Help:      "Start attempts rejected because the server already held an open session.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Session transitions by operation and result.",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.Requests, m.Refreshes, m.CacheHits, m.Conflicts, m.Transitions)
	return m
}

func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, statusClass(status)).Inc()
}

func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.Conflicts.Inc()
}

func (m *Metrics) ObserveTransition(op, result string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(op, result).Inc()
}

// WriteText dumps every registered family in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil || m.gatherer == nil {
		return nil
	}
	families, err := m.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func statusClass(status int) string {
	switch {
	case status <= 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
