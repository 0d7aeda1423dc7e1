// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tasktracker"

var (
	// HTTPRequests counts served requests by method, route template and status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status"})

	// AuthDenied counts requests rejected by the token gate.
	AuthDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_denied_total",
		Help:      "Requests rejected by the bearer token check.",
	}, []string{"reason"})

	// StoreErrors counts storage failures surfaced as 500s.
	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Storage failures by operation.",
	}, []string{"op"})

	// CacheLookups counts task list cache hits and misses.
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Task list cache lookups by result.",
	}, []string{"result"})
)

var once sync.Once

// Init registers the collectors with the default registry. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(HTTPRequests, AuthDenied, StoreErrors, CacheLookups)
	})
}
