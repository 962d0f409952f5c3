// Package metrics provides Prometheus metrics for the blog service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "quill"
)

var (
	// HTTP metrics - track request volume and latency
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Domain metrics - track writes to posts and their relationships
	EntityMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Entity mutations by entity, operation, and result",
		},
		[]string{"entity", "operation", "result"},
	)

	MutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutation_duration_seconds",
			Help:      "Time spent in entity mutations, lookups and reference resolution included",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"entity", "operation"},
	)

	PostStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "status_transitions_total",
			Help:      "Post status changes by source and target status",
		},
		[]string{"from", "to"},
	)

	// CascadedComments counts comments removed together with their post.
	CascadedComments = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "orphans_removed_total",
			Help:      "Comments removed because their post was deleted or they were detached",
		},
	)
)

// ObserveStatusChange records a post moving between statuses.
func ObserveStatusChange(from, to string) {
	PostStatusTransitions.WithLabelValues(from, to).Inc()
}

// Mutation tracks one write against an entity from start to outcome.
type Mutation struct {
	entity    string
	operation string
	start     time.Time
}

// StartMutation starts timing a write.
func StartMutation(entity, operation string) *Mutation {
	return &Mutation{entity: entity, operation: operation, start: time.Now()}
}

// Done records the outcome and the elapsed time.
func (m *Mutation) Done(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EntityMutations.WithLabelValues(m.entity, m.operation, result).Inc()
	MutationDuration.WithLabelValues(m.entity, m.operation).Observe(time.Since(m.start).Seconds())
}
