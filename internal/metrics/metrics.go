// Package metrics holds the prometheus collectors of the workflow engine.
// Every method is safe on a nil *Collectors so that tests and the CLI can
// run without metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/editorial/internal/apperr"
)

// Collectors groups the engine's metrics on a private registry.
type Collectors struct {
	registry              *prometheus.Registry
	assignmentTransitions *prometheus.CounterVec
	roundsCreated         *prometheus.CounterVec
	operationErrors       *prometheus.CounterVec
	queueQuery            *prometheus.HistogramVec
}

// New creates and registers every collector.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		assignmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editorial",
			Name:      "review_assignment_transitions_total",
			Help:      "Reviewer assignment status transitions by target status.",
		}, []string{"to"}),
		roundsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editorial",
			Name:      "review_rounds_created_total",
			Help:      "Review rounds opened by stage.",
		}, []string{"stage"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editorial",
			Name:      "operation_errors_total",
			Help:      "Failed service operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		queueQuery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "editorial",
			Name:      "queue_query_seconds",
			Help:      "Latency of queue list and count queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"queue"}),
	}
	c.registry.MustRegister(
		c.assignmentTransitions,
		c.roundsCreated,
		c.operationErrors,
		c.queueQuery,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// AssignmentTransition counts one assignment moving to status to.
func (c *Collectors) AssignmentTransition(to string) {
	if c == nil {
		return
	}
	c.assignmentTransitions.WithLabelValues(to).Inc()
}

// RoundCreated counts one opened round.
func (c *Collectors) RoundCreated(stage string) {
	if c == nil {
		return
	}
	c.roundsCreated.WithLabelValues(stage).Inc()
}

// OperationError counts a failed operation under its taxonomy code.
func (c *Collectors) OperationError(operation string, err error) {
	if c == nil || err == nil {
		return
	}
	c.operationErrors.WithLabelValues(operation, apperr.Code(apperr.KindOf(err))).Inc()
}

// ObserveQueue records how long a queue query took.
func (c *Collectors) ObserveQueue(queue string, started time.Time) {
	if c == nil {
		return
	}
	c.queueQuery.WithLabelValues(queue).Observe(time.Since(started).Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (c *Collectors) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
