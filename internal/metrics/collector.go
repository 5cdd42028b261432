package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector gathers sequence engine metrics. All record methods are nil-safe
// so callers can hold a nil *Collector when metrics are disabled.
type Collector struct {
	sequenceExecutionsTotal *prometheus.CounterVec
	sequenceDuration        *prometheus.HistogramVec
	stepExecutionsTotal     *prometheus.CounterVec
	stepRetriesTotal        *prometheus.CounterVec
	breakerTransitionsTotal *prometheus.CounterVec
	breakerState            *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector creates a collector registered against the given registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.sequenceExecutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_executions_total",
			Help:      "Total number of sequence executions by outcome",
		},
		[]string{"sequence_id", "status"},
	)

	c.sequenceDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sequence_execution_duration_seconds",
			Help:      "Sequence execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"sequence_id"},
	)

	c.stepExecutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_executions_total",
			Help:      "Total number of step executions by outcome",
		},
		[]string{"sequence_id", "action", "status"},
	)

	c.stepRetriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_retries_total",
			Help:      "Total number of step retry attempts",
		},
		[]string{"sequence_id", "action"},
	)

	c.breakerTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"sequence_id", "from_state", "to_state"},
	)

	c.breakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"sequence_id"},
	)

	return c
}

// RecordSequence records one sequence execution outcome.
// Status is one of "completed", "failed", or "rejected".
func (c *Collector) RecordSequence(sequenceID, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.sequenceExecutionsTotal.WithLabelValues(sequenceID, status).Inc()
	if status != "rejected" {
		c.sequenceDuration.WithLabelValues(sequenceID).Observe(duration.Seconds())
	}
}

// RecordStep records one step execution outcome.
func (c *Collector) RecordStep(sequenceID, action string, success bool) {
	if c == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	c.stepExecutionsTotal.WithLabelValues(sequenceID, action, status).Inc()
}

// RecordRetry records one step retry attempt.
func (c *Collector) RecordRetry(sequenceID, action string) {
	if c == nil {
		return
	}
	c.stepRetriesTotal.WithLabelValues(sequenceID, action).Inc()
}

// RecordBreakerTransition records one circuit breaker state transition.
func (c *Collector) RecordBreakerTransition(sequenceID, fromState, toState string) {
	if c == nil {
		return
	}
	c.breakerTransitionsTotal.WithLabelValues(sequenceID, fromState, toState).Inc()
}

// SetBreakerState sets the current breaker state gauge for a sequence.
func (c *Collector) SetBreakerState(sequenceID string, state int) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(sequenceID).Set(float64(state))
}
