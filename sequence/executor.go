package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Billhebert/chatIAS-sub004/internal/metrics"
	"github.com/Billhebert/chatIAS-sub004/types"
)

// StepReport records the outcome of one attempted step.
type StepReport struct {
	Order       int               `json:"order"`
	Action      string            `json:"action"`
	Result      *types.StepResult `json:"result"`
	Description string            `json:"description,omitempty"`
}

// RunReport is the ordered record of per-step outcomes produced by one
// execution of a sequence. It is never longer than the declared step list
// and stops growing once a step failure resolves to stop.
type RunReport struct {
	SequenceID    string       `json:"sequence_id"`
	Success       bool         `json:"success"`
	Steps         []StepReport `json:"steps"`
	StepsExecuted int          `json:"steps_executed"`
	RequestID     string       `json:"request_id"`
}

// ExecutionError wraps a halted run: the sequence id, how far execution got,
// the partial report, and the originating cause.
type ExecutionError struct {
	SequenceID    string
	StepsExecuted int
	Report        *RunReport
	Err           error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sequence %s failed after %d steps: %v", e.SequenceID, e.StepsExecuted, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Executor runs registered tool sequences against caller-supplied tool and
// provider registries. It owns the definition store and the circuit breaker
// registry, so multiple independent executors can coexist in one process.
type Executor struct {
	store    *Store
	breakers *CircuitBreakerRegistry
	metrics  *metrics.Collector
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewExecutor creates an executor with an empty store and breaker registry.
func NewExecutor(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		store:    NewStore(logger),
		breakers: NewCircuitBreakerRegistry(logger),
		logger:   logger.With(zap.String("component", "sequence_executor")),
		tracer:   otel.Tracer("chatias/sequence"),
	}
}

// WithMetrics attaches a metrics collector. Breaker transitions are observed
// through the registry's event handler.
func (e *Executor) WithMetrics(collector *metrics.Collector) *Executor {
	e.metrics = collector
	e.breakers.SetEventHandler(&breakerMetricsHandler{collector: collector})
	return e
}

// RegisterSequence stores the definition and, when the sequence is gated,
// lazily initializes its circuit breaker. Re-registering an id replaces the
// definition but never resets breaker state.
func (e *Executor) RegisterSequence(seq *ToolSequence) error {
	if err := e.store.Register(seq); err != nil {
		return err
	}
	if seq.breakerEnabled() {
		e.breakers.Ensure(seq.ID, *seq.CircuitBreaker)
	}
	return nil
}

// GetSequence returns the registered definition for the id.
func (e *Executor) GetSequence(id string) (*ToolSequence, bool) {
	return e.store.Get(id)
}

// GetSequences returns all registered definitions.
func (e *Executor) GetSequences() []*ToolSequence {
	return e.store.List()
}

// CircuitBreakerState returns the breaker counters for the sequence id.
func (e *Executor) CircuitBreakerState(id string) (BreakerSnapshot, bool) {
	return e.breakers.Snapshot(id)
}

// ResetCircuitBreaker forcibly returns the sequence's breaker to a fresh
// closed state.
func (e *Executor) ResetCircuitBreaker(id string) bool {
	return e.breakers.Reset(id)
}

// Execute runs the sequence with the given input bag. Steps run strictly one
// after another; each step's result feeds the resolver context for the steps
// that follow. On a halting failure the returned error is an *ExecutionError
// carrying the partial report, and the sequence's breaker records a failure.
// Absorbed step failures leave the breaker untouched.
func (e *Executor) Execute(ctx context.Context, sequenceID string, input map[string]any, tools types.ToolRegistry, providers types.ProviderRegistry) (*RunReport, error) {
	seq, ok := e.store.Get(sequenceID)
	if !ok {
		return nil, types.Errorf(types.ErrSequenceNotFound, "sequence not found: %s", sequenceID)
	}

	var breaker *CircuitBreaker
	if seq.breakerEnabled() {
		breaker = e.breakers.Ensure(sequenceID, *seq.CircuitBreaker)
		if allowed, gateErr := breaker.Allow(); !allowed {
			e.metrics.RecordSequence(sequenceID, "rejected", 0)
			return nil, gateErr
		}
	}

	requestID, ok := types.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = types.WithRequestID(ctx, requestID)
	}
	ctx = types.WithSequenceID(ctx, sequenceID)

	ctx, span := e.tracer.Start(ctx, "sequence.execute",
		trace.WithAttributes(
			attribute.String("sequence.id", sequenceID),
			attribute.String("request.id", requestID),
		))
	defer span.End()

	logger := e.logger.With(
		zap.String("sequence_id", sequenceID),
		zap.String("request_id", requestID),
	)
	logger.Info("starting sequence execution", zap.Int("steps", len(seq.Steps)))

	d := &dispatcher{tools: tools, providers: providers, logger: logger}
	rc := &runContext{input: input}
	report := &RunReport{SequenceID: sequenceID, RequestID: requestID}
	start := time.Now()

	var halt error
	for _, step := range seq.sortedSteps() {
		result, err := e.runStep(ctx, logger, seq, &step, d, rc)

		report.Steps = append(report.Steps, StepReport{
			Order:       step.Order,
			Action:      step.Action,
			Result:      result,
			Description: step.Description,
		})
		report.StepsExecuted++
		rc.steps = append(rc.steps, result)
		e.metrics.RecordStep(sequenceID, step.Action, !result.Failed())

		if err != nil {
			halt = err
			break
		}
	}

	report.Success = halt == nil
	duration := time.Since(start)

	if breaker != nil {
		if report.Success {
			breaker.RecordSuccess()
		} else {
			breaker.RecordFailure()
		}
	}

	span.SetAttributes(
		attribute.Bool("sequence.success", report.Success),
		attribute.Int("sequence.steps_executed", report.StepsExecuted),
	)

	if halt != nil {
		e.metrics.RecordSequence(sequenceID, "failed", duration)
		logger.Error("sequence execution halted",
			zap.Int("steps_executed", report.StepsExecuted),
			zap.Duration("duration", duration),
			zap.Error(halt))
		return nil, &ExecutionError{
			SequenceID:    sequenceID,
			StepsExecuted: report.StepsExecuted,
			Report:        report,
			Err:           halt,
		}
	}

	e.metrics.RecordSequence(sequenceID, "completed", duration)
	logger.Info("sequence execution completed",
		zap.Int("steps_executed", report.StepsExecuted),
		zap.Duration("duration", duration))
	return report, nil
}

// runStep resolves, dispatches, and applies the step's failure policy. The
// returned result is always recorded in the report; a non-nil error halts
// the sequence.
func (e *Executor) runStep(ctx context.Context, logger *zap.Logger, seq *ToolSequence, step *SequenceStep, d *dispatcher, rc *runContext) (*types.StepResult, error) {
	resolved := resolveParams(step.Params, rc)

	stepCtx, span := e.tracer.Start(ctx, "sequence.step",
		trace.WithAttributes(
			attribute.Int("step.order", step.Order),
			attribute.String("step.action", step.Action),
		))
	result, err := d.dispatch(stepCtx, step, resolved)
	span.End()

	if err != nil {
		// Collaborator panic: a halting failure regardless of policy.
		return &types.StepResult{Success: false, Error: err.Error()}, err
	}
	if !result.Failed() {
		return result, nil
	}

	switch policy := step.errorPolicy(); policy {
	case PolicyContinue:
		logger.Debug("step failed, continuing",
			zap.Int("order", step.Order),
			zap.String("action", step.Action),
			zap.String("error", result.Error))
		return result, nil

	case PolicyLogWarning, PolicySkip:
		logger.Warn("step failed, continuing",
			zap.Int("order", step.Order),
			zap.String("action", step.Action),
			zap.String("policy", string(policy)),
			zap.String("error", result.Error))
		return result, nil

	case PolicyFallback:
		// Fallback substitution already happened inside the dispatcher;
		// proceed regardless of whether the fallback itself succeeded.
		if result.Failed() {
			logger.Warn("fallback result still failed, continuing",
				zap.Int("order", step.Order),
				zap.String("action", step.Action),
				zap.String("error", result.Error))
		}
		return result, nil

	default: // PolicyStop
		if seq.ErrorHandling.Retry.Enabled {
			retried, retryErr := e.retryStep(ctx, logger, seq, step, resolved, result, d)
			if retryErr != nil {
				return &types.StepResult{Success: false, Error: retryErr.Error()}, retryErr
			}
			if !retried.Failed() {
				return retried, nil
			}
			return retried, types.Errorf(types.ErrRetryExhausted,
				"step %d (%s) failed after %d retries", step.Order, step.Action, seq.ErrorHandling.Retry.MaxRetries).
				WithCause(errors.New(retried.Error))
		}
		return result, types.Errorf(types.ErrStepFailed,
			"step %d (%s) failed", step.Order, step.Action).
			WithCause(errors.New(result.Error))
	}
}

// retryStep re-dispatches a failed step up to MaxRetries times, backing off
// between attempts. Each attempt genuinely re-invokes the collaborator with
// the same resolved params; they are not re-resolved, since the run context
// has not changed. Returns the first successful result, or the last failed
// one when all attempts are exhausted.
func (e *Executor) retryStep(ctx context.Context, logger *zap.Logger, seq *ToolSequence, step *SequenceStep, resolved map[string]any, failed *types.StepResult, d *dispatcher) (*types.StepResult, error) {
	cfg := seq.ErrorHandling.Retry
	last := failed

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if delay := cfg.backoffFor(attempt); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		logger.Warn("retrying step",
			zap.Int("order", step.Order),
			zap.String("action", step.Action),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", cfg.MaxRetries))
		e.metrics.RecordRetry(seq.ID, step.Action)

		result, err := d.dispatch(ctx, step, resolved)
		if err != nil {
			return nil, err
		}
		if !result.Failed() {
			logger.Info("step retry succeeded",
				zap.Int("order", step.Order),
				zap.String("action", step.Action),
				zap.Int("attempt", attempt))
			return result, nil
		}
		last = result
	}

	return last, nil
}

// breakerMetricsHandler bridges breaker transition events to the collector.
type breakerMetricsHandler struct {
	collector *metrics.Collector
}

func (h *breakerMetricsHandler) OnStateChange(event BreakerEvent) {
	h.collector.RecordBreakerTransition(event.SequenceID, event.OldState.String(), event.NewState.String())
	h.collector.SetBreakerState(event.SequenceID, int(event.NewState))
}
