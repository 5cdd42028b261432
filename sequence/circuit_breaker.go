package sequence

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Billhebert/chatIAS-sub004/types"
)

// CircuitState is the state of a per-sequence circuit breaker.
type CircuitState int

const (
	// CircuitClosed allows runs through; the initial state.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects runs until the recovery timeout elapses.
	CircuitOpen
	// CircuitHalfOpen means a trial run is in flight or about to be.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerEvent describes a circuit breaker state transition.
type BreakerEvent struct {
	SequenceID string       `json:"sequence_id"`
	OldState   CircuitState `json:"old_state"`
	NewState   CircuitState `json:"new_state"`
	Timestamp  time.Time    `json:"timestamp"`
	Reason     string       `json:"reason"`
	Failures   int          `json:"failures"`
}

// BreakerEventHandler receives state transition events.
type BreakerEventHandler interface {
	OnStateChange(event BreakerEvent)
}

// BreakerSnapshot is a point-in-time view of a breaker's counters.
type BreakerSnapshot struct {
	SequenceID      string       `json:"sequence_id"`
	State           CircuitState `json:"state"`
	Failures        int          `json:"failures"`
	LastFailureTime time.Time    `json:"last_failure_time"`
}

// CircuitBreaker gates execution of a single sequence. It tracks consecutive
// halting failures and moves through closed, open, and half-open states.
type CircuitBreaker struct {
	sequenceID      string
	config          CircuitBreakerConfig
	state           CircuitState
	failures        int
	lastFailureTime time.Time
	eventHandler    BreakerEventHandler
	logger          *zap.Logger
	mu              sync.Mutex
}

func newCircuitBreaker(sequenceID string, config CircuitBreakerConfig, eventHandler BreakerEventHandler, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		sequenceID:   sequenceID,
		config:       config,
		state:        CircuitClosed,
		eventHandler: eventHandler,
		logger:       logger.With(zap.String("sequence_id", sequenceID)),
	}
}

// Allow reports whether a run may proceed. An open breaker whose recovery
// timeout has elapsed transitions to half-open at gate-check time and admits
// exactly that trial run.
func (cb *CircuitBreaker) Allow() (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true, nil

	case CircuitOpen:
		if time.Since(cb.lastFailureTime) > cb.config.Timeout {
			cb.transitionTo(CircuitHalfOpen, "recovery timeout elapsed")
			return true, nil
		}
		return false, types.Errorf(types.ErrCircuitOpen,
			"circuit breaker open for sequence %s: %d consecutive failures, retry after %v",
			cb.sequenceID, cb.failures, cb.config.Timeout-time.Since(cb.lastFailureTime))

	case CircuitHalfOpen:
		// Trial run in flight; the outcome decides the next state.
		return true, nil

	default:
		return false, types.Errorf(types.ErrCircuitOpen,
			"unknown circuit breaker state %d for sequence %s", cb.state, cb.sequenceID)
	}
}

// RecordSuccess records a successful run. A half-open trial success closes
// the breaker and resets the failure counter.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.transitionTo(CircuitClosed, "trial run succeeded")
		cb.failures = 0
	}
}

// RecordFailure records a halting run failure. The counter keeps accumulating
// across half-open trips so a flapping sequence stays open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(CircuitOpen, "failure threshold reached")
		}
	case CircuitHalfOpen:
		cb.transitionTo(CircuitOpen, "trial run failed")
	}
}

// Reset forcibly returns the breaker to a fresh closed state. Operator
// escape hatch; never invoked by normal execution.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = CircuitClosed
	cb.failures = 0
	cb.lastFailureTime = time.Time{}
	if oldState != CircuitClosed {
		cb.emitEvent(oldState, CircuitClosed, "manual reset")
	}
}

// Snapshot returns the breaker's current counters.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return BreakerSnapshot{
		SequenceID:      cb.sequenceID,
		State:           cb.state,
		Failures:        cb.failures,
		LastFailureTime: cb.lastFailureTime,
	}
}

// transitionTo must be called with the lock held.
func (cb *CircuitBreaker) transitionTo(newState CircuitState, reason string) {
	oldState := cb.state
	cb.state = newState

	cb.logger.Info("circuit breaker state change",
		zap.String("old_state", oldState.String()),
		zap.String("new_state", newState.String()),
		zap.String("reason", reason),
		zap.Int("failures", cb.failures))

	cb.emitEvent(oldState, newState, reason)
}

// emitEvent must be called with the lock held. Events are delivered
// asynchronously so a handler can safely call back into the breaker.
func (cb *CircuitBreaker) emitEvent(oldState, newState CircuitState, reason string) {
	if cb.eventHandler == nil {
		return
	}
	event := BreakerEvent{
		SequenceID: cb.sequenceID,
		OldState:   oldState,
		NewState:   newState,
		Timestamp:  time.Now(),
		Reason:     reason,
		Failures:   cb.failures,
	}
	go cb.eventHandler.OnStateChange(event)
}

// CircuitBreakerRegistry holds one independent breaker per sequence id.
// Breakers are created lazily when a gated sequence is registered and persist
// for the process lifetime; re-registration never resets an existing breaker.
type CircuitBreakerRegistry struct {
	breakers     map[string]*CircuitBreaker
	eventHandler BreakerEventHandler
	logger       *zap.Logger
	mu           sync.RWMutex
}

// NewCircuitBreakerRegistry creates an empty registry.
func NewCircuitBreakerRegistry(logger *zap.Logger) *CircuitBreakerRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*CircuitBreaker),
		logger:   logger,
	}
}

// SetEventHandler installs a transition event handler on the registry and on
// every breaker created so far.
func (r *CircuitBreakerRegistry) SetEventHandler(handler BreakerEventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventHandler = handler
	for _, cb := range r.breakers {
		cb.mu.Lock()
		cb.eventHandler = handler
		cb.mu.Unlock()
	}
}

// Ensure returns the breaker for the sequence id, creating a fresh closed one
// if none exists. An existing breaker is returned untouched so operational
// state outlives definition updates.
func (r *CircuitBreakerRegistry) Ensure(sequenceID string, config CircuitBreakerConfig) *CircuitBreaker {
	r.mu.RLock()
	if cb, ok := r.breakers[sequenceID]; ok {
		r.mu.RUnlock()
		return cb
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[sequenceID]; ok {
		return cb
	}

	cb := newCircuitBreaker(sequenceID, config, r.eventHandler, r.logger)
	r.breakers[sequenceID] = cb
	return cb
}

// Get returns the breaker for the sequence id, if one exists.
func (r *CircuitBreakerRegistry) Get(sequenceID string) (*CircuitBreaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.breakers[sequenceID]
	return cb, ok
}

// Snapshot returns the counters of the breaker for the sequence id.
func (r *CircuitBreakerRegistry) Snapshot(sequenceID string) (BreakerSnapshot, bool) {
	cb, ok := r.Get(sequenceID)
	if !ok {
		return BreakerSnapshot{}, false
	}
	return cb.Snapshot(), true
}

// Reset returns the breaker for the sequence id to a fresh closed state.
func (r *CircuitBreakerRegistry) Reset(sequenceID string) bool {
	cb, ok := r.Get(sequenceID)
	if !ok {
		return false
	}
	cb.Reset()
	return true
}

// States returns the current state of every registered breaker.
func (r *CircuitBreakerRegistry) States() map[string]CircuitState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]CircuitState, len(r.breakers))
	for id, cb := range r.breakers {
		states[id] = cb.Snapshot().State
	}
	return states
}
