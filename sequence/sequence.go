package sequence

import (
	"fmt"
	"sort"
	"time"

	"github.com/Billhebert/chatIAS-sub004/types"
)

// ErrorStrategy defines the sequence-level default error handling strategy.
type ErrorStrategy string

const (
	// StrategyFailFast stops execution on the first halting step failure.
	StrategyFailFast ErrorStrategy = "fail_fast"
	// StrategyContinueOnError keeps executing subsequent steps after failures.
	StrategyContinueOnError ErrorStrategy = "continue_on_error"
	// StrategyRetryAll retries failing steps according to the retry config.
	StrategyRetryAll ErrorStrategy = "retry_all"
)

// Valid returns true if this is a recognized strategy.
func (s ErrorStrategy) Valid() bool {
	switch s {
	case StrategyFailFast, StrategyContinueOnError, StrategyRetryAll:
		return true
	}
	return false
}

// StepPolicy governs sequence continuation after a step completes.
type StepPolicy string

const (
	// PolicyContinue proceeds to the next step.
	PolicyContinue StepPolicy = "continue"
	// PolicyStop halts the sequence; no further steps execute.
	PolicyStop StepPolicy = "stop"
	// PolicyLogWarning proceeds after emitting a warning-level event.
	PolicyLogWarning StepPolicy = "log_warning"
	// PolicySkip proceeds after emitting a warning-level event.
	PolicySkip StepPolicy = "skip"
	// PolicyFallback proceeds; fallback substitution already happened
	// inside the dispatcher.
	PolicyFallback StepPolicy = "fallback"
)

// Valid returns true if this is a recognized policy.
func (p StepPolicy) Valid() bool {
	switch p {
	case PolicyContinue, PolicyStop, PolicyLogWarning, PolicySkip, PolicyFallback:
		return true
	}
	return false
}

// RetryConfig governs the retry sub-procedure invoked when a step fails and
// its on_error policy resolves to stop.
type RetryConfig struct {
	Enabled            bool `yaml:"enabled" json:"enabled"`
	MaxRetries         int  `yaml:"max_retries" json:"max_retries"`
	BackoffMs          int  `yaml:"backoff_ms" json:"backoff_ms"`
	ExponentialBackoff bool `yaml:"exponential_backoff" json:"exponential_backoff"`
}

// backoffFor returns the delay to sleep before the given 1-indexed retry
// attempt. The first attempt carries no delay.
func (c RetryConfig) backoffFor(attempt int) time.Duration {
	if attempt <= 1 || c.BackoffMs <= 0 {
		return 0
	}
	base := time.Duration(c.BackoffMs) * time.Millisecond
	if c.ExponentialBackoff {
		return base << uint(attempt-1)
	}
	return base
}

// ErrorHandling bundles the sequence-level strategy with its retry config.
type ErrorHandling struct {
	Strategy ErrorStrategy `yaml:"strategy" json:"strategy"`
	Retry    RetryConfig   `yaml:"retry" json:"retry"`
}

// CircuitBreakerConfig configures the per-sequence circuit breaker.
type CircuitBreakerConfig struct {
	Enabled          bool          `json:"enabled"`
	FailureThreshold int           `json:"failure_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// SequenceStep is one unit of work within a sequence, dispatched to exactly
// one tool or provider collaborator.
type SequenceStep struct {
	// Order is the integer position; steps execute in ascending order with
	// declaration order breaking ties.
	Order int `yaml:"order" json:"order"`
	// Tool is the collaborator identifier for a synchronous capability.
	// Mutually exclusive with MCP.
	Tool string `yaml:"tool,omitempty" json:"tool,omitempty"`
	// MCP is the collaborator identifier for a provider capability.
	// Mutually exclusive with Tool.
	MCP string `yaml:"mcp,omitempty" json:"mcp,omitempty"`
	// Action names the operation the collaborator should perform.
	Action string `yaml:"action" json:"action"`
	// Params is a nested mapping whose string leaf values may contain
	// ${input.*} and ${stepN.*} substitution templates.
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	// OnSuccess is declarative metadata; execution always proceeds after a
	// successful step.
	OnSuccess StepPolicy `yaml:"on_success,omitempty" json:"on_success,omitempty"`
	// OnError governs continuation after this step fails. Empty means stop.
	OnError StepPolicy `yaml:"on_error,omitempty" json:"on_error,omitempty"`
	// FallbackMCP is an alternate provider used only when MCP is set and the
	// primary provider call fails.
	FallbackMCP string `yaml:"fallback_mcp,omitempty" json:"fallback_mcp,omitempty"`
	// Description is free text with no behavioral effect.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Validate checks the step's structural invariants.
func (s *SequenceStep) Validate() error {
	if s.Tool == "" && s.MCP == "" {
		return types.Errorf(types.ErrStepInvalid, "step %d: either tool or mcp must be set", s.Order)
	}
	if s.Tool != "" && s.MCP != "" {
		return types.Errorf(types.ErrStepInvalid, "step %d: tool and mcp are mutually exclusive", s.Order)
	}
	if s.Action == "" {
		return types.Errorf(types.ErrStepInvalid, "step %d: action is required", s.Order)
	}
	if s.FallbackMCP != "" && s.MCP == "" {
		return types.Errorf(types.ErrStepInvalid, "step %d: fallback_mcp requires mcp", s.Order)
	}
	if s.OnSuccess != "" && !s.OnSuccess.Valid() {
		return types.Errorf(types.ErrStepInvalid, "step %d: unknown on_success policy %q", s.Order, s.OnSuccess)
	}
	if s.OnError != "" && !s.OnError.Valid() {
		return types.Errorf(types.ErrStepInvalid, "step %d: unknown on_error policy %q", s.Order, s.OnError)
	}
	return nil
}

// errorPolicy resolves the effective on_error policy; unset means stop.
func (s *SequenceStep) errorPolicy() StepPolicy {
	if s.OnError == "" {
		return PolicyStop
	}
	return s.OnError
}

// ToolSequence is an immutable workflow definition composed of ordered steps.
// Definitions are created once, registered into a store, and never mutated
// after registration.
type ToolSequence struct {
	ID             string                `yaml:"id" json:"id"`
	Name           string                `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string                `yaml:"description,omitempty" json:"description,omitempty"`
	Tags           []string              `yaml:"tags,omitempty" json:"tags,omitempty"`
	Steps          []SequenceStep        `yaml:"steps" json:"steps"`
	ErrorHandling  ErrorHandling         `yaml:"error_handling,omitempty" json:"error_handling,omitempty"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty" json:"circuit_breaker,omitempty"`
}

// Validate performs full definition validation: structural constraints plus
// per-step invariants.
func (s *ToolSequence) Validate() error {
	if err := s.validateBasic(); err != nil {
		return err
	}
	for i := range s.Steps {
		if err := s.Steps[i].Validate(); err != nil {
			return fmt.Errorf("sequence %s: %w", s.ID, err)
		}
	}
	if s.ErrorHandling.Strategy != "" && !s.ErrorHandling.Strategy.Valid() {
		return types.Errorf(types.ErrSequenceInvalid, "sequence %s: unknown error strategy %q", s.ID, s.ErrorHandling.Strategy)
	}
	if r := s.ErrorHandling.Retry; r.Enabled {
		if r.MaxRetries < 1 {
			return types.Errorf(types.ErrSequenceInvalid, "sequence %s: retry enabled with max_retries < 1", s.ID)
		}
		if r.BackoffMs < 0 {
			return types.Errorf(types.ErrSequenceInvalid, "sequence %s: negative backoff_ms", s.ID)
		}
	}
	if cb := s.CircuitBreaker; cb != nil && cb.Enabled {
		if cb.FailureThreshold < 1 {
			return types.Errorf(types.ErrSequenceInvalid, "sequence %s: circuit breaker failure_threshold < 1", s.ID)
		}
		if cb.Timeout <= 0 {
			return types.Errorf(types.ErrSequenceInvalid, "sequence %s: circuit breaker timeout must be positive", s.ID)
		}
	}
	return nil
}

// validateBasic checks the structural constraints enforced at registration
// time; deeper validation happens in the builder and loader.
func (s *ToolSequence) validateBasic() error {
	if s.ID == "" {
		return types.NewError(types.ErrSequenceInvalid, "sequence id is required")
	}
	if len(s.Steps) == 0 {
		return types.Errorf(types.ErrSequenceInvalid, "sequence %s has no steps", s.ID)
	}
	return nil
}

// breakerEnabled reports whether this sequence is gated by a circuit breaker.
func (s *ToolSequence) breakerEnabled() bool {
	return s.CircuitBreaker != nil && s.CircuitBreaker.Enabled
}

// sortedSteps returns a copy of the steps in execution order: ascending
// Order, with declaration order preserved on ties.
func (s *ToolSequence) sortedSteps() []SequenceStep {
	steps := make([]SequenceStep, len(s.Steps))
	copy(steps, s.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	return steps
}
