package sequence

import (
	"time"
)

// Builder provides a fluent API for assembling ToolSequence values
// programmatically. It is a construction helper only and plays no part in
// the execution path.
type Builder struct {
	seq *ToolSequence
}

// NewBuilder creates a builder for the given sequence id.
func NewBuilder(id string) *Builder {
	return &Builder{
		seq: &ToolSequence{ID: id},
	}
}

// WithName sets the sequence display name.
func (b *Builder) WithName(name string) *Builder {
	b.seq.Name = name
	return b
}

// WithDescription sets the sequence description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.seq.Description = desc
	return b
}

// WithTags sets descriptive tags.
func (b *Builder) WithTags(tags ...string) *Builder {
	b.seq.Tags = tags
	return b
}

// WithErrorStrategy sets the sequence-level default error strategy.
func (b *Builder) WithErrorStrategy(strategy ErrorStrategy) *Builder {
	b.seq.ErrorHandling.Strategy = strategy
	return b
}

// WithRetry enables the retry sub-procedure for stop-policy step failures.
func (b *Builder) WithRetry(maxRetries, backoffMs int, exponential bool) *Builder {
	b.seq.ErrorHandling.Retry = RetryConfig{
		Enabled:            true,
		MaxRetries:         maxRetries,
		BackoffMs:          backoffMs,
		ExponentialBackoff: exponential,
	}
	return b
}

// WithCircuitBreaker gates the sequence with a circuit breaker.
func (b *Builder) WithCircuitBreaker(failureThreshold int, timeout time.Duration) *Builder {
	b.seq.CircuitBreaker = &CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: failureThreshold,
		Timeout:          timeout,
	}
	return b
}

// Step adds a step at the given order position and returns a StepBuilder for
// configuration. Declaration order breaks ties between equal order values.
func (b *Builder) Step(order int) *StepBuilder {
	return &StepBuilder{
		step:   SequenceStep{Order: order},
		parent: b,
	}
}

// Build validates the assembled definition and returns it.
func (b *Builder) Build() (*ToolSequence, error) {
	if err := b.seq.Validate(); err != nil {
		return nil, err
	}
	return b.seq, nil
}

// StepBuilder configures a single step; Done returns to the parent builder.
type StepBuilder struct {
	step   SequenceStep
	parent *Builder
}

// Tool dispatches the step to the tool collaborator with the given id.
func (sb *StepBuilder) Tool(id string) *StepBuilder {
	sb.step.Tool = id
	return sb
}

// MCP dispatches the step to the provider collaborator with the given id.
func (sb *StepBuilder) MCP(id string) *StepBuilder {
	sb.step.MCP = id
	return sb
}

// Action names the operation the collaborator should perform.
func (sb *StepBuilder) Action(action string) *StepBuilder {
	sb.step.Action = action
	return sb
}

// Params sets the raw parameter bag; string leaves may contain
// ${input.*} and ${stepN.*} templates.
func (sb *StepBuilder) Params(params map[string]any) *StepBuilder {
	sb.step.Params = params
	return sb
}

// OnSuccess sets the declarative on-success policy.
func (sb *StepBuilder) OnSuccess(policy StepPolicy) *StepBuilder {
	sb.step.OnSuccess = policy
	return sb
}

// OnError sets the step's failure policy; unset means stop.
func (sb *StepBuilder) OnError(policy StepPolicy) *StepBuilder {
	sb.step.OnError = policy
	return sb
}

// Fallback sets the alternate provider to try when the primary provider
// call fails.
func (sb *StepBuilder) Fallback(mcpID string) *StepBuilder {
	sb.step.FallbackMCP = mcpID
	return sb
}

// Description sets free-text step documentation.
func (sb *StepBuilder) Description(desc string) *StepBuilder {
	sb.step.Description = desc
	return sb
}

// Done appends the configured step and returns the parent builder.
func (sb *StepBuilder) Done() *Builder {
	sb.parent.seq.Steps = append(sb.parent.seq.Steps, sb.step)
	return sb.parent
}
