// Package mocks provides scripted tool and provider collaborators for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/Billhebert/chatIAS-sub004/types"
)

// Call records one collaborator invocation.
type Call struct {
	Action string
	Params map[string]any
}

// Collaborator is a scripted types.StepExecutor. Results are consumed in
// order; the last configured result repeats for further calls. A custom
// execute function, an injected error, or a panic can replace the scripted
// results entirely.
type Collaborator struct {
	mu      sync.Mutex
	results []*types.StepResult
	err     error
	panicV  any
	fn      func(ctx context.Context, action string, params map[string]any) (*types.StepResult, error)
	calls   []Call
}

// NewCollaborator creates an empty scripted collaborator. With no
// configuration it returns a bare success result.
func NewCollaborator() *Collaborator {
	return &Collaborator{}
}

// WithSuccess appends a successful result carrying the given data.
func (c *Collaborator) WithSuccess(data any) *Collaborator {
	c.results = append(c.results, &types.StepResult{Success: true, Data: data})
	return c
}

// WithFailure appends a failed result carrying the given error message.
func (c *Collaborator) WithFailure(errMsg string) *Collaborator {
	c.results = append(c.results, &types.StepResult{Success: false, Error: errMsg})
	return c
}

// WithResult appends an explicit result.
func (c *Collaborator) WithResult(result *types.StepResult) *Collaborator {
	c.results = append(c.results, result)
	return c
}

// WithError makes every call return the given error.
func (c *Collaborator) WithError(err error) *Collaborator {
	c.err = err
	return c
}

// WithPanic makes every call panic with the given value.
func (c *Collaborator) WithPanic(v any) *Collaborator {
	c.panicV = v
	return c
}

// WithFunc delegates every call to a custom function.
func (c *Collaborator) WithFunc(fn func(ctx context.Context, action string, params map[string]any) (*types.StepResult, error)) *Collaborator {
	c.fn = fn
	return c
}

// Execute implements types.StepExecutor.
func (c *Collaborator) Execute(ctx context.Context, action string, params map[string]any) (*types.StepResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Action: action, Params: params})
	n := len(c.calls)
	c.mu.Unlock()

	if c.panicV != nil {
		panic(c.panicV)
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.fn != nil {
		return c.fn(ctx, action, params)
	}
	if len(c.results) == 0 {
		return &types.StepResult{Success: true}, nil
	}
	idx := n - 1
	if idx >= len(c.results) {
		idx = len(c.results) - 1
	}
	return c.results[idx], nil
}

// Calls returns a copy of every recorded invocation.
func (c *Collaborator) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	calls := make([]Call, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// CallCount returns the number of invocations so far.
func (c *Collaborator) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Echo returns a collaborator whose result data echoes the resolved params
// it received.
func Echo() *Collaborator {
	return NewCollaborator().WithFunc(func(_ context.Context, _ string, params map[string]any) (*types.StepResult, error) {
		data := make(map[string]any, len(params))
		for k, v := range params {
			data[k] = v
		}
		return &types.StepResult{Success: true, Data: data}, nil
	})
}
