package types

import "context"

// StepResult is the uniform result shape returned by every collaborator call.
// The engine treats Success == false as a failure regardless of other fields.
type StepResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the result signals a failure. A nil result counts
// as a failure.
func (r *StepResult) Failed() bool {
	return r == nil || !r.Success
}

// View returns the result as a nested mapping so that template paths like
// "data.id" can be walked over it.
func (r *StepResult) View() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"success": r.Success,
		"data":    r.Data,
		"error":   r.Error,
	}
}

// StepExecutor is one callable collaborator unit. It accepts an action name
// and a resolved parameter bag and returns a uniform result. The context
// carries the request correlation ID and is passed through unmodified.
type StepExecutor interface {
	Execute(ctx context.Context, action string, params map[string]any) (*StepResult, error)
}

// ToolRegistry resolves tool identifiers to executors.
type ToolRegistry interface {
	Tool(id string) (StepExecutor, bool)
}

// ProviderRegistry resolves provider (MCP) identifiers to executors.
type ProviderRegistry interface {
	Provider(id string) (StepExecutor, bool)
}

// ToolMap is a map-backed ToolRegistry.
type ToolMap map[string]StepExecutor

// Tool implements ToolRegistry.
func (m ToolMap) Tool(id string) (StepExecutor, bool) {
	e, ok := m[id]
	return e, ok
}

// ProviderMap is a map-backed ProviderRegistry.
type ProviderMap map[string]StepExecutor

// Provider implements ProviderRegistry.
func (m ProviderMap) Provider(id string) (StepExecutor, bool) {
	e, ok := m[id]
	return e, ok
}
