package sequence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Billhebert/chatIAS-sub004/types"
)

// dispatcher executes resolved steps against the collaborator layer. It
// normalizes every outcome into a uniform StepResult; the returned error is
// non-nil only when a collaborator panics, which halts the sequence.
type dispatcher struct {
	tools     types.ToolRegistry
	providers types.ProviderRegistry
	logger    *zap.Logger
}

// dispatch invokes the step's tool or provider collaborator with the
// resolved params. Provider failures fall back to FallbackMCP once; the
// fallback's result becomes the step's result with no further chaining.
func (d *dispatcher) dispatch(ctx context.Context, step *SequenceStep, params map[string]any) (result *types.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = types.Errorf(types.ErrExecutionFailed,
				"collaborator panic in step %d (%s): %v", step.Order, step.Action, r)
		}
	}()

	switch {
	case step.Tool != "":
		if d.tools == nil {
			return failure(types.ErrToolNotFound, "tool not found: %s", step.Tool), nil
		}
		tool, ok := d.tools.Tool(step.Tool)
		if !ok {
			return failure(types.ErrToolNotFound, "tool not found: %s", step.Tool), nil
		}
		return normalize(tool.Execute(ctx, step.Action, params)), nil

	case step.MCP != "":
		if d.providers == nil {
			return failure(types.ErrProviderNotFound, "provider not found: %s", step.MCP), nil
		}
		provider, ok := d.providers.Provider(step.MCP)
		if !ok {
			return failure(types.ErrProviderNotFound, "provider not found: %s", step.MCP), nil
		}
		result := normalize(provider.Execute(ctx, step.Action, params))
		if result.Failed() && step.FallbackMCP != "" {
			d.logger.Warn("primary provider failed, invoking fallback",
				zap.Int("order", step.Order),
				zap.String("mcp", step.MCP),
				zap.String("fallback_mcp", step.FallbackMCP),
				zap.String("error", result.Error))
			fallback, ok := d.providers.Provider(step.FallbackMCP)
			if !ok {
				return failure(types.ErrProviderNotFound, "fallback provider not found: %s", step.FallbackMCP), nil
			}
			return normalize(fallback.Execute(ctx, step.Action, params)), nil
		}
		return result, nil

	default:
		// Unreachable for validated definitions; the builder and loader
		// enforce tool/mcp exclusivity at construction time.
		return failure(types.ErrStepInvalid, "step %d has neither tool nor mcp", step.Order), nil
	}
}

// normalize folds a collaborator's error return into the uniform result
// shape so the step failure policy applies to it like any other failure.
func normalize(result *types.StepResult, err error) *types.StepResult {
	if err != nil {
		return &types.StepResult{Success: false, Error: err.Error()}
	}
	if result == nil {
		return &types.StepResult{Success: false, Error: "collaborator returned no result"}
	}
	return result
}

func failure(code types.ErrorCode, format string, args ...any) *types.StepResult {
	return &types.StepResult{Success: false, Error: fmt.Sprintf("[%s] %s", code, fmt.Sprintf(format, args...))}
}
