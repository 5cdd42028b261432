package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Billhebert/chatIAS-sub004/testutil/mocks"
	"github.com/Billhebert/chatIAS-sub004/types"
)

func newTestDispatcher(tools types.ToolMap, providers types.ProviderMap) *dispatcher {
	return &dispatcher{tools: tools, providers: providers, logger: zap.NewNop()}
}

func TestDispatcher_ToolStep(t *testing.T) {
	echo := mocks.Echo()
	d := newTestDispatcher(types.ToolMap{"echo": echo}, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Tool: "echo", Action: "run"},
		map[string]any{"msg": "hi"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"msg": "hi"}, result.Data)
	require.Len(t, echo.Calls(), 1)
	assert.Equal(t, "run", echo.Calls()[0].Action)
}

func TestDispatcher_ToolNotFound(t *testing.T) {
	d := newTestDispatcher(types.ToolMap{}, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Tool: "ghost", Action: "run"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "tool not found: ghost")
}

func TestDispatcher_ProviderFallback(t *testing.T) {
	primary := mocks.NewCollaborator().WithFailure("primary down")
	backup := mocks.NewCollaborator().WithSuccess(map[string]any{"ok": 1})
	d := newTestDispatcher(nil, types.ProviderMap{"primary": primary, "backup": backup})

	step := &SequenceStep{Order: 1, MCP: "primary", FallbackMCP: "backup", Action: "fetch"}
	result, err := d.dispatch(context.Background(), step, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"ok": 1}, result.Data)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, backup.CallCount())
}

func TestDispatcher_FallbackNotInvokedOnSuccess(t *testing.T) {
	primary := mocks.NewCollaborator().WithSuccess(nil)
	backup := mocks.NewCollaborator()
	d := newTestDispatcher(nil, types.ProviderMap{"primary": primary, "backup": backup})

	step := &SequenceStep{Order: 1, MCP: "primary", FallbackMCP: "backup", Action: "fetch"}
	result, err := d.dispatch(context.Background(), step, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, backup.CallCount())
}

func TestDispatcher_FallbackProviderMissing(t *testing.T) {
	primary := mocks.NewCollaborator().WithFailure("down")
	d := newTestDispatcher(nil, types.ProviderMap{"primary": primary})

	step := &SequenceStep{Order: 1, MCP: "primary", FallbackMCP: "ghost", Action: "fetch"}
	result, err := d.dispatch(context.Background(), step, nil)

	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "fallback provider not found: ghost")
}

func TestDispatcher_CollaboratorErrorBecomesFailureResult(t *testing.T) {
	tool := mocks.NewCollaborator().WithError(errors.New("connection refused"))
	d := newTestDispatcher(types.ToolMap{"flaky": tool}, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Tool: "flaky", Action: "run"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, "connection refused", result.Error)
}

func TestDispatcher_NilResultBecomesFailure(t *testing.T) {
	tool := mocks.NewCollaborator().WithFunc(func(context.Context, string, map[string]any) (*types.StepResult, error) {
		return nil, nil
	})
	d := newTestDispatcher(types.ToolMap{"odd": tool}, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Tool: "odd", Action: "run"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Failed())
}

func TestDispatcher_PanicIsRecovered(t *testing.T) {
	tool := mocks.NewCollaborator().WithPanic("kaboom")
	d := newTestDispatcher(types.ToolMap{"bomb": tool}, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Tool: "bomb", Action: "run"}, nil)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, types.IsCode(err, types.ErrExecutionFailed))
	assert.Contains(t, err.Error(), "kaboom")
}

func TestDispatcher_NoCollaboratorConfigured(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	result, err := d.dispatch(context.Background(), &SequenceStep{Order: 1, Action: "run"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Failed())
}
