package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepResult_Failed(t *testing.T) {
	var nilResult *StepResult
	assert.True(t, nilResult.Failed())
	assert.True(t, (&StepResult{}).Failed())
	assert.True(t, (&StepResult{Success: false, Error: "boom"}).Failed())
	assert.False(t, (&StepResult{Success: true}).Failed())
}

func TestStepResult_View(t *testing.T) {
	var nilResult *StepResult
	assert.Nil(t, nilResult.View())

	r := &StepResult{Success: true, Data: map[string]any{"id": 7}}
	view := r.View()
	assert.Equal(t, true, view["success"])
	assert.Equal(t, map[string]any{"id": 7}, view["data"])
	assert.Equal(t, "", view["error"])
}

func TestRegistryMaps(t *testing.T) {
	tools := ToolMap{"echo": nil}
	_, ok := tools.Tool("echo")
	assert.True(t, ok)
	_, ok = tools.Tool("absent")
	assert.False(t, ok)

	providers := ProviderMap{"db": nil}
	_, ok = providers.Provider("db")
	assert.True(t, ok)
	_, ok = providers.Provider("absent")
	assert.False(t, ok)
}
