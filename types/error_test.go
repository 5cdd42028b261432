package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := NewError(ErrStepFailed, "step 2 failed")
	assert.Equal(t, "[STEP_FAILED] step 2 failed", err.Error())

	cause := errors.New("connection refused")
	err = Errorf(ErrRetryExhausted, "gave up after %d attempts", 3).WithCause(cause)
	assert.Equal(t, "[RETRY_EXHAUSTED] gave up after 3 attempts: connection refused", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrExecutionFailed, "panic recovered").WithCause(cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("run failed: %w", err)
	var e *Error
	require.ErrorAs(t, wrapped, &e)
	assert.Equal(t, ErrExecutionFailed, e.Code)
}

func TestCodeOf(t *testing.T) {
	err := NewError(ErrCircuitOpen, "rejected")
	assert.Equal(t, ErrCircuitOpen, CodeOf(err))
	assert.Equal(t, ErrCircuitOpen, CodeOf(fmt.Errorf("wrapped: %w", err)))

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsCode(t *testing.T) {
	err := NewError(ErrToolNotFound, "no such tool")
	assert.True(t, IsCode(err, ErrToolNotFound))
	assert.False(t, IsCode(err, ErrProviderNotFound))
	assert.False(t, IsCode(nil, ErrToolNotFound))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(NewError(ErrStepFailed, "nope")))
	assert.True(t, IsRetryable(NewError(ErrStepFailed, "maybe").WithRetryable(true)))
	assert.False(t, IsRetryable(errors.New("plain")))
}
