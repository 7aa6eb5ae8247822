package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorTypeMatchesEmbeddedBase(t *testing.T) {
	assert.True(t, IsErrorType(NewToolNotFound("frobnicate"), ErrorTypeTool))
	assert.True(t, IsErrorType(NewToolRateLimited("send_message", 0), ErrorTypeTool))
	assert.True(t, IsErrorType(NewNotRequester("c-1", "user-2"), ErrorTypeConfirmation))
	assert.True(t, IsErrorType(NewConfigMissingRequired("MODEL_ID"), ErrorTypeConfig))
	assert.True(t, IsErrorType(ErrAgentNoResponse, ErrorTypeAgent))

	assert.False(t, IsErrorType(NewToolNotFound("frobnicate"), ErrorTypeAgent))
	assert.False(t, IsErrorType(stderrors.New("plain"), ErrorTypeTool))
	assert.False(t, IsErrorType(nil, ErrorTypeTool))
}

func TestIsErrorTypeSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading config: %w", NewConfigMissingRequired("NEO4J_URI"))
	assert.True(t, IsErrorType(wrapped, ErrorTypeConfig))
}

func TestConfirmationExpiredMatchesByIdentity(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", ErrConfirmationExpired)
	assert.True(t, stderrors.Is(wrapped, ErrConfirmationExpired))
}

func TestAgentLLMFailedCarriesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewAgentLLMFailed("gpt-test", 1, cause)

	assert.True(t, IsErrorType(err, ErrorTypeAgent))
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "after 1 attempts")
}
