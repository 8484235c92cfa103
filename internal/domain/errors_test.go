package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeNotFound, "domain not found")
	assert.Equal(t, "[NOT_FOUND] domain not found", err.Error())
}

func TestDomainError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDomainErrorWithCause(ErrCodeUpstream, "embedding call failed", cause)

	assert.Contains(t, err.Error(), "UPSTREAM_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestNewUpstreamError_WrapsCause(t *testing.T) {
	cause := errors.New("rate limited")
	err := NewUpstreamError("chat completion", cause)

	assert.Equal(t, ErrCodeUpstream, err.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestNewValidationError_FormatsMessage(t *testing.T) {
	err := NewValidationError("unknown domains: %v", []string{"x", "y"})

	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Contains(t, err.Message, "x")
	assert.Contains(t, err.Message, "y")
}
