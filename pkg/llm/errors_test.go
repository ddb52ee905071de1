package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
	}{
		{
			name:          "unauthorized",
			err:           errors.New("401 unauthorized"),
			wantType:      ErrorTypeAuth,
			wantRetryable: false,
		},
		{
			name:          "invalid api key",
			err:           errors.New("error: invalid api key provided"),
			wantType:      ErrorTypeAuth,
			wantRetryable: false,
		},
		{
			name:          "model not found",
			err:           errors.New("the model 'gpt-5000' does not exist"),
			wantType:      ErrorTypeModel,
			wantRetryable: false,
		},
		{
			name:          "endpoint 404",
			err:           errors.New("404 page not found"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: false,
		},
		{
			name:          "connection refused",
			err:           errors.New("dial tcp 127.0.0.1:8000: connection refused"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
		},
		{
			name:          "timeout",
			err:           errors.New("context deadline exceeded"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
		},
		{
			name:          "rate limited",
			err:           errors.New("429 too many requests"),
			wantType:      ErrorTypeUnknown,
			wantRetryable: true,
		},
		{
			name:          "server error",
			err:           errors.New("unexpected status code 503"),
			wantType:      ErrorTypeEndpoint,
			wantRetryable: true,
		},
		{
			name:          "unknown",
			err:           errors.New("something odd"),
			wantType:      ErrorTypeUnknown,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, tt.wantType, classified.Type)
			assert.Equal(t, tt.wantRetryable, classified.Retryable)
			assert.ErrorIs(t, classified, tt.err)
		})
	}
}

func TestClassifyError_PassesThroughStructuredError(t *testing.T) {
	original := NewError(ErrorTypeAuth, "authentication failed", false, nil)
	wrapped := fmt.Errorf("request failed: %w", original)

	classified := ClassifyError(wrapped)
	assert.Same(t, original, classified)
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestErrorFormatting(t *testing.T) {
	err := NewError(ErrorTypeEndpoint, "server error", true, errors.New("boom"))
	err.StatusCode = 503
	err.Model = "gpt-4o"

	msg := err.Error()
	assert.Contains(t, msg, "endpoint")
	assert.Contains(t, msg, "HTTP 503")
	assert.Contains(t, msg, "model=gpt-4o")
	assert.Contains(t, msg, "boom")
}

func TestIsRetryableAndGetErrorType(t *testing.T) {
	retryable := NewError(ErrorTypeEndpoint, "server error", true, nil)
	assert.True(t, IsRetryable(retryable))
	assert.Equal(t, ErrorTypeEndpoint, GetErrorType(retryable))

	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, GetErrorType(errors.New("plain")))
}
