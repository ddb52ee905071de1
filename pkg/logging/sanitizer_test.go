package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		excludes string
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name:     "api key in query string",
			err:      errors.New("request failed: api_key=sk1234567890abcdefghijklmnop"),
			contains: "api_key=" + RedactedText,
			excludes: "sk1234567890",
		},
		{
			name:     "bearer token",
			err:      errors.New("401 unauthorized: Bearer eyJhbGciOiJIUzI1NiJ9.payload.sig"),
			contains: "Bearer " + RedactedText,
			excludes: "eyJhbGciOiJIUzI1NiJ9",
		},
		{
			name:     "plain error untouched",
			err:      errors.New("connection refused"),
			contains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			if tt.err == nil {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.contains)
			if tt.excludes != "" {
				assert.NotContains(t, got, tt.excludes)
			}
		})
	}
}

func TestSanitizeSQL(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, SanitizeSQL(short))

	long := strings.Repeat("CREATE TABLE t (id INT); ", 50)
	got := SanitizeSQL(long)
	assert.Len(t, got, MaxSQLLogLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
