package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFieldForInjection(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantSQLi  bool
	}{
		{
			name:      "classic tautology",
			fieldName: "description",
			value:     "1' OR '1'='1",
			wantSQLi:  true,
		},
		{
			name:      "union based",
			fieldName: "description",
			value:     "x' UNION SELECT password FROM users--",
			wantSQLi:  true,
		},
		{
			name:      "plain text",
			fieldName: "description",
			value:     "monthly revenue per team",
			wantSQLi:  false,
		},
		{
			name:      "empty value",
			fieldName: "description",
			value:     "",
			wantSQLi:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckFieldForInjection(tt.fieldName, tt.value)
			if !tt.wantSQLi {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.True(t, result.IsSQLi)
			assert.Equal(t, tt.fieldName, result.FieldName)
			assert.Equal(t, tt.value, result.FieldValue)
			assert.NotEmpty(t, result.Fingerprint)
		})
	}
}
