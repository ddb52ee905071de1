package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidateSchema_CleanBatch(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	input := "CREATE TABLE b (a_id INT REFERENCES a(id)); CREATE TABLE a (id INT);"
	output, err := svc.ValidateSchema(context.Background(), input, "")
	require.NoError(t, err)

	assert.Contains(t, output, "-- SCHEMA VALIDATION:")
	assert.Contains(t, output, "successfully validated")
	assert.Contains(t, output, "2 table(s) parsed")
	assert.Contains(t, output, "CREATE TABLE a (id INT);")
}

func TestValidateSchema_Cycle(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	input := "CREATE TABLE x (y_id INT REFERENCES y(id)); CREATE TABLE y (x_id INT REFERENCES x(id));"
	output, err := svc.ValidateSchema(context.Background(), input, "")
	require.NoError(t, err)

	assert.Contains(t, output, "Circular foreign key dependencies detected")
	assert.Contains(t, output, "x, y")
}

func TestValidateSchema_DroppedFragmentsNoted(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	input := "CREATE TABLE a (id INT); INSERT INTO a VALUES (1);"
	output, err := svc.ValidateSchema(context.Background(), input, "")
	require.NoError(t, err)

	assert.Contains(t, output, "1 fragment(s) without a parseable CREATE TABLE header")
}

func TestValidateSchema_SampleDataAcknowledged(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	input := "CREATE TABLE a (id INT, name TEXT);"
	output, err := svc.ValidateSchema(context.Background(), input, `[{"id": 1, "name": "x"}]`)
	require.NoError(t, err)

	assert.Contains(t, output, "Data types appear consistent")
	assert.NotContains(t, output, "not well-formed JSON")
}

func TestValidateSchema_MalformedSampleDataNoted(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	input := "CREATE TABLE a (id INT);"
	output, err := svc.ValidateSchema(context.Background(), input, `{"id": 1,`)
	require.NoError(t, err)

	// Malformed sample data does not fail validation; it is noted.
	assert.Contains(t, output, "successfully validated")
	assert.Contains(t, output, "Data types appear consistent")
	assert.Contains(t, output, "not well-formed JSON")
}

func TestValidateSchema_NoSampleDataNoNote(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	output, err := svc.ValidateSchema(context.Background(), "CREATE TABLE a (id INT);", "   ")
	require.NoError(t, err)

	assert.NotContains(t, output, "sample data")
	assert.NotContains(t, output, "Data types appear consistent")
}

func TestValidateSchema_NoDDL(t *testing.T) {
	svc := NewValidationService(zap.NewNop())

	output, err := svc.ValidateSchema(context.Background(), "SELECT 1;", "")
	require.NoError(t, err)

	assert.Contains(t, output, "No CREATE TABLE statements found")
	assert.Contains(t, output, "SELECT 1;")
}
