package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/services"
	"github.com/ai-dope/schema-engine/pkg/sql"
)

func newSQLToolsMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := zap.NewNop()
	handler := NewSQLToolsHandler(
		services.NewOptimizerService(logger),
		services.NewValidationService(logger),
		services.NewPerformanceService(logger),
		services.NewDMLSimulatorService(logger),
		logger,
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	var data T
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	return data
}

func TestSQLToolsHandler_Order(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/order", OrderRequest{
		SQL: "CREATE TABLE b (a_id INT REFERENCES a(id)); CREATE TABLE a (id INT);",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[OrderResponse](t, rec)
	assert.True(t, data.Reordered)
	assert.Equal(t, []string{"a", "b"}, data.Tables)
	assert.Contains(t, data.Output, sql.OrderedMarker)
}

func TestSQLToolsHandler_Order_DMLPassThrough(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/order", OrderRequest{SQL: "SELECT * FROM users;"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[OrderResponse](t, rec)
	assert.False(t, data.Reordered)
	assert.Equal(t, "SELECT * FROM users;", data.Output)
}

func TestSQLToolsHandler_Order_Cycle(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/order", OrderRequest{
		SQL: "CREATE TABLE x (y_id INT REFERENCES y(id)); CREATE TABLE y (x_id INT REFERENCES x(id));",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[OrderResponse](t, rec)
	assert.False(t, data.Reordered)
	assert.Equal(t, []string{"x", "y"}, data.Unresolved)
	assert.Contains(t, data.Output, sql.CycleWarningMarker)
}

func TestSQLToolsHandler_Optimize(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/optimize", OptimizeRequest{
		SQL:          "CREATE TABLE events (id INT);",
		WorkloadType: "STREAM",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[TextResponse](t, rec)
	assert.Contains(t, data.Output, "-- OPTIMIZATION FOR STREAM:")
}

func TestSQLToolsHandler_Validate(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/validate", ValidateRequest{
		SQL: "CREATE TABLE a (id INT);",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[TextResponse](t, rec)
	assert.Contains(t, data.Output, "-- SCHEMA VALIDATION:")
}

func TestSQLToolsHandler_Validate_SampleData(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/validate", ValidateRequest{
		SQL:        "CREATE TABLE a (id INT);",
		SampleData: `{"id": 1,`,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[TextResponse](t, rec)
	assert.Contains(t, data.Output, "Data types appear consistent")
	assert.Contains(t, data.Output, "not well-formed JSON")
}

func TestSQLToolsHandler_Performance(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/performance", PerformanceRequest{
		WorkloadType: "OLAP",
		ExpectedRows: 1000000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[TextResponse](t, rec)
	assert.Contains(t, data.Output, "Performance Simulation Report")
}

func TestSQLToolsHandler_Performance_UnknownWorkload(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/performance", PerformanceRequest{WorkloadType: "QUANTUM"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_workload_type")
}

func TestSQLToolsHandler_Simulate(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/simulate", SimulateRequest{
		Query:       "SELECT member_id, full_name, team_name FROM team_members",
		Description: "Team A member list",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData[TextResponse](t, rec)
	assert.Contains(t, data.Output, "Simulated Query Output")
	assert.Contains(t, data.Output, "Sales Team A")
}

func TestSQLToolsHandler_Simulate_MissingQuery(t *testing.T) {
	mux := newSQLToolsMux(t)

	rec := postJSON(t, mux, "/api/sql/simulate", SimulateRequest{Description: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_query")
}

func TestSQLToolsHandler_InvalidBody(t *testing.T) {
	mux := newSQLToolsMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sql/order", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
