package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
	"github.com/ai-dope/schema-engine/pkg/logging"
	"github.com/ai-dope/schema-engine/pkg/services"
	"github.com/ai-dope/schema-engine/pkg/sql"
)

// OrderRequest for POST /api/sql/order
type OrderRequest struct {
	SQL string `json:"sql"`
}

// OrderResponse carries the ordered output plus resolution details.
type OrderResponse struct {
	Output     string   `json:"output"`
	Reordered  bool     `json:"reordered"`
	Tables     []string `json:"tables,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
	Dropped    int      `json:"dropped,omitempty"`
}

// OptimizeRequest for POST /api/sql/optimize
type OptimizeRequest struct {
	SQL          string `json:"sql"`
	WorkloadType string `json:"workload_type"`
}

// ValidateRequest for POST /api/sql/validate
type ValidateRequest struct {
	SQL        string `json:"sql"`
	SampleData string `json:"sample_data"`
}

// PerformanceRequest for POST /api/sql/performance. SQL is accepted for
// symmetry with the other tool endpoints; the estimate does not analyze it.
type PerformanceRequest struct {
	SQL          string `json:"sql"`
	WorkloadType string `json:"workload_type"`
	ExpectedRows int64  `json:"expected_rows"`
}

// SimulateRequest for POST /api/sql/simulate
type SimulateRequest struct {
	Query       string `json:"query"`
	Description string `json:"description"`
}

// TextResponse wraps a single rendered text result.
type TextResponse struct {
	Output string `json:"output"`
}

// SQLToolsHandler exposes the design tools as direct endpoints, bypassing
// the chat loop. Useful for scripting and for the UI's one-shot actions.
type SQLToolsHandler struct {
	optimizer   *services.OptimizerService
	validator   *services.ValidationService
	performance *services.PerformanceService
	simulator   *services.DMLSimulatorService
	logger      *zap.Logger
}

// NewSQLToolsHandler creates a handler over the design services.
func NewSQLToolsHandler(
	optimizer *services.OptimizerService,
	validator *services.ValidationService,
	performance *services.PerformanceService,
	simulator *services.DMLSimulatorService,
	logger *zap.Logger,
) *SQLToolsHandler {
	return &SQLToolsHandler{
		optimizer:   optimizer,
		validator:   validator,
		performance: performance,
		simulator:   simulator,
		logger:      logger,
	}
}

// RegisterRoutes registers the SQL tool routes on the given mux.
func (h *SQLToolsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sql/order", h.Order)
	mux.HandleFunc("POST /api/sql/optimize", h.Optimize)
	mux.HandleFunc("POST /api/sql/validate", h.Validate)
	mux.HandleFunc("POST /api/sql/performance", h.Performance)
	mux.HandleFunc("POST /api/sql/simulate", h.Simulate)
}

// Order handles POST /api/sql/order
func (h *SQLToolsHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	result := sql.ResolveDetailed(req.SQL)

	h.logger.Debug("Ordered DDL batch",
		zap.Bool("reordered", result.Reordered),
		zap.Int("tables", len(result.Tables)),
		zap.String("sql", logging.SanitizeSQL(req.SQL)))

	data := OrderResponse{
		Output:     result.Output,
		Reordered:  result.Reordered,
		Tables:     result.Tables,
		Unresolved: result.Unresolved,
		Dropped:    result.Dropped,
	}
	h.write(w, data)
}

// Optimize handles POST /api/sql/optimize
func (h *SQLToolsHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.optimizer.OptimizeDDL(r.Context(), req.SQL, req.WorkloadType)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, TextResponse{Output: output})
}

// Validate handles POST /api/sql/validate
func (h *SQLToolsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.validator.ValidateSchema(r.Context(), req.SQL, req.SampleData)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, TextResponse{Output: output})
}

// Performance handles POST /api/sql/performance
func (h *SQLToolsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	var req PerformanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	output, err := h.performance.EstimatePerformance(r.Context(), req.WorkloadType, req.ExpectedRows)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownWorkloadType) {
			if err := ErrorResponse(w, http.StatusBadRequest, "unknown_workload_type", "Workload type must be one of OLTP, OLAP, HTAP, STREAM, OLLP, BATCH"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.fail(w, err)
		return
	}
	h.write(w, TextResponse{Output: output})
}

// Simulate handles POST /api/sql/simulate
func (h *SQLToolsHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Query == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_query", "Query is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	output, err := h.simulator.SimulateDML(r.Context(), req.Query, req.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, TextResponse{Output: output})
}

func (h *SQLToolsHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

func (h *SQLToolsHandler) write(w http.ResponseWriter, data any) {
	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SQLToolsHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("SQL tool request failed", zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Request failed"); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
