package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
	"github.com/ai-dope/schema-engine/pkg/models"
	"github.com/ai-dope/schema-engine/pkg/services"
	"github.com/ai-dope/schema-engine/pkg/sql"
)

// SchemaToolDeps contains dependencies for schema design tools.
type SchemaToolDeps struct {
	Optimizer   *services.OptimizerService
	Validator   *services.ValidationService
	Performance *services.PerformanceService
	Simulator   *services.DMLSimulatorService
	Logger      *zap.Logger
}

// RegisterSchemaTools registers the schema design MCP tools.
func RegisterSchemaTools(s *server.MCPServer, deps *SchemaToolDeps) {
	registerOrderTool(s, deps)
	registerOptimizeTool(s, deps)
	registerValidateTool(s, deps)
	registerPerformanceTool(s, deps)
	registerSimulateTool(s, deps)
}

// orderResult contains the dependency resolution output.
type orderResult struct {
	Output     string   `json:"output"`
	Reordered  bool     `json:"reordered"`
	Tables     []string `json:"tables,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
	Dropped    int      `json:"dropped,omitempty"`
}

// registerOrderTool adds the order_sql_statements tool for topological DDL ordering.
func registerOrderTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"order_sql_statements",
		mcp.WithDescription(
			"Reorder a batch of CREATE TABLE statements so every table appears "+
				"after the tables it REFERENCES. DML and other non-DDL input is "+
				"returned unchanged. Circular dependencies are reported as a "+
				"warning with the original statements preserved.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("SQL text containing one or more statements separated by semicolons"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}

		result := sql.ResolveDetailed(sqlText)

		jsonResult, err := json.Marshal(orderResult{
			Output:     result.Output,
			Reordered:  result.Reordered,
			Tables:     result.Tables,
			Unresolved: result.Unresolved,
			Dropped:    result.Dropped,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}

		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// registerOptimizeTool adds the optimize_ddl tool.
func registerOptimizeTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"optimize_ddl",
		mcp.WithDescription(
			"Order DDL statements by foreign key dependency and annotate the "+
				"result with workload-specific optimization notes "+
				"(OLTP, OLAP, HTAP, STREAM, OLLP, BATCH).",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("CREATE TABLE statements to optimize"),
		),
		mcp.WithString(
			"workload_type",
			mcp.Description("Target workload type (e.g., 'OLTP', 'OLAP')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}

		workloadType := ""
		if v, ok := req.Params.Arguments.(map[string]any)["workload_type"]; ok {
			if s, ok := v.(string); ok {
				workloadType = s
			}
		}

		output, err := deps.Optimizer.OptimizeDDL(ctx, sqlText, workloadType)
		if err != nil {
			return nil, fmt.Errorf("optimization failed: %w", err)
		}

		return mcp.NewToolResultText(output), nil
	})
}

// registerValidateTool adds the validate_schema tool.
func registerValidateTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"validate_schema",
		mcp.WithDescription(
			"Run quality assurance over a schema: parse the CREATE TABLE "+
				"statements, check for circular foreign key dependencies, and "+
				"return the dependency-ordered DDL with a validation summary.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("CREATE TABLE statements to validate"),
		),
		mcp.WithString(
			"sample_data_json",
			mcp.Description("JSON sample data to cross-check against the schema"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}

		sampleData := ""
		if v, ok := req.Params.Arguments.(map[string]any)["sample_data_json"]; ok {
			if s, ok := v.(string); ok {
				sampleData = s
			}
		}

		output, err := deps.Validator.ValidateSchema(ctx, sqlText, sampleData)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		return mcp.NewToolResultText(output), nil
	})
}

// registerPerformanceTool adds the estimate_query_performance tool.
func registerPerformanceTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"estimate_query_performance",
		mcp.WithDescription(
			"Produce a performance simulation report comparing the proposed "+
				"workload type against all supported types at a given row count. "+
				"Includes estimated transaction latency, analysis duration, and "+
				"concurrency capacity.",
		),
		mcp.WithString(
			"workload_type",
			mcp.Required(),
			mcp.Description("Proposed workload type: OLTP, OLAP, HTAP, STREAM, OLLP, or BATCH"),
		),
		mcp.WithNumber(
			"expected_rows",
			mcp.Description("Expected row count for the largest table (default 100000)"),
		),
		mcp.WithString(
			"sql",
			mcp.Description("The DDL the estimate refers to; accepted for context, not analyzed"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workloadType, err := req.RequireString("workload_type")
		if err != nil {
			return nil, err
		}

		expectedRows := int64(100000)
		if v, ok := req.Params.Arguments.(map[string]any)["expected_rows"]; ok {
			if f, ok := v.(float64); ok && f > 0 {
				expectedRows = int64(f)
			}
		}

		output, err := deps.Performance.EstimatePerformance(ctx, workloadType, expectedRows)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnknownWorkloadType) {
				return NewErrorResultWithDetails(
					"unknown_workload_type",
					fmt.Sprintf("unknown workload type %q", workloadType),
					map[string]any{"valid_types": workloadTypeNames()},
				), nil
			}
			return nil, fmt.Errorf("performance estimation failed: %w", err)
		}

		return mcp.NewToolResultText(output), nil
	})
}

// registerSimulateTool adds the simulate_dml_output tool.
func registerSimulateTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"simulate_dml_output",
		mcp.WithDescription(
			"Render a markdown table of plausible example rows for a SELECT "+
				"query, inferring column names from the projection list. Used to "+
				"preview what a query would return against a designed schema.",
		),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("The SELECT query to simulate"),
		),
		mcp.WithString(
			"description",
			mcp.Description("Short description of what the query is expected to show"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(query) == "" {
			return NewErrorResult("invalid_parameters", "query parameter cannot be empty"), nil
		}

		description := ""
		if v, ok := req.Params.Arguments.(map[string]any)["description"]; ok {
			if s, ok := v.(string); ok {
				description = s
			}
		}

		output, err := deps.Simulator.SimulateDML(ctx, query, description)
		if err != nil {
			return nil, fmt.Errorf("simulation failed: %w", err)
		}

		return mcp.NewToolResultText(output), nil
	})
}

func workloadTypeNames() []string {
	names := make([]string, len(models.ValidWorkloadTypes))
	for i, wt := range models.ValidWorkloadTypes {
		names[i] = string(wt)
	}
	return names
}
