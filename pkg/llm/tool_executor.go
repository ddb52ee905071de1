package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
)

// SchemaToolset defines the design operations the tool executor dispatches
// to. The services package implements it; the indirection keeps llm free of
// a dependency on services.
type SchemaToolset interface {
	// OptimizeDDL reorders the batch by dependency and appends
	// workload-specific optimization notes.
	OptimizeDDL(ctx context.Context, sqlCommands, workloadType string) (string, error)

	// ValidateSchema runs quality assurance checks over the batch,
	// cross-checking the optional JSON sample data.
	ValidateSchema(ctx context.Context, sqlCommands, sampleDataJSON string) (string, error)

	// EstimatePerformance renders latency/concurrency/throughput estimates.
	EstimatePerformance(ctx context.Context, workloadType string, expectedRows int64) (string, error)

	// SimulateDML renders an example result table for a SELECT query.
	SimulateDML(ctx context.Context, query, description string) (string, error)
}

// SchemaToolExecutor implements ToolExecutor for the schema design chat,
// dispatching LLM tool calls to the design services.
type SchemaToolExecutor struct {
	toolset SchemaToolset
	logger  *zap.Logger
}

// NewSchemaToolExecutor creates a tool executor backed by the given toolset.
func NewSchemaToolExecutor(toolset SchemaToolset, logger *zap.Logger) *SchemaToolExecutor {
	return &SchemaToolExecutor{
		toolset: toolset,
		logger:  logger.Named("tool-executor"),
	}
}

// Ensure SchemaToolExecutor implements ToolExecutor.
var _ ToolExecutor = (*SchemaToolExecutor)(nil)

// ExecuteTool dispatches to the appropriate tool handler based on name.
func (e *SchemaToolExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	e.logger.Debug("Executing tool",
		zap.String("tool", name),
		zap.Int("arguments_len", len(arguments)))

	switch name {
	case "check_and_optimize_schema":
		return e.checkAndOptimizeSchema(ctx, arguments)
	case "perform_schema_quality_assurance":
		return e.performQualityAssurance(ctx, arguments)
	case "estimate_query_performance":
		return e.estimateQueryPerformance(ctx, arguments)
	case "simulate_dml_output":
		return e.simulateDMLOutput(ctx, arguments)
	default:
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownTool, name)
	}
}

type checkAndOptimizeArgs struct {
	SQLCommands  string `json:"sql_commands"`
	WorkloadType string `json:"workload_type"`
}

func (e *SchemaToolExecutor) checkAndOptimizeSchema(ctx context.Context, arguments string) (string, error) {
	var args checkAndOptimizeArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SQLCommands == "" {
		return "", fmt.Errorf("sql_commands is required")
	}

	return e.toolset.OptimizeDDL(ctx, args.SQLCommands, args.WorkloadType)
}

type qualityAssuranceArgs struct {
	SQLCommands    string `json:"sql_commands"`
	SampleDataJSON string `json:"sample_data_json"`
}

func (e *SchemaToolExecutor) performQualityAssurance(ctx context.Context, arguments string) (string, error) {
	var args qualityAssuranceArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SQLCommands == "" {
		return "", fmt.Errorf("sql_commands is required")
	}

	return e.toolset.ValidateSchema(ctx, args.SQLCommands, args.SampleDataJSON)
}

type estimatePerformanceArgs struct {
	// SQLCommands is accepted so the model can pass the DDL for context,
	// but the estimate depends only on workload type and row count.
	SQLCommands  string `json:"sql_commands"`
	WorkloadType string `json:"workload_type"`
	ExpectedRows int64  `json:"expected_rows"`
}

func (e *SchemaToolExecutor) estimateQueryPerformance(ctx context.Context, arguments string) (string, error) {
	var args estimatePerformanceArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.WorkloadType == "" {
		return "", fmt.Errorf("workload_type is required")
	}
	if args.ExpectedRows <= 0 {
		args.ExpectedRows = 100000
	}

	return e.toolset.EstimatePerformance(ctx, args.WorkloadType, args.ExpectedRows)
}

type simulateDMLArgs struct {
	Query       string `json:"query"`
	Description string `json:"description"`
}

func (e *SchemaToolExecutor) simulateDMLOutput(ctx context.Context, arguments string) (string, error) {
	var args simulateDMLArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	return e.toolset.SimulateDML(ctx, args.Query, args.Description)
}
