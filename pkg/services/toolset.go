package services

import (
	"context"

	"github.com/ai-dope/schema-engine/pkg/llm"
)

// Toolset bundles the design services behind the llm.SchemaToolset
// interface so the tool executor can dispatch to them without importing
// this package.
type Toolset struct {
	optimizer   *OptimizerService
	validator   *ValidationService
	performance *PerformanceService
	simulator   *DMLSimulatorService
}

// NewToolset creates a toolset over the given services.
func NewToolset(
	optimizer *OptimizerService,
	validator *ValidationService,
	performance *PerformanceService,
	simulator *DMLSimulatorService,
) *Toolset {
	return &Toolset{
		optimizer:   optimizer,
		validator:   validator,
		performance: performance,
		simulator:   simulator,
	}
}

// Ensure Toolset implements llm.SchemaToolset.
var _ llm.SchemaToolset = (*Toolset)(nil)

// OptimizeDDL implements llm.SchemaToolset.
func (t *Toolset) OptimizeDDL(ctx context.Context, sqlCommands, workloadType string) (string, error) {
	return t.optimizer.OptimizeDDL(ctx, sqlCommands, workloadType)
}

// ValidateSchema implements llm.SchemaToolset.
func (t *Toolset) ValidateSchema(ctx context.Context, sqlCommands, sampleDataJSON string) (string, error) {
	return t.validator.ValidateSchema(ctx, sqlCommands, sampleDataJSON)
}

// EstimatePerformance implements llm.SchemaToolset.
func (t *Toolset) EstimatePerformance(ctx context.Context, workloadType string, expectedRows int64) (string, error) {
	return t.performance.EstimatePerformance(ctx, workloadType, expectedRows)
}

// SimulateDML implements llm.SchemaToolset.
func (t *Toolset) SimulateDML(ctx context.Context, query, description string) (string, error) {
	return t.simulator.SimulateDML(ctx, query, description)
}
