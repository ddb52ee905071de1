package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
)

func TestEstimatePerformance_Report(t *testing.T) {
	svc := NewPerformanceService(zap.NewNop())

	report, err := svc.EstimatePerformance(context.Background(), "OLTP", 100000)
	require.NoError(t, err)

	assert.Contains(t, report, "## Performance Simulation Report (100000 Rows)")
	// All six workload types appear in the comparison table.
	for _, wt := range []string{"**OLTP**", "OLAP", "HTAP", "STREAM", "OLLP", "BATCH"} {
		assert.Contains(t, report, wt)
	}
	// At 100k rows the scale factor is 1: OLTP transaction is 100*0.1 ms.
	assert.Contains(t, report, "10.000 ms")
	assert.Contains(t, report, "Estimation Details for Proposed Type (OLTP)")
	// OLLP has the smallest transaction factor, BATCH the smallest analysis factor.
	assert.Contains(t, report, "**Transaction Speed** is: **OLLP**")
	assert.Contains(t, report, "**High Volume Analysis** is: **BATCH**")
}

func TestEstimatePerformance_ScalesWithRows(t *testing.T) {
	svc := NewPerformanceService(zap.NewNop())

	// 1M rows means a 10x scale: OLTP simple transaction becomes 100 ms.
	report, err := svc.EstimatePerformance(context.Background(), "oltp", 1000000)
	require.NoError(t, err)
	assert.Contains(t, report, "100.000 ms")
}

func TestEstimatePerformance_SmallRowCountsClampToBase(t *testing.T) {
	svc := NewPerformanceService(zap.NewNop())

	small, err := svc.EstimatePerformance(context.Background(), "OLTP", 100)
	require.NoError(t, err)
	base, err := svc.EstimatePerformance(context.Background(), "OLTP", 100000)
	require.NoError(t, err)

	// Below the scale unit, estimates stay at the base factor.
	assert.Contains(t, small, "10.000 ms")
	assert.Contains(t, base, "10.000 ms")
}

func TestEstimatePerformance_UnknownWorkload(t *testing.T) {
	svc := NewPerformanceService(zap.NewNop())

	_, err := svc.EstimatePerformance(context.Background(), "QUANTUM", 1000)
	assert.ErrorIs(t, err, apperrors.ErrUnknownWorkloadType)
}
