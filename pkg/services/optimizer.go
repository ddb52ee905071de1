package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/models"
	"github.com/ai-dope/schema-engine/pkg/sql"
)

// Canned optimization guidance per workload type.
var optimizationNotes = map[models.WorkloadType]string{
	models.WorkloadOLTP:   "-- Optimized for high-volume write speed and data integrity (suggesting indexes on FK/PK and proper normalization).",
	models.WorkloadOLAP:   "-- Optimized for read speed and aggregation (suggesting Columnar Indexes, partitioning by time, or denormalization).",
	models.WorkloadHTAP:   "-- Optimized for low latency on real-time data analytics (suggesting In-Memory tables or hybrid indexing).",
	models.WorkloadOLLP:   "-- Optimized for sub-millisecond decisions (ensuring minimal structure, focusing on data locality and low network overhead).",
	models.WorkloadBatch:  "-- Optimized for high-throughput scheduled processing (suggesting large block sizes, table partitioning for parallel loading, and minimal indexing during load).",
	models.WorkloadStream: "-- Optimized for continuous ingestion and real-time event detection (suggesting Time-Series partitioning, Kafka integration points, and high-speed primary key lookups).",
}

// OptimizerService reorders a DDL batch by dependency and appends
// workload-specific optimization notes.
type OptimizerService struct {
	logger *zap.Logger
}

// NewOptimizerService creates a DDL optimizer service.
func NewOptimizerService(logger *zap.Logger) *OptimizerService {
	return &OptimizerService{logger: logger.Named("optimizer")}
}

// OptimizeDDL runs the batch through dependency ordering and appends
// optimization comments for the given workload. Unrecognized workload types
// get a general note rather than an error; this sits on the chat tool path
// where the model sometimes invents values.
func (s *OptimizerService) OptimizeDDL(_ context.Context, sqlCommands, workloadType string) (string, error) {
	result := sql.ResolveDetailed(sqlCommands)

	s.logger.Debug("Optimizing DDL",
		zap.Bool("reordered", result.Reordered),
		zap.Int("tables", len(result.Tables)),
		zap.Int("dropped", result.Dropped),
		zap.String("workload", workloadType))

	var sb strings.Builder
	sb.WriteString(result.Output)

	wt, ok := models.ParseWorkloadType(workloadType)
	normalized := strings.ToUpper(strings.TrimSpace(workloadType))
	if normalized == "" {
		normalized = "UNSPECIFIED"
	}
	fmt.Fprintf(&sb, "\n-- OPTIMIZATION FOR %s:\n", normalized)
	if ok {
		sb.WriteString(optimizationNotes[wt])
		sb.WriteString("\n")
	} else {
		sb.WriteString("-- General optimization applied. No specific processing type detected.\n")
	}

	if note := namingNote(result.Tables); note != "" {
		sb.WriteString(note)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// namingNote flags tables whose names are singular. Plural table names are
// the house convention the designer recommends; the note shows the plural
// form so the rename is a copy-paste.
func namingNote(tables []string) string {
	var suggestions []string
	for _, name := range tables {
		lower := strings.ToLower(name)
		plural := inflection.Plural(lower)
		if plural != lower {
			suggestions = append(suggestions, fmt.Sprintf("%s -> %s", name, plural))
		}
	}
	if len(suggestions) == 0 {
		return ""
	}
	return "-- NAMING: consider plural table names for consistency: " + strings.Join(suggestions, ", ") + "."
}
