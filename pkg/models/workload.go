package models

import "strings"

// WorkloadType classifies how a schema will be used. The designer tailors
// optimization notes and performance estimates per workload.
type WorkloadType string

const (
	WorkloadOLTP   WorkloadType = "OLTP"   // high-volume transactional writes
	WorkloadOLAP   WorkloadType = "OLAP"   // analytical reads over history
	WorkloadHTAP   WorkloadType = "HTAP"   // mixed transactional/analytical
	WorkloadStream WorkloadType = "STREAM" // continuous event ingestion
	WorkloadOLLP   WorkloadType = "OLLP"   // sub-millisecond online decisions
	WorkloadBatch  WorkloadType = "BATCH"  // scheduled bulk processing
)

// ValidWorkloadTypes contains all recognized workload values, in report order.
var ValidWorkloadTypes = []WorkloadType{
	WorkloadOLTP,
	WorkloadOLAP,
	WorkloadHTAP,
	WorkloadStream,
	WorkloadOLLP,
	WorkloadBatch,
}

// ParseWorkloadType normalizes user input to a WorkloadType.
// Returns false if the value is not a recognized workload.
func ParseWorkloadType(s string) (WorkloadType, bool) {
	wt := WorkloadType(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range ValidWorkloadTypes {
		if v == wt {
			return wt, true
		}
	}
	return "", false
}
