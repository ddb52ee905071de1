package llm

// ToolDefinition defines a tool that can be called by the LLM.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ParameterProperty defines a parameter property in JSON Schema format.
type ParameterProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// NewToolDefinition creates a new tool definition with standard JSON Schema parameters.
func NewToolDefinition(name, description string, properties map[string]ParameterProperty, required []string) ToolDefinition {
	props := make(map[string]any)
	for k, v := range properties {
		props[k] = map[string]any{
			"type":        v.Type,
			"description": v.Description,
		}
		if len(v.Enum) > 0 {
			props[k].(map[string]any)["enum"] = v.Enum
		}
	}

	return ToolDefinition{
		Name:        name,
		Description: description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

// GetSchemaDesignTools returns the tool definitions for the schema design chat.
func GetSchemaDesignTools() []ToolDefinition {
	return []ToolDefinition{
		NewToolDefinition(
			"check_and_optimize_schema",
			"Reorder a batch of CREATE TABLE statements by foreign key dependency and suggest workload-specific optimizations",
			map[string]ParameterProperty{
				"sql_commands": {
					Type:        "string",
					Description: "The full DDL batch to check, semicolon-separated",
				},
				"workload_type": {
					Type:        "string",
					Description: "The workload the schema targets",
					Enum:        []string{"OLTP", "OLAP", "HTAP", "STREAM", "OLLP", "BATCH"},
				},
			},
			[]string{"sql_commands", "workload_type"},
		),
		NewToolDefinition(
			"perform_schema_quality_assurance",
			"Run quality assurance checks over a proposed schema before presenting it to the user",
			map[string]ParameterProperty{
				"sql_commands": {
					Type:        "string",
					Description: "The full DDL batch to validate, semicolon-separated",
				},
				"sample_data_json": {
					Type:        "string",
					Description: "JSON sample data the user provided, cross-checked against the schema",
				},
			},
			[]string{"sql_commands"},
		),
		NewToolDefinition(
			"estimate_query_performance",
			"Estimate latency, concurrency, and throughput figures for a workload type and expected row count",
			map[string]ParameterProperty{
				"sql_commands": {
					Type:        "string",
					Description: "The DDL batch the estimate refers to",
				},
				"workload_type": {
					Type:        "string",
					Description: "The workload to profile",
					Enum:        []string{"OLTP", "OLAP", "HTAP", "STREAM", "OLLP", "BATCH"},
				},
				"expected_rows": {
					Type:        "integer",
					Description: "Expected number of rows the query touches (default 100000)",
				},
			},
			[]string{"workload_type"},
		),
		NewToolDefinition(
			"simulate_dml_output",
			"Render a plausible example result table for a SELECT query so the user can sanity-check the schema",
			map[string]ParameterProperty{
				"query": {
					Type:        "string",
					Description: "The SELECT query to simulate",
				},
				"description": {
					Type:        "string",
					Description: "Short description of what the query result represents",
				},
			},
			[]string{"query"},
		),
	}
}
