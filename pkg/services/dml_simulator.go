package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/sql"
)

// DMLSimulatorService renders plausible example result tables for SELECT
// queries so users can sanity-check a schema without a live database.
type DMLSimulatorService struct {
	logger *zap.Logger
}

// NewDMLSimulatorService creates a DML output simulator.
func NewDMLSimulatorService(logger *zap.Logger) *DMLSimulatorService {
	return &DMLSimulatorService{logger: logger.Named("dml-simulator")}
}

// SimulateDML guesses the result columns of a SELECT query, pairs them with
// canned example rows, and renders the whole thing as a Markdown table
// under the query. The description is free text supplied by the model, so
// it is screened for injection patterns before being echoed back.
func (s *DMLSimulatorService) SimulateDML(_ context.Context, query, description string) (string, error) {
	columns := guessColumns(query)
	rows := exampleRows(query)

	// When the guessed column list does not line up with the canned row
	// width, fall back to generic column names rather than misaligning.
	if len(rows) > 0 && len(columns) != len(rows[0]) {
		columns = make([]string, len(rows[0]))
		for i := range columns {
			columns[i] = fmt.Sprintf("Column_%d", i+1)
		}
	}

	s.logger.Debug("Simulating DML output",
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(rows)))

	tw := table.NewWriter()
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		tw.AppendRow(tr)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "### Simulated Query Output: (%s)\n\n", strings.TrimSpace(description))
	if check := sql.CheckFieldForInjection("description", description); check != nil {
		s.logger.Warn("Injection pattern in result description",
			zap.String("fingerprint", check.Fingerprint))
		sb.WriteString("> CAUTION: the result description contains SQL-injection-like content and should not be pasted into a live query.\n\n")
	}
	sb.WriteString("**Query:**\n")
	sb.WriteString("```sql\n")
	sb.WriteString(strings.TrimSpace(query))
	sb.WriteString("\n```\n\n")
	sb.WriteString(tw.RenderMarkdown())

	return sb.String(), nil
}

// guessColumns extracts likely result column names from the SELECT list.
// Aliases win, table prefixes are stripped, and anything unparseable yields
// an empty list so the caller falls back to generic names.
func guessColumns(query string) []string {
	upper := strings.ToUpper(query)
	fromIdx := strings.Index(upper, "FROM")

	selectList := query
	if fromIdx >= 0 {
		selectList = query[:fromIdx]
	}
	selectIdx := strings.Index(strings.ToUpper(selectList), "SELECT")
	if selectIdx >= 0 {
		selectList = selectList[selectIdx+len("SELECT"):]
	}

	var columns []string
	for _, item := range strings.Split(selectList, ",") {
		item = strings.TrimSpace(item)
		if item == "" || item == "*" {
			continue
		}

		// Alias wins: "expr AS alias" or a trailing bare alias after a space.
		if name, ok := extractAlias(item); ok {
			columns = append(columns, name)
			continue
		}

		// Strip table prefix ("t.col" -> "col") and function noise.
		name := item
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			name = name[dot+1:]
		}
		name = strings.Trim(name, "()`\" ")
		if name != "" {
			columns = append(columns, name)
		}
	}

	return columns
}

// extractAlias returns the alias of a select item if it has one.
func extractAlias(item string) (string, bool) {
	fields := strings.Fields(item)
	for i := len(fields) - 2; i >= 0; i-- {
		if strings.EqualFold(fields[i], "AS") && i+1 < len(fields) {
			return strings.Trim(fields[i+1], "`\""), true
		}
	}
	return "", false
}

// exampleRows picks canned rows matching the query's apparent subject.
// The member/KPI and team shapes mirror the reporting schemas this designer
// is most often asked about; anything else gets a generic two-column sample.
func exampleRows(query string) [][]string {
	upper := strings.ToUpper(query)

	switch {
	case strings.Contains(upper, "MEMBER") && (strings.Contains(upper, "KPI") || strings.Contains(upper, "VALUE")):
		return [][]string{
			{"Budi", "Santoso", "Sales Revenue", "95000.00", "2023-10-26"},
			{"Siti", "Aminah", "Sales Revenue", "88000.00", "2023-10-26"},
		}
	case strings.Contains(upper, "TEAM") && strings.Contains(upper, "MEMBER"):
		return [][]string{
			{"101", "Budi Santoso", "Sales Team A"},
			{"102", "Siti Aminah", "Sales Team A"},
		}
	default:
		return [][]string{
			{"Sample_Value_A", "123"},
			{"Sample_Value_B", "456"},
		}
	}
}
