package sql

import (
	"strings"
)

// Stable markers callers can test for to tell which path Resolve took.
const (
	// OrderedMarker prefixes successfully reordered DDL output.
	OrderedMarker = "-- DDL statements ordered by foreign key dependency"
	// CycleWarningMarker prefixes the fallback output when a reference
	// cycle prevents ordering. The original input follows unmodified.
	CycleWarningMarker = "-- WARNING: circular foreign key dependencies: "
)

// ResolveResult carries the resolved text plus details about how it was
// produced, for callers that want to log or branch on the outcome.
type ResolveResult struct {
	// Output is the text to hand downstream. Always valid SQL-bearing
	// text: the verbatim input, the reordered batch, or the input behind
	// a cycle warning comment.
	Output string
	// Reordered is true only when Output is a reordered batch.
	Reordered bool
	// Tables lists the ordered table names on success.
	Tables []string
	// Unresolved lists the table names caught in reference cycles.
	Unresolved []string
	// Dropped counts fragments without a parseable CREATE TABLE header.
	// These are excluded from reordered output.
	Dropped int
}

// Resolve reorders the CREATE TABLE statements of a batch so that every
// table appears after the in-batch tables it references. Input without any
// CREATE TABLE (DML, prose, anything) is returned verbatim, which makes
// Resolve idempotent on such input. Reference cycles fall back to the
// original text behind a warning comment naming the tables involved.
//
// Resolve is a total function: it never fails, whatever the input. It sits
// in a best-effort formatting pipeline where an error would take down the
// surrounding presentation, so every degenerate case maps to a usable
// string.
func Resolve(sqlText string) string {
	return ResolveDetailed(sqlText).Output
}

// ResolveDetailed is Resolve with outcome details.
func ResolveDetailed(sqlText string) ResolveResult {
	// DML safeguard: nothing to order, pass through untouched.
	if !ContainsCreateTable(sqlText) {
		return ResolveResult{Output: sqlText}
	}

	fragments := SplitStatements(sqlText)

	graph := NewDependencyGraph()
	dropped := 0
	for _, fragment := range fragments {
		stmt, ok := ParseCreateTable(fragment)
		if !ok {
			// No recognizable header. The fragment is left out of the
			// dependency graph and will not reappear in ordered output.
			dropped++
			continue
		}
		graph.Add(stmt)
	}

	ordered, unresolved := graph.Order()

	if len(unresolved) > 0 {
		return ResolveResult{
			Output:     CycleWarningMarker + strings.Join(unresolved, ", ") + "\n" + sqlText,
			Unresolved: unresolved,
			Dropped:    dropped,
		}
	}

	var sb strings.Builder
	sb.WriteString(OrderedMarker)
	sb.WriteString("\n")
	tables := make([]string, len(ordered))
	for i, stmt := range ordered {
		tables[i] = stmt.TableName
		sb.WriteString(stmt.Raw)
		if i < len(ordered)-1 {
			// Blank line after each terminator for readability.
			sb.WriteString("\n\n")
		}
	}

	return ResolveResult{
		Output:    sb.String(),
		Reordered: true,
		Tables:    tables,
		Dropped:   dropped,
	}
}
