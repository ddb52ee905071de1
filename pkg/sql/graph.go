package sql

// DependencyGraph holds the CREATE TABLE statements of one batch keyed by
// table name, preserving insertion order so ordering is deterministic for
// a given input.
type DependencyGraph struct {
	// Insertion order of first appearance per table name.
	order []string
	// Statement per table name. A repeated table name replaces the
	// statement but keeps its original position.
	stmts map[string]Statement
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		stmts: make(map[string]Statement),
	}
}

// Add inserts a parsed statement. References to tables absent from the
// batch are kept on the Statement but never block ordering: partial-schema
// batches are the normal case and out-of-batch tables are assumed to
// already exist. Dangling references are therefore not detectable here.
func (g *DependencyGraph) Add(stmt Statement) {
	if _, exists := g.stmts[stmt.TableName]; !exists {
		g.order = append(g.order, stmt.TableName)
	}
	g.stmts[stmt.TableName] = stmt
}

// Len returns the number of tables in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.order)
}

// Order produces a topological ordering of the batch (Kahn's algorithm):
// every table appears after all in-batch tables it references. The second
// return value lists tables that could not be ordered; a non-empty list
// means the batch contains one or more reference cycles (a self-reference
// counts as a cycle of one).
//
// The dependent rescan on each emit makes this O(T²) in the number of
// tables, which is fine for schema batches of typical size (tens of
// tables).
func (g *DependencyGraph) Order() (ordered []Statement, unresolved []string) {
	// Remaining in-batch dependency set per table. Out-of-batch references
	// are dropped here so they never block; self-references survive.
	remaining := make(map[string]map[string]bool, len(g.order))
	for _, name := range g.order {
		deps := make(map[string]bool)
		for _, dep := range g.stmts[name].DependsOn {
			if _, inBatch := g.stmts[dep]; inBatch {
				deps[dep] = true
			}
		}
		remaining[name] = deps
	}

	queue := make([]string, 0, len(g.order))
	queued := make(map[string]bool, len(g.order))
	for _, name := range g.order {
		if len(remaining[name]) == 0 {
			queue = append(queue, name)
			queued[name] = true
		}
	}

	done := make(map[string]bool, len(g.order))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		done[current] = true
		ordered = append(ordered, g.stmts[current])

		for _, name := range g.order {
			if done[name] || !remaining[name][current] {
				continue
			}
			delete(remaining[name], current)
			if len(remaining[name]) == 0 && !queued[name] {
				queue = append(queue, name)
				queued[name] = true
			}
		}
	}

	if len(ordered) < len(g.order) {
		for _, name := range g.order {
			if !done[name] {
				unresolved = append(unresolved, name)
			}
		}
	}

	return ordered, unresolved
}
