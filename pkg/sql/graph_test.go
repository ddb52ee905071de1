package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stmt(name string, deps ...string) Statement {
	return Statement{TableName: name, Raw: "CREATE TABLE " + name + " ();", DependsOn: deps}
}

func tableNames(stmts []Statement) []string {
	if len(stmts) == 0 {
		return nil
	}
	names := make([]string, len(stmts))
	for i, s := range stmts {
		names[i] = s.TableName
	}
	return names
}

func TestDependencyGraph_Order(t *testing.T) {
	tests := []struct {
		name           string
		stmts          []Statement
		wantOrder      []string
		wantUnresolved []string
	}{
		{
			name:      "no dependencies keeps insertion order",
			stmts:     []Statement{stmt("c"), stmt("a"), stmt("b")},
			wantOrder: []string{"c", "a", "b"},
		},
		{
			name:      "dependency before dependent",
			stmts:     []Statement{stmt("b", "a"), stmt("a")},
			wantOrder: []string{"a", "b"},
		},
		{
			name:      "chain",
			stmts:     []Statement{stmt("c", "b"), stmt("b", "a"), stmt("a")},
			wantOrder: []string{"a", "b", "c"},
		},
		{
			name:      "diamond",
			stmts:     []Statement{stmt("d", "b", "c"), stmt("b", "a"), stmt("c", "a"), stmt("a")},
			wantOrder: []string{"a", "b", "c", "d"},
		},
		{
			name:      "out-of-batch reference never blocks",
			stmts:     []Statement{stmt("orders", "users", "customers"), stmt("users")},
			wantOrder: []string{"users", "orders"},
		},
		{
			name:           "two table cycle",
			stmts:          []Statement{stmt("x", "y"), stmt("y", "x")},
			wantUnresolved: []string{"x", "y"},
		},
		{
			name:           "self reference is a cycle of one",
			stmts:          []Statement{stmt("emp", "emp")},
			wantUnresolved: []string{"emp"},
		},
		{
			name:           "cycle does not block independent tables",
			stmts:          []Statement{stmt("x", "y"), stmt("y", "x"), stmt("a")},
			wantOrder:      []string{"a"},
			wantUnresolved: []string{"x", "y"},
		},
		{
			name:           "table downstream of a cycle stays unresolved",
			stmts:          []Statement{stmt("x", "y"), stmt("y", "x"), stmt("z", "x")},
			wantUnresolved: []string{"x", "y", "z"},
		},
		{
			name:  "empty graph",
			stmts: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewDependencyGraph()
			for _, s := range tt.stmts {
				g.Add(s)
			}
			ordered, unresolved := g.Order()
			assert.Equal(t, tt.wantOrder, tableNames(ordered))
			assert.Equal(t, tt.wantUnresolved, unresolved)
		})
	}
}

func TestDependencyGraph_AddDuplicateKeepsPosition(t *testing.T) {
	g := NewDependencyGraph()
	g.Add(stmt("a"))
	g.Add(stmt("b"))
	g.Add(Statement{TableName: "a", Raw: "CREATE TABLE a (v2 INT);"})

	assert.Equal(t, 2, g.Len())

	ordered, unresolved := g.Order()
	assert.Empty(t, unresolved)
	assert.Equal(t, []string{"a", "b"}, tableNames(ordered))
	assert.Equal(t, "CREATE TABLE a (v2 INT);", ordered[0].Raw)
}
