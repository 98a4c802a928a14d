package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uastgraph/core/internal/types"
)

func chainStore(t *testing.T) (*Store, []types.Node) {
	t.Helper()
	s := NewStore()
	nodes := []types.Node{
		node("repo", "a.go", "A", types.NodeKindFunction, 1),
		node("repo", "a.go", "B", types.NodeKindFunction, 2),
		node("repo", "a.go", "C", types.NodeKindFunction, 3),
		node("repo", "a.go", "D", types.NodeKindFunction, 4),
	}
	for _, n := range nodes {
		s.AddNode(n)
	}
	// A -> B -> C -> D
	s.AddEdge(types.NewEdge(nodes[0].Id, nodes[1].Id, types.EdgeKindCalls))
	s.AddEdge(types.NewEdge(nodes[1].Id, nodes[2].Id, types.EdgeKindCalls))
	s.AddEdge(types.NewEdge(nodes[2].Id, nodes[3].Id, types.EdgeKindCalls))
	return s, nodes
}

func TestFindPathDirect(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	result, ok := q.FindPath(nodes[0].Id, nodes[1].Id, 10)
	require.True(t, ok)
	assert.Equal(t, 1, result.Distance)
	assert.Equal(t, []types.NodeId{nodes[0].Id, nodes[1].Id}, result.Path)
}

func TestFindPathMultiHop(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	result, ok := q.FindPath(nodes[0].Id, nodes[3].Id, 10)
	require.True(t, ok)
	assert.Equal(t, 3, result.Distance)
	assert.Equal(t, []types.NodeId{nodes[0].Id, nodes[1].Id, nodes[2].Id, nodes[3].Id}, result.Path)
	require.Len(t, result.Edges, 3)
}

func TestFindPathSameNode(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	result, ok := q.FindPath(nodes[0].Id, nodes[0].Id, 10)
	require.True(t, ok)
	assert.Equal(t, 0, result.Distance)
}

func TestFindPathUnreachable(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	isolated := node("repo", "b.go", "Isolated", types.NodeKindFunction, 1)
	s.AddNode(isolated)

	_, ok := q.FindPath(nodes[0].Id, isolated.Id, 10)
	assert.False(t, ok)
}

func TestFindPathRespectsMaxDepth(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	_, ok := q.FindPath(nodes[0].Id, nodes[3].Id, 2)
	assert.False(t, ok, "3 hops should exceed a max depth of 2")
}

func TestFindReferences(t *testing.T) {
	s, nodes := chainStore(t)
	q := NewQuery(s)

	refs := q.FindReferences(nodes[1].Id)
	require.Len(t, refs, 1)
	assert.Equal(t, nodes[0].Id, refs[0].SourceNode.Id)
	assert.Equal(t, types.EdgeKindCalls, refs[0].EdgeKind)

	assert.Empty(t, q.FindReferences(nodes[0].Id))
}

func TestFindDependenciesFilters(t *testing.T) {
	s := NewStore()
	caller := node("repo", "a.go", "Caller", types.NodeKindFunction, 1)
	callee := node("repo", "a.go", "Callee", types.NodeKindFunction, 2)
	imported := node("repo", "a.go", "Imported", types.NodeKindImport, 3)
	s.AddNode(caller)
	s.AddNode(callee)
	s.AddNode(imported)
	s.AddEdge(types.NewEdge(caller.Id, callee.Id, types.EdgeKindCalls))
	s.AddEdge(types.NewEdge(caller.Id, imported.Id, types.EdgeKindImports))
	q := NewQuery(s)

	all := q.FindDependencies(caller.Id, DependencyDirect)
	assert.Len(t, all, 2)

	calls := q.FindDependencies(caller.Id, DependencyCalls)
	require.Len(t, calls, 1)
	assert.Equal(t, callee.Id, calls[0].TargetNode.Id)

	imports := q.FindDependencies(caller.Id, DependencyImports)
	require.Len(t, imports, 1)
	assert.Equal(t, imported.Id, imports[0].TargetNode.Id)

	assert.Empty(t, q.FindDependencies(caller.Id, DependencyWrites))
}

func TestSearchSymbolsSubstringCaseInsensitive(t *testing.T) {
	s := NewStore()
	s.AddNode(node("repo", "a.go", "ParseUser", types.NodeKindFunction, 1))
	s.AddNode(node("repo", "a.go", "RenderPage", types.NodeKindFunction, 2))
	q := NewQuery(s)

	results := q.SearchSymbols("parseuser", SearchOptions{})
	require.Len(t, results, 1)
	assert.Equal(t, "ParseUser", results[0].Node.Name)
}

func TestSearchSymbolsFiltersBySymbolType(t *testing.T) {
	s := NewStore()
	s.AddNode(node("repo", "a.go", "Handler", types.NodeKindFunction, 1))
	s.AddNode(node("repo", "a.go", "Handler", types.NodeKindClass, 2))
	q := NewQuery(s)

	results := q.SearchSymbols("Handler", SearchOptions{SymbolTypes: []types.NodeKind{types.NodeKindClass}})
	require.Len(t, results, 1)
	assert.Equal(t, types.NodeKindClass, results[0].Node.Kind)
}

func TestSearchSymbolsRespectsLimit(t *testing.T) {
	s := NewStore()
	for i := 1; i <= 5; i++ {
		s.AddNode(node("repo", "a.go", "Match", types.NodeKindFunction, i))
	}
	q := NewQuery(s)

	results := q.SearchSymbols("match", SearchOptions{Limit: 2})
	assert.Len(t, results, 2)
}

func TestSearchSymbolsCountsReferencesAndDependencies(t *testing.T) {
	s := NewStore()
	caller := node("repo", "a.go", "Caller", types.NodeKindFunction, 1)
	callee := node("repo", "a.go", "Target", types.NodeKindFunction, 2)
	s.AddNode(caller)
	s.AddNode(callee)
	s.AddEdge(types.NewEdge(caller.Id, callee.Id, types.EdgeKindCalls))
	q := NewQuery(s)

	results := q.SearchSymbols("Target", SearchOptions{})
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ReferencesCount)
	assert.Equal(t, 0, results[0].DependenciesCount)
}

func TestSearchSymbolsFuzzyFindsStemmedMatch(t *testing.T) {
	s := NewStore()
	s.AddNode(node("repo", "a.go", "parseUser", types.NodeKindFunction, 1))
	q := NewQuery(s)

	exact := q.SearchSymbols("parsing users", SearchOptions{})
	assert.Empty(t, exact, "plain substring match should miss a non-substring query")

	fuzzy := q.SearchSymbols("parsing users", SearchOptions{Fuzzy: true})
	assert.NotEmpty(t, fuzzy, "fuzzy mode should surface a stemmed/near match")
}
