package graph

import (
	"sort"
	"strings"

	"github.com/uastgraph/core/internal/types"
)

// Query wraps a Store with read-only graph algorithms: shortest path,
// reference/dependency lookup, and symbol search (spec.md §4.4). Grounded
// on original_source's gcore::graph::GraphQuery, translated field-for-field.
type Query struct {
	store *Store
}

// NewQuery wraps store.
func NewQuery(store *Store) *Query {
	return &Query{store: store}
}

// PathResult is the result of a successful FindPath call.
type PathResult struct {
	Source   types.NodeId
	Target   types.NodeId
	Path     []types.NodeId
	Edges    []types.Edge
	Distance int
}

const defaultMaxDepth = 10

// FindPath returns the shortest path from source to target by BFS over
// outgoing edges, or (nil, false) if no path exists within maxDepth hops.
// maxDepth <= 0 uses the default of 10.
func (q *Query) FindPath(source, target types.NodeId, maxDepth int) (*PathResult, bool) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	if source == target {
		return &PathResult{Source: source, Target: target, Path: []types.NodeId{source}, Distance: 0}, true
	}

	type queued struct {
		id    types.NodeId
		depth int
	}

	visited := map[types.NodeId]bool{source: true}
	parent := make(map[types.NodeId]types.NodeId)
	viaEdge := make(map[types.NodeId]types.Edge)

	queue := []queued{{id: source, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		for _, edge := range q.store.OutgoingEdges(cur.id) {
			if visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true
			parent[edge.Target] = cur.id
			viaEdge[edge.Target] = edge
			queue = append(queue, queued{id: edge.Target, depth: cur.depth + 1})

			if edge.Target == target {
				path := []types.NodeId{target}
				var edges []types.Edge
				node := target
				for {
					prev, ok := parent[node]
					if !ok {
						break
					}
					edges = append(edges, viaEdge[node])
					node = prev
					path = append(path, node)
				}
				reverseIds(path)
				reverseEdges(edges)
				return &PathResult{
					Source:   source,
					Target:   target,
					Path:     path,
					Edges:    edges,
					Distance: len(path) - 1,
				}, true
			}
		}
	}
	return nil, false
}

func reverseIds(ids []types.NodeId) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func reverseEdges(edges []types.Edge) {
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
}

// SymbolReference is an incoming reference to a node: the edge plus the
// node on the other end of it.
type SymbolReference struct {
	SourceNode types.Node
	EdgeKind   types.EdgeKind
}

// FindReferences returns every node that has an edge pointing at id
// (incoming edges), i.e. every reference to the symbol id identifies.
func (q *Query) FindReferences(id types.NodeId) []SymbolReference {
	edges := q.store.IncomingEdges(id)
	out := make([]SymbolReference, 0, len(edges))
	for _, e := range edges {
		if src, ok := q.store.GetNode(e.Source); ok {
			out = append(out, SymbolReference{SourceNode: src, EdgeKind: e.Kind})
		}
	}
	return out
}

// DependencyFilter selects which outgoing edge kinds FindDependencies
// includes.
type DependencyFilter int

const (
	DependencyDirect DependencyFilter = iota
	DependencyCalls
	DependencyImports
	DependencyReads
	DependencyWrites
)

// SymbolDependency is an outgoing dependency of a node: the edge plus the
// node it points at.
type SymbolDependency struct {
	TargetNode types.Node
	EdgeKind   types.EdgeKind
}

// FindDependencies returns id's outgoing edges filtered by filter.
// DependencyDirect includes every outgoing edge regardless of kind.
func (q *Query) FindDependencies(id types.NodeId, filter DependencyFilter) []SymbolDependency {
	edges := q.store.OutgoingEdges(id)
	out := make([]SymbolDependency, 0, len(edges))
	for _, e := range edges {
		if !dependencyMatches(filter, e.Kind) {
			continue
		}
		if tgt, ok := q.store.GetNode(e.Target); ok {
			out = append(out, SymbolDependency{TargetNode: tgt, EdgeKind: e.Kind})
		}
	}
	return out
}

func dependencyMatches(filter DependencyFilter, kind types.EdgeKind) bool {
	switch filter {
	case DependencyDirect:
		return true
	case DependencyCalls:
		return kind == types.EdgeKindCalls
	case DependencyImports:
		return kind == types.EdgeKindImports
	case DependencyReads:
		return kind == types.EdgeKindReads
	case DependencyWrites:
		return kind == types.EdgeKindWrites
	default:
		return false
	}
}

// SymbolInfo is one SearchSymbols hit, with cheap popularity counts the
// teacher's semantic search ranks on.
type SymbolInfo struct {
	Node              types.Node
	ReferencesCount   int
	DependenciesCount int
}

// SearchOptions configures SearchSymbols.
type SearchOptions struct {
	// SymbolTypes restricts results to these kinds, when non-empty.
	SymbolTypes []types.NodeKind
	// Limit caps the result count; 0 means the default of 50.
	Limit int
	// Fuzzy enables the Jaro-Winkler/stemmed extension beyond case-
	// insensitive substring matching (spec.md §4.4/§8.1 "regex or fuzzy").
	Fuzzy bool
}

const defaultSearchLimit = 50

// SearchSymbols finds symbols whose name matches pattern, case-
// insensitive substring by default (spec.md §4.4). With opts.Fuzzy set,
// misses are re-ranked by Jaro-Winkler similarity over Porter2-stemmed
// tokens (see fuzzy.go) so e.g. "parsing users" can still surface
// "parseUser".
func (q *Query) SearchSymbols(pattern string, opts SearchOptions) []SymbolInfo {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	names := q.store.allSymbolNames()
	var matchedNames []string
	lowerPattern := strings.ToLower(pattern)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), lowerPattern) {
			matchedNames = append(matchedNames, name)
		}
	}

	if opts.Fuzzy {
		matchedNames = fuzzyRank(pattern, names, matchedNames)
	}

	var results []SymbolInfo
	for _, name := range matchedNames {
		for _, node := range q.store.GetNodesByName(name) {
			if len(opts.SymbolTypes) > 0 && !kindIn(opts.SymbolTypes, node.Kind) {
				continue
			}
			results = append(results, SymbolInfo{
				Node:              node,
				ReferencesCount:   len(q.store.IncomingEdges(node.Id)),
				DependenciesCount: len(q.store.OutgoingEdges(node.Id)),
			})
			if len(results) >= limit {
				return results
			}
		}
	}
	return results
}

func kindIn(kinds []types.NodeKind, kind types.NodeKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// allSymbolNames returns every distinct name currently indexed, sorted for
// deterministic iteration order (the underlying sync.Map has none).
func (s *Store) allSymbolNames() []string {
	var names []string
	s.nameIdx.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}
