package patch

import "github.com/uastgraph/core/internal/types"

// Target is the mutation surface a patch is applied against. internal/graph.Store
// implements this interface; Apply itself stays graph-store-agnostic so the
// patch package has no dependency on internal/graph.
type Target interface {
	UpsertNode(n types.Node)
	UpsertEdge(e types.Edge)
	DeleteEdge(key types.EdgeKey)
	DeleteNode(id types.NodeId)
}

// Apply mutates target according to p, in the fixed order spec.md §6.1
// requires: nodes_add, then edges_add, then edges_delete, then
// nodes_delete. Applying edges_delete before nodes_delete lets an edge
// whose endpoint is also being deleted resolve correctly either way, since
// node deletion cascades to incident edges regardless (see
// internal/graph.Store.DeleteNode).
func Apply(target Target, p AstPatch) {
	for _, n := range p.NodesAdd {
		target.UpsertNode(n)
	}
	for _, e := range p.EdgesAdd {
		target.UpsertEdge(e)
	}
	for _, key := range p.EdgesDelete {
		target.DeleteEdge(key)
	}
	for _, id := range p.NodesDelete {
		target.DeleteNode(id)
	}
}
