package patch

import "github.com/uastgraph/core/internal/types"

// Builder accumulates node/edge additions and deletions and produces an
// AstPatch, mirroring original_source's PatchBuilder
// (codeprism-core/src/pipeline/mod.rs) fluent-construction style.
type Builder struct {
	patch AstPatch
}

// NewBuilder starts a patch scoped to repoID at commitSHA.
func NewBuilder(repoID, commitSHA string) *Builder {
	return &Builder{patch: AstPatch{RepoID: repoID, CommitSHA: commitSHA}}
}

// AddNode queues a node for addition.
func (b *Builder) AddNode(n types.Node) *Builder {
	b.patch.NodesAdd = append(b.patch.NodesAdd, n)
	return b
}

// AddNodes queues multiple nodes for addition.
func (b *Builder) AddNodes(nodes []types.Node) *Builder {
	b.patch.NodesAdd = append(b.patch.NodesAdd, nodes...)
	return b
}

// AddEdge queues an edge for addition.
func (b *Builder) AddEdge(e types.Edge) *Builder {
	b.patch.EdgesAdd = append(b.patch.EdgesAdd, e)
	return b
}

// AddEdges queues multiple edges for addition.
func (b *Builder) AddEdges(edges []types.Edge) *Builder {
	b.patch.EdgesAdd = append(b.patch.EdgesAdd, edges...)
	return b
}

// DeleteNode queues a node id for deletion.
func (b *Builder) DeleteNode(id types.NodeId) *Builder {
	b.patch.NodesDelete = append(b.patch.NodesDelete, id)
	return b
}

// DeleteNodes queues multiple node ids for deletion.
func (b *Builder) DeleteNodes(ids []types.NodeId) *Builder {
	b.patch.NodesDelete = append(b.patch.NodesDelete, ids...)
	return b
}

// DeleteEdge queues an edge key for deletion.
func (b *Builder) DeleteEdge(key types.EdgeKey) *Builder {
	b.patch.EdgesDelete = append(b.patch.EdgesDelete, key)
	return b
}

// Build returns the accumulated patch.
func (b *Builder) Build() AstPatch {
	return b.patch
}
