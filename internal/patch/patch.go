// Package patch implements the AST patch wire format (spec.md §6.1): a
// self-describing record of graph additions and deletions produced by the
// parser engine and the monitoring pipeline, and applied by a graph
// consumer such as internal/graph.Store.
package patch

import "github.com/uastgraph/core/internal/types"

// AstPatch is a set of additions and deletions that, when applied to a
// graph, represents the effect of re-indexing a file or range of files
// (spec.md §6.1).
type AstPatch struct {
	RepoID      string          `json:"repo_id"`
	CommitSHA   string          `json:"commit_sha"`
	NodesAdd    []types.Node    `json:"nodes_add"`
	EdgesAdd    []types.Edge    `json:"edges_add"`
	NodesDelete []types.NodeId  `json:"nodes_delete"`
	EdgesDelete []types.EdgeKey `json:"edges_delete"`
}

// IsEmpty reports whether the patch carries no mutations at all.
func (p AstPatch) IsEmpty() bool {
	return len(p.NodesAdd) == 0 && len(p.EdgesAdd) == 0 &&
		len(p.NodesDelete) == 0 && len(p.EdgesDelete) == 0
}

// Merge composes p with next, in that order, per spec.md §8.1 property 6
// ("composition concatenates add-sets and delete-sets (deletes after adds
// within one patch)"). The receiver is not mutated; Merge returns a new
// patch scoped to the receiver's RepoID/CommitSHA... unless next specifies
// its own, in which case next's take precedence (it is the newer patch).
func (p AstPatch) Merge(next AstPatch) AstPatch {
	repoID := p.RepoID
	if next.RepoID != "" {
		repoID = next.RepoID
	}
	commit := p.CommitSHA
	if next.CommitSHA != "" {
		commit = next.CommitSHA
	}

	out := AstPatch{
		RepoID:    repoID,
		CommitSHA: commit,
	}
	out.NodesAdd = append(out.NodesAdd, p.NodesAdd...)
	out.NodesAdd = append(out.NodesAdd, next.NodesAdd...)
	out.EdgesAdd = append(out.EdgesAdd, p.EdgesAdd...)
	out.EdgesAdd = append(out.EdgesAdd, next.EdgesAdd...)
	out.NodesDelete = append(out.NodesDelete, p.NodesDelete...)
	out.NodesDelete = append(out.NodesDelete, next.NodesDelete...)
	out.EdgesDelete = append(out.EdgesDelete, p.EdgesDelete...)
	out.EdgesDelete = append(out.EdgesDelete, next.EdgesDelete...)
	return out
}
