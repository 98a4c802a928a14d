package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uastgraph/core/internal/types"
)

func sampleNode(name string, start int) types.Node {
	return types.NewNodeBuilder("repo-a", types.NodeKindFunction).
		Name(name).
		Language(types.LanguageGo).
		File("pkg/a.go").
		Span(types.NewSpan(start, start+10, 1, 1, 1, 11)).
		Build()
}

func TestBuilderBuildsPatch(t *testing.T) {
	n1 := sampleNode("f1", 0)
	n2 := sampleNode("f2", 20)
	e := types.NewEdge(n1.Id, n2.Id, types.EdgeKindCalls)

	p := NewBuilder("repo-a", "deadbeef").
		AddNode(n1).
		AddNode(n2).
		AddEdge(e).
		Build()

	assert.Equal(t, "repo-a", p.RepoID)
	assert.Equal(t, "deadbeef", p.CommitSHA)
	assert.Len(t, p.NodesAdd, 2)
	assert.Len(t, p.EdgesAdd, 1)
	assert.False(t, p.IsEmpty())
}

func TestPatchJSONRoundTrip(t *testing.T) {
	n1 := sampleNode("f1", 0)
	n2 := sampleNode("f2", 20)
	e := types.NewEdge(n1.Id, n2.Id, types.EdgeKindCalls)

	p := NewBuilder("repo-a", "deadbeef").
		AddNode(n1).
		AddEdge(e).
		Build()
	p.NodesDelete = append(p.NodesDelete, n2.Id)
	p.EdgesDelete = append(p.EdgesDelete, e.Key())

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded AstPatch
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, p.RepoID, decoded.RepoID)
	assert.Equal(t, p.CommitSHA, decoded.CommitSHA)
	assert.Equal(t, p.NodesAdd, decoded.NodesAdd)
	assert.Equal(t, p.EdgesAdd, decoded.EdgesAdd)
	assert.Equal(t, p.NodesDelete, decoded.NodesDelete)
	assert.Equal(t, p.EdgesDelete, decoded.EdgesDelete)
}

func TestMergeConcatenatesInOrder(t *testing.T) {
	n1 := sampleNode("f1", 0)
	n2 := sampleNode("f2", 20)

	p1 := NewBuilder("repo-a", "sha1").AddNode(n1).Build()
	p2 := NewBuilder("repo-a", "sha2").AddNode(n2).Build()

	merged := p1.Merge(p2)
	require.Len(t, merged.NodesAdd, 2)
	assert.Equal(t, n1, merged.NodesAdd[0])
	assert.Equal(t, n2, merged.NodesAdd[1])
	assert.Equal(t, "sha2", merged.CommitSHA, "newer patch's commit wins")
}

type fakeTarget struct {
	upsertedNodes []types.NodeId
	upsertedEdges []types.EdgeKey
	deletedEdges  []types.EdgeKey
	deletedNodes  []types.NodeId
	order         []string
}

func (f *fakeTarget) UpsertNode(n types.Node) {
	f.upsertedNodes = append(f.upsertedNodes, n.Id)
	f.order = append(f.order, "node_add")
}

func (f *fakeTarget) UpsertEdge(e types.Edge) {
	f.upsertedEdges = append(f.upsertedEdges, e.Key())
	f.order = append(f.order, "edge_add")
}

func (f *fakeTarget) DeleteEdge(key types.EdgeKey) {
	f.deletedEdges = append(f.deletedEdges, key)
	f.order = append(f.order, "edge_delete")
}

func (f *fakeTarget) DeleteNode(id types.NodeId) {
	f.deletedNodes = append(f.deletedNodes, id)
	f.order = append(f.order, "node_delete")
}

func TestApplyOrdersMutationsPerWireSpec(t *testing.T) {
	n1 := sampleNode("f1", 0)
	n2 := sampleNode("f2", 20)
	e := types.NewEdge(n1.Id, n2.Id, types.EdgeKindCalls)

	p := AstPatch{
		RepoID:      "repo-a",
		CommitSHA:   "sha1",
		NodesAdd:    []types.Node{n1, n2},
		EdgesAdd:    []types.Edge{e},
		NodesDelete: []types.NodeId{n2.Id},
		EdgesDelete: []types.EdgeKey{e.Key()},
	}

	target := &fakeTarget{}
	Apply(target, p)

	assert.Equal(t, []string{"node_add", "node_add", "edge_add", "edge_delete", "node_delete"}, target.order)
}
