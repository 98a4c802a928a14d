package types

import "fmt"

// Metadata is free-form structured data attached to a Node. Keys are
// implementation-defined by the parser adapter that set them; the only
// requirement is that the value round-trips through the patch format
// (spec §3.1).
type Metadata map[string]any

// Node is a point in the Universal AST (spec §3.1).
type Node struct {
	Id        NodeId   `json:"id"`
	Kind      NodeKind `json:"kind"`
	Name      string   `json:"name"`
	Language  Language `json:"language"`
	File      string   `json:"file"`
	Span      Span     `json:"span"`
	Signature string   `json:"signature,omitempty"`
	Metadata  Metadata `json:"metadata,omitempty"`
}

// NewNode constructs a Node, deriving its Id from the content-addressing
// inputs (repoID, file, span, kind).
func NewNode(repoID string, kind NodeKind, name string, lang Language, file string, span Span) Node {
	return Node{
		Id:       NewNodeId(repoID, file, span, kind),
		Kind:     kind,
		Name:     name,
		Language: lang,
		File:     file,
		Span:     span,
	}
}

// String renders a human-readable summary of the node.
func (n Node) String() string {
	return fmt.Sprintf("%s %s %q at %s:%s", n.Language, n.Kind, n.Name, n.File, n.Span)
}

// Edge is a directed, typed relation between two nodes (spec §3.1). Edges
// are multi-set at the source level: duplicates (same source/target/kind)
// are collapsed at insertion time by the graph store, not by this type.
type Edge struct {
	Source NodeId   `json:"source"`
	Target NodeId   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Key returns the (source, target, kind) triple used for deduplication and
// deletion (spec §3.1 "edge_key").
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Kind: e.Kind}
}

// NewEdge constructs an Edge.
func NewEdge(source, target NodeId, kind EdgeKind) Edge {
	return Edge{Source: source, Target: target, Kind: kind}
}
