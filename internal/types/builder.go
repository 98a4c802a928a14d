package types

// NodeBuilder builds a Node fluently. It mirrors the original Rust core's
// NodeBuilder (original_source/crates/prism-core/src/ast/mod.rs) and the
// fluent-construction convention used throughout this corpus's config
// loaders.
type NodeBuilder struct {
	repoID    string
	kind      NodeKind
	name      string
	lang      Language
	file      string
	span      Span
	signature string
	metadata  Metadata
}

// NewNodeBuilder starts a builder for a node of the given kind, scoped to
// repoID.
func NewNodeBuilder(repoID string, kind NodeKind) *NodeBuilder {
	return &NodeBuilder{
		repoID: repoID,
		kind:   kind,
		span:   NewSpan(0, 0, 1, 1, 1, 1),
	}
}

// Name sets the node's display name.
func (b *NodeBuilder) Name(name string) *NodeBuilder {
	b.name = name
	return b
}

// Language sets the node's language.
func (b *NodeBuilder) Language(lang Language) *NodeBuilder {
	b.lang = lang
	return b
}

// File sets the node's source file path.
func (b *NodeBuilder) File(file string) *NodeBuilder {
	b.file = file
	return b
}

// Span sets the node's source span.
func (b *NodeBuilder) Span(span Span) *NodeBuilder {
	b.span = span
	return b
}

// Signature sets the node's display type signature.
func (b *NodeBuilder) Signature(sig string) *NodeBuilder {
	b.signature = sig
	return b
}

// Metadata sets a single metadata key/value pair, creating the map on first
// use.
func (b *NodeBuilder) Metadata(key string, value any) *NodeBuilder {
	if b.metadata == nil {
		b.metadata = make(Metadata)
	}
	b.metadata[key] = value
	return b
}

// Build produces the final Node, deriving its content-addressed Id.
func (b *NodeBuilder) Build() Node {
	return Node{
		Id:        NewNodeId(b.repoID, b.file, b.span, b.kind),
		Kind:      b.kind,
		Name:      b.name,
		Language:  b.lang,
		File:      b.file,
		Span:      b.span,
		Signature: b.signature,
		Metadata:  b.metadata,
	}
}
