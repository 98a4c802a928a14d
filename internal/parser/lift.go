package parser

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/uastgraph/core/internal/types"
)

// captureKind maps a tree-sitter query's main capture names (the ones with
// no ".name"/".callee" suffix, following the teacher's
// parser_language_setup.go convention) to the NodeKind they produce.
type captureKind map[string]types.NodeKind

// rawDecl is a declaration capture before node construction: collecting
// these in a first pass lets liftQuery reclassify captures (Python's
// grammar has no separate "method" node kind; a function_definition
// lexically inside a class body is a method) before NodeId is derived
// from the final kind.
type rawDecl struct {
	kind types.NodeKind
	name string
	span types.Span
}

// decl is a lifted declaration node paired with its source span, kept
// around after node construction so Contains/Calls edges can be derived
// from lexical nesting.
type decl struct {
	node types.Node
	span types.Span
}

// pendingCall is a call site captured by a query's "call"/"call.callee"
// pair, resolved against decls by name once every match has been scanned.
type pendingCall struct {
	span       types.Span
	calleeName string
}

// liftQuery runs query against tree and turns each match's main capture
// into a types.Node, resolving the node's display name from a sibling
// capture ending in ".name" within the same match (teacher's
// extractBasicSymbolsStringRef pattern in parser.go). It then derives
// Contains edges from lexical nesting (by byte-span containment). Each
// "call"/"call.callee" capture lifts its own Call node named after the
// callee, linked to its lexically enclosing declaration by a Calls edge;
// call sites are never resolved straight through to the callee's
// declaration node. Returns everything rooted under one synthetic Module
// node for the file.
//
// When reclassifyMethods is set, any NodeKindFunction capture whose span
// lies inside a NodeKindClass capture's span is emitted as NodeKindMethod
// instead — needed for grammars (Python) whose AST has no separate method
// node kind.
func liftQuery(
	query *tree_sitter.Query,
	tree *tree_sitter.Tree,
	content []byte,
	repoID, filePath string,
	lang types.Language,
	kinds captureKind,
	reclassifyMethods bool,
) ([]types.Node, []types.Edge) {
	root := tree.RootNode()
	moduleSpan := spanOf(root)

	var raws []rawDecl
	var calls []pendingCall

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	captureNames := query.CaptureNames()
	matches := qc.Matches(query, root, content)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var name, calleeName string
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			switch {
			case strings.HasSuffix(cn, ".name"):
				name = textOf(content, c.Node)
			case strings.HasSuffix(cn, ".callee"):
				calleeName = textOf(content, c.Node)
			}
		}

		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			kind, isMain := kinds[cn]
			if !isMain {
				continue
			}
			span := spanOf(c.Node)
			if kind == types.NodeKindCall {
				calls = append(calls, pendingCall{span: span, calleeName: calleeName})
				continue
			}
			raws = append(raws, rawDecl{kind: kind, name: name, span: span})
		}
	}

	if reclassifyMethods {
		var classSpans []types.Span
		for _, r := range raws {
			if r.kind == types.NodeKindClass {
				classSpans = append(classSpans, r.span)
			}
		}
		for i, r := range raws {
			if r.kind != types.NodeKindFunction {
				continue
			}
			for _, cs := range classSpans {
				if contains(cs, r.span) {
					raws[i].kind = types.NodeKindMethod
					break
				}
			}
		}
	}

	module := types.NewNodeBuilder(repoID, types.NodeKindModule).
		Name(filePath).
		Language(lang).
		File(filePath).
		Span(moduleSpan).
		Build()

	decls := make([]decl, 0, len(raws))
	for _, r := range raws {
		n := types.NewNodeBuilder(repoID, r.kind).
			Name(r.name).
			Language(lang).
			File(filePath).
			Span(r.span).
			Build()
		decls = append(decls, decl{node: n, span: r.span})
	}

	nodes := make([]types.Node, 0, len(decls)+1)
	nodes = append(nodes, module)
	for _, d := range decls {
		nodes = append(nodes, d.node)
	}

	// Sort ascending by span length so the first containing match found
	// while scanning is also the tightest enclosing scope.
	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].span.Len() < decls[j].span.Len()
	})

	var edges []types.Edge
	for _, d := range decls {
		enclosing := enclosingOf(module, decls, d.node.Id, d.span)
		edges = append(edges, types.NewEdge(enclosing.Id, d.node.Id, types.EdgeKindContains))
	}

	// Every call expression lifts its own Call node, named after the
	// callee, rather than collapsing straight into a Calls edge between
	// the enclosing declaration and the resolved target. Two call sites
	// naming the same symbol therefore produce two distinct Call nodes
	// (distinct spans, distinct NodeIds) instead of one deduplicated
	// edge, preserving per-callsite location data.
	for _, c := range calls {
		if c.calleeName == "" {
			continue
		}
		callNode := types.NewNodeBuilder(repoID, types.NodeKindCall).
			Name(c.calleeName).
			Language(lang).
			File(filePath).
			Span(c.span).
			Build()
		nodes = append(nodes, callNode)

		enclosing := enclosingOf(module, decls, types.NodeId{}, c.span)
		edges = append(edges, types.NewEdge(enclosing.Id, callNode.Id, types.EdgeKindCalls))
	}

	return nodes, edges
}

// enclosingOf finds the smallest declaration (other than excludeID, when
// non-zero) whose span strictly contains span, falling back to the file's
// Module node. decls must be sorted ascending by span length so the first
// containing match found is also the tightest.
func enclosingOf(module types.Node, decls []decl, excludeID types.NodeId, span types.Span) types.Node {
	for _, d := range decls {
		if !excludeID.IsZero() && d.node.Id == excludeID {
			continue
		}
		if contains(d.span, span) {
			return d.node
		}
	}
	return module
}

func contains(outer, inner types.Span) bool {
	return outer.StartByte <= inner.StartByte && outer.EndByte >= inner.EndByte && outer != inner
}

func spanOf(n tree_sitter.Node) types.Span {
	start := n.StartPosition()
	end := n.EndPosition()
	return types.NewSpan(
		int(n.StartByte()), int(n.EndByte()),
		int(start.Row)+1, int(end.Row)+1,
		int(start.Column)+1, int(end.Column)+1,
	)
}

func textOf(content []byte, n tree_sitter.Node) string {
	return string(content[n.StartByte():n.EndByte()])
}
