package parser

import (
	"context"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/types"
)

// pythonQuery follows the teacher's parser_language_setup.go convention:
// one query string per language, with a ".name" sub-capture used for name
// resolution. Python's grammar has no separate method node, so function
// definitions lexically inside a class body are reclassified to
// NodeKindMethod by liftQuery.
const pythonQuery = `
(function_definition name: (identifier) @function.name) @function
(class_definition name: (identifier) @class.name) @class
(import_statement name: (dotted_name) @import.name) @import
(import_from_statement module_name: (dotted_name) @import.name) @import
(call function: (identifier) @call.callee) @call
(call function: (attribute attribute: (identifier) @call.callee)) @call
`

var pythonCaptureKinds = captureKind{
	"function": types.NodeKindFunction,
	"class":    types.NodeKindClass,
	"import":   types.NodeKindImport,
	"call":     types.NodeKindCall,
}

// PythonAdapter lifts Python source into the Universal AST.
type PythonAdapter struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

// NewPythonAdapter builds the tree-sitter parser and query once, at
// registration time, per the teacher's pattern.
func NewPythonAdapter() (*PythonAdapter, error) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("python adapter: set language: %w", err)
	}
	query, err := tree_sitter.NewQuery(lang, pythonQuery)
	if err != nil {
		return nil, fmt.Errorf("python adapter: compile query: %w", err)
	}
	return &PythonAdapter{parser: parser, query: query}, nil
}

func (a *PythonAdapter) Language() types.Language { return types.LanguagePython }

func (a *PythonAdapter) Extensions() []string { return []string{"py", "pyw"} }

func (a *PythonAdapter) SupportsIncremental() bool { return true }

// Parse implements registry.ParserAdapter. tree-sitter parsers are not
// safe for concurrent use; a.mu serializes calls the way the teacher's
// per-extension parser map implicitly does by construction (one parser
// instance per extension).
func (a *PythonAdapter) Parse(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var previous *tree_sitter.Tree
	if pt, ok := pctx.PreviousTree.(*tree_sitter.Tree); ok {
		previous = pt
	}

	tree := a.parser.Parse(pctx.SourceText, previous)
	if tree == nil {
		return registry.ParseResult{}, &registry.ParseError{Path: pctx.FilePath, Message: "tree-sitter returned no tree"}
	}

	nodes, edges := liftQuery(a.query, tree, pctx.SourceText, pctx.RepoID, pctx.FilePath, types.LanguagePython, pythonCaptureKinds, true)
	return registry.ParseResult{Nodes: nodes, Edges: edges, TreeHandle: tree}, nil
}
