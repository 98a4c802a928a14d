package parser

import (
	"context"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/types"
)

const goQuery = `
(function_declaration name: (identifier) @function.name) @function
(method_declaration name: (field_identifier) @method.name) @method
(type_declaration (type_spec name: (type_identifier) @class.name type: (struct_type))) @class
(type_declaration (type_spec name: (type_identifier) @class.name type: (interface_type))) @class
(import_spec path: (interpreted_string_literal) @import.name) @import
(call_expression function: (identifier) @call.callee) @call
(call_expression function: (selector_expression field: (field_identifier) @call.callee)) @call
`

var goCaptureKinds = captureKind{
	"function": types.NodeKindFunction,
	"method":   types.NodeKindMethod,
	"class":    types.NodeKindStruct,
	"import":   types.NodeKindImport,
	"call":     types.NodeKindCall,
}

// GoAdapter lifts Go source into the Universal AST. Grounded on the
// teacher's own setupGo in parser_language_setup.go, the one adapter in
// this corpus that parses the language the teacher itself is written in.
type GoAdapter struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewGoAdapter() (*GoAdapter, error) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("go adapter: set language: %w", err)
	}
	query, err := tree_sitter.NewQuery(lang, goQuery)
	if err != nil {
		return nil, fmt.Errorf("go adapter: compile query: %w", err)
	}
	return &GoAdapter{parser: parser, query: query}, nil
}

func (a *GoAdapter) Language() types.Language { return types.LanguageGo }

func (a *GoAdapter) Extensions() []string { return []string{"go"} }

func (a *GoAdapter) SupportsIncremental() bool { return true }

func (a *GoAdapter) Parse(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error) {
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

	nodes, edges := liftQuery(a.query, tree, pctx.SourceText, pctx.RepoID, pctx.FilePath, types.LanguageGo, goCaptureKinds, false)
	return registry.ParseResult{Nodes: nodes, Edges: edges, TreeHandle: tree}, nil
}
