package parser

import (
	"context"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/types"
)

// javascriptQuery is lifted near-verbatim from the teacher's setupJavaScript
// (parser_language_setup.go), trimmed to the captures this binding maps to
// Universal AST kinds.
const javascriptQuery = `
(function_declaration name: (identifier) @function.name) @function
(generator_function_declaration name: (identifier) @function.name) @function
(variable_declarator
    name: (identifier) @function.name
    value: [(arrow_function) (function_expression) (generator_function)]) @function
(method_definition name: (property_identifier) @method.name) @method
(class_declaration name: (identifier) @class.name) @class
(import_statement source: (string) @import.name) @import
(call_expression function: (identifier) @call.callee) @call
(call_expression function: (member_expression property: (property_identifier) @call.callee)) @call
`

var javascriptCaptureKinds = captureKind{
	"function": types.NodeKindFunction,
	"method":   types.NodeKindMethod,
	"class":    types.NodeKindClass,
	"import":   types.NodeKindImport,
	"call":     types.NodeKindCall,
}

// JavaScriptAdapter lifts JavaScript source into the Universal AST.
type JavaScriptAdapter struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
	query  *tree_sitter.Query
}

func NewJavaScriptAdapter() (*JavaScriptAdapter, error) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("javascript adapter: set language: %w", err)
	}
	query, err := tree_sitter.NewQuery(lang, javascriptQuery)
	if err != nil {
		return nil, fmt.Errorf("javascript adapter: compile query: %w", err)
	}
	return &JavaScriptAdapter{parser: parser, query: query}, nil
}

func (a *JavaScriptAdapter) Language() types.Language { return types.LanguageJavaScript }

func (a *JavaScriptAdapter) Extensions() []string { return []string{"js", "jsx", "mjs", "cjs"} }

func (a *JavaScriptAdapter) SupportsIncremental() bool { return true }

func (a *JavaScriptAdapter) Parse(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error) {
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

	nodes, edges := liftQuery(a.query, tree, pctx.SourceText, pctx.RepoID, pctx.FilePath, types.LanguageJavaScript, javascriptCaptureKinds, false)
	return registry.ParseResult{Nodes: nodes, Edges: edges, TreeHandle: tree}, nil
}
