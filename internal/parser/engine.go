// Package parser implements the parser engine (spec.md §4.2) on top of
// github.com/tree-sitter/go-tree-sitter, the parsing stack this corpus
// already standardizes on.
package parser

import (
	"context"
	"fmt"

	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/types"
)

// Engine dispatches a file to the ParserAdapter its extension or language
// belongs to and returns the lifted Universal AST.
type Engine struct {
	registry *registry.Registry
}

// NewEngine wraps reg. The caller owns adapter registration.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{registry: reg}
}

// Parse lifts the file at pctx.FilePath into nodes and edges, dispatching
// by extension. A file whose extension no adapter owns yields a
// *registry.ParseError. The scanner already skips such files (counting
// them in Result.SkippedUnsupported) before a bulk run; a file handed to
// the BulkIndexer directly is recorded there as a failure.
func (e *Engine) Parse(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error) {
	adapter, ok := e.registry.LookupByPath(pctx.FilePath)
	if !ok {
		return registry.ParseResult{}, &registry.ParseError{
			Path:    pctx.FilePath,
			Message: "no parser adapter registered for this file extension",
		}
	}
	result, err := adapter.Parse(ctx, pctx)
	if err != nil {
		return registry.ParseResult{}, err
	}
	return result, nil
}

// ParseWithLanguage re-parses pctx using the adapter for lang explicitly,
// bypassing extension dispatch, for callers that already know the
// file's language.
func (e *Engine) ParseWithLanguage(ctx context.Context, lang types.Language, pctx registry.ParseContext) (registry.ParseResult, error) {
	adapter, ok := e.registry.LookupByLanguage(lang)
	if !ok {
		return registry.ParseResult{}, fmt.Errorf("parser: no adapter registered for language %s", lang)
	}
	return adapter.Parse(ctx, pctx)
}
