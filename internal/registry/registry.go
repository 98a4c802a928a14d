// Package registry implements the language binding registry (spec.md §4.1,
// §6.2): a dispatch table mapping a file to the ParserAdapter that owns it,
// by extension or by declared Language.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/uastgraph/core/internal/types"
)

// ParseContext carries the inputs a ParserAdapter needs to lift one file
// into Universal AST nodes and edges (spec.md §6.2).
type ParseContext struct {
	RepoID       string
	FilePath     string
	SourceText   []byte
	PreviousTree any // opaque tree_handle from a prior ParseResult, for incremental re-parse
}

// ParseResult is what a ParserAdapter returns for a successful parse
// (spec.md §6.2). TreeHandle is opaque to the registry; adapters that
// support incremental parsing stash their concrete syntax tree there and
// accept it back via ParseContext.PreviousTree.
type ParseResult struct {
	Nodes      []types.Node
	Edges      []types.Edge
	TreeHandle any
}

// ParseError reports a failure to parse a specific file (spec.md §6.2).
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
}

// ParserAdapter lifts one language's concrete syntax into the Universal
// AST. Implementations declare, statically, the file extensions and
// Language they own so the Registry can dispatch to them (spec.md §4.1).
type ParserAdapter interface {
	// Language is the binding's owned language.
	Language() types.Language
	// Extensions lists the lowercase, dot-free file extensions this
	// adapter claims (e.g. "py", "pyw").
	Extensions() []string
	// SupportsIncremental reports whether Parse can accept a
	// ParseContext.PreviousTree to reuse unchanged subtrees.
	SupportsIncremental() bool
	// Parse lifts source into nodes and edges, or returns a *ParseError.
	Parse(ctx context.Context, pctx ParseContext) (ParseResult, error)
}

// Registry maps file extensions and languages to the ParserAdapter that
// owns them (spec.md §4.1). A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]ParserAdapter
	byLang   map[types.Language]ParserAdapter
	adapters []ParserAdapter
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byExt:  make(map[string]ParserAdapter),
		byLang: make(map[types.Language]ParserAdapter),
	}
}

// Register adds adapter to the registry, indexing it by every extension
// and language it declares. A later Register call for an already-claimed
// extension replaces the earlier owner (last registration wins), mirroring
// the teacher's adapter-map construction in parser_language_setup.go.
func (r *Registry) Register(adapter ParserAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range adapter.Extensions() {
		r.byExt[strings.ToLower(ext)] = adapter
	}
	r.byLang[adapter.Language()] = adapter
	r.adapters = append(r.adapters, adapter)
}

// LookupByPath returns the adapter that owns path's extension, if any.
func (r *Registry) LookupByPath(path string) (ParserAdapter, bool) {
	ext := extensionOf(path)
	if ext == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byExt[ext]
	return a, ok
}

// LookupByLanguage returns the adapter registered for lang, if any.
func (r *Registry) LookupByLanguage(lang types.Language) (ParserAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byLang[lang]
	return a, ok
}

// Adapters returns every registered adapter, in registration order.
func (r *Registry) Adapters() []ParserAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ParserAdapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	return strings.ToLower(path[idx+1:])
}
