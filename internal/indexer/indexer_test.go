package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uastgraph/core/internal/graph"
	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/scan"
	"github.com/uastgraph/core/internal/types"
)

// stubAdapter lifts exactly one node per file, named after its path, and
// fails for any file whose name contains "bad".
type stubAdapter struct{ lang types.Language }

func (a *stubAdapter) Language() types.Language  { return a.lang }
func (a *stubAdapter) Extensions() []string      { return []string{"stub"} }
func (a *stubAdapter) SupportsIncremental() bool { return false }

func (a *stubAdapter) Parse(_ context.Context, pctx registry.ParseContext) (registry.ParseResult, error) {
	if filepath.Base(pctx.FilePath) == "bad.stub" {
		return registry.ParseResult{}, &registry.ParseError{Path: pctx.FilePath, Message: "simulated failure"}
	}
	n := types.NewNodeBuilder(pctx.RepoID, types.NodeKindFunction).
		Name(filepath.Base(pctx.FilePath)).
		Language(a.lang).
		File(pctx.FilePath).
		Span(types.NewSpan(0, 1, 1, 1, 1, 2)).
		Build()
	return registry.ParseResult{Nodes: []types.Node{n}}, nil
}

func writeStubFiles(t *testing.T, names ...string) (dir string, files []scan.DiscoveredFile) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
		files = append(files, scan.DiscoveredFile{AbsPath: path, RelPath: name, Size: 7})
	}
	return dir, files
}

func TestIndexInsertsNodesForEveryFile(t *testing.T) {
	_, files := writeStubFiles(t, "a.stub", "b.stub")

	reg := registry.New()
	reg.Register(&stubAdapter{lang: types.LanguageGo})
	store := graph.NewStore()
	bi := New(store, reg, "repo-a", 2)

	stats, err := bi.Index(context.Background(), &scan.Result{Files: files})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesScanned)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 0, stats.FilesFailed)
	assert.Equal(t, 2, stats.NodesInserted)
	assert.Equal(t, Healthy, stats.Health)
	assert.Equal(t, 2, store.Stats().TotalNodes)
}

func TestIndexRecordsFailuresWithoutAborting(t *testing.T) {
	_, files := writeStubFiles(t, "a.stub", "bad.stub", "b.stub")

	reg := registry.New()
	reg.Register(&stubAdapter{lang: types.LanguageGo})
	store := graph.NewStore()
	bi := New(store, reg, "repo-a", 2)

	stats, err := bi.Index(context.Background(), &scan.Result{Files: files})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesScanned)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.Failures, 1)
	assert.Contains(t, stats.Failures[0].Path, "bad.stub")
}

func TestDeriveHealthThresholds(t *testing.T) {
	assert.Equal(t, Healthy, deriveHealth(0, 100))
	assert.Equal(t, Degraded, deriveHealth(1, 100))   // 1 < 100/10
	assert.Equal(t, Degraded, deriveHealth(9, 100))   // 9 < 100/10
	assert.Equal(t, Unhealthy, deriveHealth(10, 100)) // 10 not < 100/10
	assert.Equal(t, Unhealthy, deriveHealth(30, 100)) // well over the threshold
	assert.Equal(t, Healthy, deriveHealth(0, 0))
	assert.Equal(t, Unhealthy, deriveHealth(1, 0)) // any failure with no processed total
}

func TestIndexUnregisteredExtensionFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.unknownext")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	reg := registry.New() // nothing registered
	store := graph.NewStore()
	bi := New(store, reg, "repo-a", 1)

	stats, err := bi.Index(context.Background(), &scan.Result{
		Files: []scan.DiscoveredFile{{AbsPath: path, RelPath: "a.unknownext", Size: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 0, stats.FilesIndexed)
}
