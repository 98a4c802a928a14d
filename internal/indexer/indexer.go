// Package indexer implements the bulk indexer (spec.md §4.6): it takes a
// scan.Result, parses every discovered file through the parser engine, and
// inserts the resulting nodes and edges into a graph.Store, nodes before
// edges per file. Concurrency is a bounded worker pool built on
// golang.org/x/sync/errgroup, the teacher's choice for fan-out over a
// file list (internal/indexing's concurrent_operations.go uses the same
// pattern with a plain sync.WaitGroup; errgroup additionally propagates
// the first worker's context-cancelling error, which a pure WaitGroup
// does not).
package indexer

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	lcierrors "github.com/uastgraph/core/internal/errors"
	"github.com/uastgraph/core/internal/graph"
	"github.com/uastgraph/core/internal/parser"
	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/scan"
)

// Health summarizes how a bulk indexing run went, derived from the ratio
// of failed files to total files attempted (spec.md §4.6/§7).
type Health int

const (
	Healthy Health = iota
	Degraded
	Unhealthy
)

func (h Health) String() string {
	switch h {
	case Degraded:
		return "Degraded"
	case Unhealthy:
		return "Unhealthy"
	default:
		return "Healthy"
	}
}

// FileFailure records one file's parse or insertion error without aborting
// the run.
type FileFailure struct {
	Path string
	Err  error
}

// Stats reports the outcome of a bulk indexing run.
type Stats struct {
	FilesScanned   int
	FilesIndexed   int
	FilesSkipped   int
	FilesFailed    int
	NodesInserted  int
	EdgesInserted  int
	Duration       time.Duration
	Failures       []FileFailure
	Health         Health
}

// BulkIndexer parses a scan.Result's files and populates a graph.Store.
type BulkIndexer struct {
	store   *graph.Store
	engine  *parser.Engine
	reg     *registry.Registry
	repoID  string
	workers int
}

// New builds a BulkIndexer writing into store. workers bounds the
// concurrent parse worker pool; callers typically pass
// config.ParallelWorkers().
func New(store *graph.Store, reg *registry.Registry, repoID string, workers int) *BulkIndexer {
	if workers < 1 {
		workers = 1
	}
	return &BulkIndexer{
		store:   store,
		engine:  parser.NewEngine(reg),
		reg:     reg,
		repoID:  repoID,
		workers: workers,
	}
}

// Index parses every file in scanned concurrently and inserts the results
// into the indexer's graph.Store, nodes before edges within each file.
// A per-file failure is recorded in Stats.Failures and does not abort the
// run; Stats.Health reflects the overall failure ratio.
func (bi *BulkIndexer) Index(ctx context.Context, scanned *scan.Result) (*Stats, error) {
	start := time.Now()

	stats := &Stats{
		FilesScanned: len(scanned.Files),
		FilesSkipped: scanned.SkippedLarge + scanned.SkippedUnsupported,
	}

	var (
		indexed atomic.Int64
		nodes   atomic.Int64
		edges   atomic.Int64
		failMu  failureCollector
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bi.workers)

	for _, f := range scanned.Files {
		f := f
		g.Go(func() error {
			n, e, err := bi.indexFile(gctx, f)
			if err != nil {
				failMu.add(FileFailure{Path: f.RelPath, Err: err})
				return nil
			}
			indexed.Add(1)
			nodes.Add(int64(n))
			edges.Add(int64(e))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, lcierrors.NewPipelineError("bulk_index", "", err)
	}

	stats.FilesIndexed = int(indexed.Load())
	stats.NodesInserted = int(nodes.Load())
	stats.EdgesInserted = int(edges.Load())
	stats.Failures = failMu.drain()
	stats.FilesFailed = len(stats.Failures)
	stats.Duration = time.Since(start)
	stats.Health = deriveHealth(stats.FilesFailed, stats.FilesScanned)

	return stats, nil
}

// indexFile parses one file and inserts its nodes, then its edges, into
// the store. Nodes are inserted first within a file so that edges never
// reference a target the store hasn't seen yet from this same file.
func (bi *BulkIndexer) indexFile(ctx context.Context, f scan.DiscoveredFile) (nodeCount, edgeCount int, err error) {
	source, readErr := readFile(f.AbsPath)
	if readErr != nil {
		return 0, 0, lcierrors.NewIndexingError("read_file", readErr).WithFile(f.AbsPath)
	}

	result, parseErr := bi.engine.Parse(ctx, registry.ParseContext{
		RepoID:     bi.repoID,
		FilePath:   f.AbsPath,
		SourceText: source,
	})
	if parseErr != nil {
		return 0, 0, lcierrors.NewParseError(f.AbsPath, 0, 0, "", parseErr)
	}

	for _, node := range result.Nodes {
		bi.store.AddNode(node)
	}
	for _, edge := range result.Edges {
		bi.store.AddEdge(edge)
	}

	return len(result.Nodes), len(result.Edges), nil
}

// deriveHealth applies spec.md §4.6's literal rule: no failures is
// Healthy, fewer than a tenth of files failing is Degraded, anything
// higher is Unhealthy. No single failure is fatal to the run (spec.md §7:
// "no error anywhere in the bulk path... is fatal to the component").
func deriveHealth(failed, total int) Health {
	if failed == 0 {
		return Healthy
	}
	if failed < total/10 {
		return Degraded
	}
	return Unhealthy
}
