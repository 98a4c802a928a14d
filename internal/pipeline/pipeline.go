// Package pipeline implements the monitoring pipeline (spec.md §4.8): it
// consumes debounced types.ChangeEvent values from a file watcher, drives
// each one through the parser engine, and emits an AstPatch describing
// the incremental update, batching dispatch per the predicate spec.md
// §4.8 describes.
//
// Grounded on spec.md §4.8's state machine and batching predicate, and on
// original_source's codeprism-core/src/pipeline/mod.rs for the
// quiescence/batch-size/non-batching dispatch disjunction; naming follows
// the teacher's internal/indexing/pipeline_types.go vocabulary
// (FileTask/ProcessedFile renamed to this package's
// ChangeEvent/PipelineEvent since the teacher's types are sized for its
// dense trigram index, not a Universal AST patch).
package pipeline

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lcierrors "github.com/uastgraph/core/internal/errors"
	"github.com/uastgraph/core/internal/patch"
	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/types"
)

// Config carries the pipeline's timing and batching knobs (spec.md §4.8).
type Config struct {
	RepoID            string
	CommitSHA         string
	DebounceDuration  time.Duration
	MaxQueueSize      int
	BatchSize         int
	EnableBatching    bool
	ProcessingTimeout time.Duration
}

// ConfigFromApp builds a pipeline Config from the ambient configuration
// record's pipeline-facing fields (spec.md §6.5).
func ConfigFromApp(repoID, commitSHA string, debounceMs, batchSize int, enableBatching bool, processingTimeoutMs, maxQueueSize int) Config {
	return Config{
		RepoID:            repoID,
		CommitSHA:         commitSHA,
		DebounceDuration:  time.Duration(debounceMs) * time.Millisecond,
		MaxQueueSize:      maxQueueSize,
		BatchSize:         batchSize,
		EnableBatching:    enableBatching,
		ProcessingTimeout: time.Duration(processingTimeoutMs) * time.Millisecond,
	}
}

// GraphReader is the read handle the pipeline uses to compute a Deleted or
// Renamed event's node-deletion set (spec.md §9 Open Question 1; DESIGN.md
// resolves this as option (a): the pipeline owns a read handle rather than
// leaving deletion reconciliation entirely to the consumer).
type GraphReader interface {
	GetNodesInFile(file string) []types.NodeId
}

// EventHandler is the consumer contract a pipeline drives (spec.md §6.4).
// A typical implementation applies the patch to a graph.Store via
// patch.Apply.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev PipelineEvent) error
	HandleError(err error, ev types.ChangeEvent)
}

// EventState is a single event's position in the per-event state machine
// (spec.md §4.8: Queued -> Processing -> PatchProduced | Skipped | Failed).
type EventState int

const (
	StateQueued EventState = iota
	StateProcessing
	StatePatchProduced
	StateSkipped
	StateFailed
)

func (s EventState) String() string {
	switch s {
	case StateProcessing:
		return "Processing"
	case StatePatchProduced:
		return "PatchProduced"
	case StateSkipped:
		return "Skipped"
	case StateFailed:
		return "Failed"
	default:
		return "Queued"
	}
}

// PipelineEvent is what the pipeline pushes to an EventHandler for each
// processed change (spec.md §4.8/§6.4).
type PipelineEvent struct {
	RepoID              string
	ChangeEvent         types.ChangeEvent
	State               EventState
	Patch              *patch.AstPatch
	ProcessedAt        time.Time
	ProcessingDuration time.Duration
}

// Stats is the pipeline's running counters (spec.md §4.8), updated
// atomically per event.
type Stats struct {
	EventsProcessed atomic.Int64
	EventsSuccess   atomic.Int64
	EventsFailed    atomic.Int64
	EventsFiltered  atomic.Int64
	PatchesGenerated atomic.Int64
	NodesAdded      atomic.Int64
	EdgesAdded      atomic.Int64
	NodesRemoved    atomic.Int64
	EdgesRemoved    atomic.Int64

	totalProcessingNs atomic.Int64
}

// AvgProcessingMs returns the mean per-event processing time in
// milliseconds across every event processed so far.
func (s *Stats) AvgProcessingMs() float64 {
	n := s.EventsProcessed.Load()
	if n == 0 {
		return 0
	}
	return float64(s.totalProcessingNs.Load()) / float64(n) / float64(time.Millisecond)
}

// Snapshot is an immutable copy of Stats for reporting.
type Snapshot struct {
	EventsProcessed  int64
	EventsSuccess    int64
	EventsFailed     int64
	EventsFiltered   int64
	PatchesGenerated int64
	NodesAdded       int64
	EdgesAdded       int64
	NodesRemoved     int64
	EdgesRemoved     int64
	AvgProcessingMs  float64
}

// Snapshot materializes the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		EventsProcessed:  s.EventsProcessed.Load(),
		EventsSuccess:    s.EventsSuccess.Load(),
		EventsFailed:     s.EventsFailed.Load(),
		EventsFiltered:   s.EventsFiltered.Load(),
		PatchesGenerated: s.PatchesGenerated.Load(),
		NodesAdded:       s.NodesAdded.Load(),
		EdgesAdded:       s.EdgesAdded.Load(),
		NodesRemoved:     s.NodesRemoved.Load(),
		EdgesRemoved:     s.EdgesRemoved.Load(),
		AvgProcessingMs:  s.AvgProcessingMs(),
	}
}

// Reset zeroes every counter (spec.md §3.4 "Pipeline stats: reset on
// explicit request").
func (s *Stats) Reset() {
	s.EventsProcessed.Store(0)
	s.EventsSuccess.Store(0)
	s.EventsFailed.Store(0)
	s.EventsFiltered.Store(0)
	s.PatchesGenerated.Store(0)
	s.NodesAdded.Store(0)
	s.EdgesAdded.Store(0)
	s.NodesRemoved.Store(0)
	s.EdgesRemoved.Store(0)
	s.totalProcessingNs.Store(0)
}

// parseFunc is the narrow slice of parser.Engine the pipeline needs;
// defined as a function type so tests can stub it without constructing a
// real parser.Engine.
type parseFunc func(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error)

// Pipeline drives ChangeEvents from a watcher through the parser engine
// and emits PipelineEvents to an EventHandler (spec.md §4.8).
type Pipeline struct {
	cfg     Config
	parse   parseFunc
	reader  GraphReader
	handler EventHandler

	stats Stats

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Pipeline. parse is typically (*parser.Engine).Parse;
// reader resolves a Deleted/Renamed event's deletion set (nil degrades to
// the documented empty-patch limitation, spec.md §4.8/§9).
func New(cfg Config, parse func(ctx context.Context, pctx registry.ParseContext) (registry.ParseResult, error), reader GraphReader, handler EventHandler) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.DebounceDuration <= 0 {
		cfg.DebounceDuration = 100 * time.Millisecond
	}
	if cfg.ProcessingTimeout <= 0 {
		cfg.ProcessingTimeout = 30 * time.Second
	}
	return &Pipeline{
		cfg:     cfg,
		parse:   parse,
		reader:  reader,
		handler: handler,
		stopCh:  make(chan struct{}),
	}
}

// Stats returns the pipeline's live counters.
func (p *Pipeline) Stats() *Stats { return &p.stats }

// Stop requests a one-shot shutdown: the current batch finishes, any
// events still queued are drained and processed once more (best-effort
// flush), and Run returns (spec.md §5 "Cancellation semantics").
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Run consumes events until events closes, Stop is called, or ctx is
// done, dispatching batches per spec.md §4.8's predicate: queue length >=
// BatchSize; batching disabled and queue non-empty; or a quiescence
// interval greater than DebounceDuration has elapsed since the last
// dispatch.
func (p *Pipeline) Run(ctx context.Context, events <-chan types.ChangeEvent) error {
	var batch []types.ChangeEvent
	quiescence := time.NewTimer(p.cfg.DebounceDuration)
	defer quiescence.Stop()

	dispatch := func() {
		if len(batch) == 0 {
			return
		}
		p.processBatch(ctx, batch)
		batch = batch[:0]
		quiescence.Reset(p.cfg.DebounceDuration)
	}

	stopping := false
	for {
		select {
		case <-ctx.Done():
			dispatch()
			return ctx.Err()

		case <-p.stopCh:
			if stopping {
				continue
			}
			stopping = true
			dispatch()
			// Best-effort final flush: drain whatever arrived between
			// the stop signal and this point, then return.
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					batch = append(batch, ev)
				default:
					dispatch()
					return nil
				}
			}

		case ev, ok := <-events:
			if !ok {
				dispatch()
				return nil
			}
			batch = append(batch, ev)

			if len(batch) >= p.cfg.BatchSize {
				dispatch()
			} else if !p.cfg.EnableBatching {
				dispatch()
			}

		case <-quiescence.C:
			dispatch()
			quiescence.Reset(p.cfg.DebounceDuration)
		}
	}
}

func (p *Pipeline) processBatch(ctx context.Context, batch []types.ChangeEvent) {
	for _, ev := range batch {
		p.processOne(ctx, ev)
	}
}

func (p *Pipeline) processOne(ctx context.Context, ev types.ChangeEvent) {
	start := time.Now()
	p.stats.EventsProcessed.Add(1)

	evCtx, cancel := context.WithTimeout(ctx, p.cfg.ProcessingTimeout)
	defer cancel()

	pe, err := p.buildPatch(evCtx, ev)
	pe.ProcessedAt = time.Now()
	pe.ProcessingDuration = time.Since(start)
	p.stats.totalProcessingNs.Add(int64(pe.ProcessingDuration))

	if evCtx.Err() == context.DeadlineExceeded {
		pe.State = StateFailed
		p.stats.EventsFailed.Add(1)
		p.handler.HandleError(lcierrors.NewPipelineError("process_event", ev.Path, evCtx.Err()), ev)
		return
	}

	if err != nil {
		pe.State = StateFailed
		p.stats.EventsFailed.Add(1)
		p.handler.HandleError(err, ev)
		return
	}

	if pe.State == StateSkipped {
		p.stats.EventsFiltered.Add(1)
		return
	}

	if handleErr := p.handler.HandleEvent(ctx, pe); handleErr != nil {
		pe.State = StateFailed
		p.stats.EventsFailed.Add(1)
		p.handler.HandleError(handleErr, ev)
		return
	}

	pe.State = StatePatchProduced
	p.stats.EventsSuccess.Add(1)
	if pe.Patch != nil {
		p.stats.PatchesGenerated.Add(1)
		p.stats.NodesAdded.Add(int64(len(pe.Patch.NodesAdd)))
		p.stats.EdgesAdded.Add(int64(len(pe.Patch.EdgesAdd)))
		p.stats.NodesRemoved.Add(int64(len(pe.Patch.NodesDelete)))
		p.stats.EdgesRemoved.Add(int64(len(pe.Patch.EdgesDelete)))
	}
}

// buildPatch implements the per-kind processing rules of spec.md §4.8.
func (p *Pipeline) buildPatch(ctx context.Context, ev types.ChangeEvent) (PipelineEvent, error) {
	pe := PipelineEvent{RepoID: p.cfg.RepoID, ChangeEvent: ev, State: StateProcessing}

	switch ev.Kind {
	case types.ChangeDeleted:
		b := patch.NewBuilder(p.cfg.RepoID, p.cfg.CommitSHA)
		if p.reader != nil {
			b.DeleteNodes(p.reader.GetNodesInFile(ev.Path))
		}
		built := b.Build()
		if built.IsEmpty() {
			pe.State = StateSkipped
			return pe, nil
		}
		pe.Patch = &built
		return pe, nil

	case types.ChangeRenamed:
		b := patch.NewBuilder(p.cfg.RepoID, p.cfg.CommitSHA)
		if p.reader != nil {
			// Resolves spec.md §9 Open Question 4: the old path's nodes
			// are deleted rather than left leaking across the rename.
			b.DeleteNodes(p.reader.GetNodesInFile(ev.OldPath))
		}
		result, parseErr := p.parseFile(ctx, ev.Path)
		if parseErr != nil {
			return pe, parseErr
		}
		if result == nil {
			built := b.Build()
			pe.Patch = &built
			if built.IsEmpty() {
				pe.State = StateSkipped
			}
			return pe, nil
		}
		b.AddNodes(result.Nodes).AddEdges(result.Edges)
		built := b.Build()
		pe.Patch = &built
		return pe, nil

	default: // Created, Modified
		result, parseErr := p.parseFile(ctx, ev.Path)
		if parseErr != nil {
			return pe, parseErr
		}
		if result == nil {
			pe.State = StateSkipped
			return pe, nil
		}
		built := patch.NewBuilder(p.cfg.RepoID, p.cfg.CommitSHA).
			AddNodes(result.Nodes).AddEdges(result.Edges).Build()
		pe.Patch = &built
		return pe, nil
	}
}

// parseFile reads path and invokes the parser engine. A missing or empty
// file produces (nil, nil): "no patch", not an error (spec.md §4.8
// Created/Modified rule).
func (p *Pipeline) parseFile(ctx context.Context, path string) (*registry.ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lcierrors.NewPipelineError("read_file", path, err)
	}
	if len(source) == 0 {
		return nil, nil
	}

	result, parseErr := p.parse(ctx, registry.ParseContext{
		RepoID:     p.cfg.RepoID,
		FilePath:   path,
		SourceText: source,
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return &result, nil
}
