// Command uastgraph wires the core components (scanner, parser engine,
// bulk indexer, graph store/query, file watcher, monitoring pipeline)
// into a CLI, grounded on the teacher's cmd/lci/main.go urfave/cli
// wiring: flag-overridden config loading, subcommands, and a graceful
// shutdown on SIGINT/SIGTERM for the watch command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/uastgraph/core/internal/config"
	"github.com/uastgraph/core/internal/graph"
	"github.com/uastgraph/core/internal/indexer"
	"github.com/uastgraph/core/internal/lineindex"
	"github.com/uastgraph/core/internal/parser"
	"github.com/uastgraph/core/internal/patch"
	"github.com/uastgraph/core/internal/pipeline"
	"github.com/uastgraph/core/internal/registry"
	"github.com/uastgraph/core/internal/scan"
	"github.com/uastgraph/core/internal/types"
	"github.com/uastgraph/core/internal/version"
	"github.com/uastgraph/core/internal/watch"
	"github.com/uastgraph/core/pkg/pathutil"
)

func main() {
	app := &cli.App{
		Name:    "uastgraph",
		Usage:   "build and query a language-agnostic code intelligence graph",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "repository root to operate on", Value: "."},
			&cli.StringFlag{Name: "repo-id", Usage: "repo_id recorded on nodes and patches"},
			&cli.StringFlag{Name: "commit", Usage: "commit_sha recorded on nodes and patches"},
		},
		Commands: []*cli.Command{
			scanCommand(),
			indexCommand(),
			watchCommand(),
			queryCommand(),
			patchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration record for c.String("root"),
// applying repo-id/commit overrides (spec.md §6.5).
func loadConfig(c *cli.Context) (*config.Config, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	cfg.ProjectRoot = root

	if v := c.String("repo-id"); v != "" {
		cfg.RepoID = v
	}
	if v := c.String("commit"); v != "" {
		cfg.CommitSHA = v
	}
	return cfg, nil
}

// newRegistry registers every reference language binding this repository
// ships (spec.md §4.1); additional bindings are added purely by calling
// Register, never by modifying the engine.
func newRegistry() (*registry.Registry, error) {
	reg := registry.New()

	goAdapter, err := parser.NewGoAdapter()
	if err != nil {
		return nil, fmt.Errorf("init go adapter: %w", err)
	}
	reg.Register(goAdapter)

	pyAdapter, err := parser.NewPythonAdapter()
	if err != nil {
		return nil, fmt.Errorf("init python adapter: %w", err)
	}
	reg.Register(pyAdapter)

	jsAdapter, err := parser.NewJavaScriptAdapter()
	if err != nil {
		return nil, fmt.Errorf("init javascript adapter: %w", err)
	}
	reg.Register(jsAdapter)

	return reg, nil
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "walk the repository and report the files that would be indexed",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			result, err := scan.New(cfg, reg).Scan(c.Context)
			if err != nil {
				return err
			}

			fmt.Printf("files: %d  skipped_large: %d  skipped_unsupported: %d  total_bytes: %d\n",
				len(result.Files), result.SkippedLarge, result.SkippedUnsupported, result.TotalBytes)
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "scan and bulk-index the repository, reporting indexing stats",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			scanned, err := scan.New(cfg, reg).Scan(c.Context)
			if err != nil {
				return err
			}

			store := graph.NewStore()
			bi := indexer.New(store, reg, cfg.RepoID, config.ParallelWorkers())
			stats, err := bi.Index(c.Context, scanned)
			if err != nil {
				return err
			}

			gstats := store.Stats()
			fmt.Printf("health: %s  files_indexed: %d  files_failed: %d  nodes: %d  edges: %d  duration: %s\n",
				stats.Health, stats.FilesIndexed, stats.FilesFailed, gstats.TotalNodes, gstats.TotalEdges, stats.Duration)
			for _, f := range stats.Failures {
				fmt.Printf("  failed: %s: %v\n", f.Path, f.Err)
			}
			return nil
		},
	}
}

// storeEventHandler applies pipeline patches directly to a live
// graph.Store (spec.md §6.4's consumer contract) and logs failures.
type storeEventHandler struct {
	store *graph.Store
}

func (h *storeEventHandler) HandleEvent(_ context.Context, pe pipeline.PipelineEvent) error {
	if pe.Patch == nil {
		return nil
	}
	patch.Apply(h.store, *pe.Patch)
	return nil
}

func (h *storeEventHandler) HandleError(err error, ev types.ChangeEvent) {
	fmt.Fprintf(os.Stderr, "pipeline: %s %s: %v\n", ev.Kind, ev.Path, err)
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "bulk-index, then watch the repository and apply live patches",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			reg, err := newRegistry()
			if err != nil {
				return err
			}

			store := graph.NewStore()
			scanner := scan.New(cfg, reg)

			scanned, err := scanner.Scan(c.Context)
			if err != nil {
				return err
			}
			bi := indexer.New(store, reg, cfg.RepoID, config.ParallelWorkers())
			if _, err := bi.Index(c.Context, scanned); err != nil {
				return err
			}

			w, err := watch.New(cfg, scanner)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := w.Start(ctx); err != nil {
				return err
			}

			eng := parser.NewEngine(reg)
			pc := pipeline.ConfigFromApp(cfg.RepoID, cfg.CommitSHA, cfg.DebounceDurationMs, cfg.BatchSize,
				cfg.EnableBatching, cfg.ProcessingTimeoutMs, cfg.MaxQueueSize)
			p := pipeline.New(pc, eng.Parse, store, &storeEventHandler{store: store})

			fmt.Println("watching", cfg.ProjectRoot, "(ctrl-c to stop)")
			runErr := p.Run(ctx, w.Events())
			if err := w.Stop(); err != nil {
				fmt.Fprintln(os.Stderr, "watch: stop error:", err)
			}

			snap := p.Stats().Snapshot()
			fmt.Printf("events_processed: %d  patches_generated: %d  nodes_added: %d  edges_added: %d\n",
				snap.EventsProcessed, snap.PatchesGenerated, snap.NodesAdded, snap.EdgesAdded)

			if runErr != nil && runErr != context.Canceled {
				return runErr
			}
			return nil
		},
	}
}

// patchCommand exposes the AST patch wire format so an out-of-process
// producer or consumer can validate against it without linking this
// module (spec.md §6.1; the schema is internal/patch.Schema()).
func patchCommand() *cli.Command {
	return &cli.Command{
		Name:  "patch",
		Usage: "inspect the AST patch wire format",
		Subcommands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "print the AstPatch JSON Schema",
				Action: func(c *cli.Context) error {
					out, err := json.MarshalIndent(patch.Schema(), "", "  ")
					if err != nil {
						return fmt.Errorf("marshal patch schema: %w", err)
					}
					fmt.Println(string(out))
					return nil
				},
			},
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "index the repository in-process, then run one graph query",
		Subcommands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "search symbols by case-insensitive substring",
				ArgsUsage: "<pattern>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 50},
					&cli.BoolFlag{Name: "fuzzy"},
				},
				Action: func(c *cli.Context) error {
					q, root, err := buildQuery(c)
					if err != nil {
						return err
					}
					pattern := c.Args().First()
					results := q.SearchSymbols(pattern, graph.SearchOptions{Limit: c.Int("limit"), Fuzzy: c.Bool("fuzzy")})
					out := make([]symbolResult, len(results))
					for i, r := range results {
						out[i] = newSymbolResult(r.Node, root)
					}
					return printJSON(out)
				},
			},
			{
				Name:      "refs",
				Usage:     "find references to a node by hex id",
				ArgsUsage: "<node-id-hex>",
				Action: func(c *cli.Context) error {
					q, root, err := buildQuery(c)
					if err != nil {
						return err
					}
					id, err := types.NodeIdFromHex(c.Args().First())
					if err != nil {
						return err
					}
					refs := q.FindReferences(id)
					out := make([]symbolResult, len(refs))
					for i, r := range refs {
						out[i] = newSymbolResult(r.SourceNode, root)
					}
					return printJSON(out)
				},
			},
			{
				Name:      "deps",
				Usage:     "find dependencies of a node by hex id",
				ArgsUsage: "<node-id-hex>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Value: "direct", Usage: "direct|calls|imports|reads|writes"},
				},
				Action: func(c *cli.Context) error {
					q, _, err := buildQuery(c)
					if err != nil {
						return err
					}
					id, err := types.NodeIdFromHex(c.Args().First())
					if err != nil {
						return err
					}
					return printJSON(q.FindDependencies(id, parseDependencyFilter(c.String("type"))))
				},
			},
			{
				Name:      "path",
				Usage:     "find the shortest path between two nodes by hex id",
				ArgsUsage: "<source-id-hex> <target-id-hex>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max-depth", Value: 10},
				},
				Action: func(c *cli.Context) error {
					q, _, err := buildQuery(c)
					if err != nil {
						return err
					}
					src, err := types.NodeIdFromHex(c.Args().Get(0))
					if err != nil {
						return err
					}
					dst, err := types.NodeIdFromHex(c.Args().Get(1))
					if err != nil {
						return err
					}
					result, ok := q.FindPath(src, dst, c.Int("max-depth"))
					if !ok {
						fmt.Println("no path found")
						return nil
					}
					return printJSON(result)
				},
			},
		},
	}
}

// buildQuery re-indexes the configured root from scratch into an
// in-memory graph.Store and returns a Query over it, along with the
// resolved repository root for display purposes. The core holds no
// persistent database (spec.md §1 Non-goals), so every query invocation
// rebuilds; `watch` is the long-lived alternative that keeps a Store warm.
func buildQuery(c *cli.Context) (*graph.Query, string, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, "", err
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, "", err
	}
	scanned, err := scan.New(cfg, reg).Scan(c.Context)
	if err != nil {
		return nil, "", err
	}
	store := graph.NewStore()
	bi := indexer.New(store, reg, cfg.RepoID, config.ParallelWorkers())
	if _, err := bi.Index(c.Context, scanned); err != nil {
		return nil, "", err
	}
	return graph.NewQuery(store), cfg.ProjectRoot, nil
}

// symbolResult is the display form of a types.Node: the file path is
// shown relative to the repository root (pkg/pathutil), and Snippet
// carries the node's source line(s) for the terminal (internal/lineindex),
// sparing a caller a second lookup into the source tree.
type symbolResult struct {
	Id       types.NodeId   `json:"id"`
	Kind     types.NodeKind `json:"kind"`
	Name     string         `json:"name"`
	Language types.Language `json:"language"`
	File     string         `json:"file"`
	Span     types.Span     `json:"span"`
	Snippet  string         `json:"snippet,omitempty"`
}

func newSymbolResult(n types.Node, root string) symbolResult {
	r := symbolResult{
		Id:       n.Id,
		Kind:     n.Kind,
		Name:     n.Name,
		Language: n.Language,
		File:     pathutil.ToRelative(n.File, root),
		Span:     n.Span,
	}
	if lines, err := sourceSnippet(n.File, n.Span.StartLine, n.Span.EndLine); err == nil {
		r.Snippet = lines
	}
	return r
}

// sourceSnippet reads file and returns the joined text of lines
// [startLine, endLine] (1-based, inclusive), capped at 20 lines so a
// large node (e.g. a whole class) doesn't dump its entire body.
func sourceSnippet(file string, startLine, endLine int) (string, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	if endLine-startLine >= 20 {
		endLine = startLine + 19
	}
	lines := lineindex.GetLineRange(content, startLine, endLine)
	return strings.Join(lines, "\n"), nil
}

func parseDependencyFilter(s string) graph.DependencyFilter {
	switch s {
	case "calls":
		return graph.DependencyCalls
	case "imports":
		return graph.DependencyImports
	case "reads":
		return graph.DependencyReads
	case "writes":
		return graph.DependencyWrites
	default:
		return graph.DependencyDirect
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
