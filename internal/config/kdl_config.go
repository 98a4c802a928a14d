package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// defaultConfigFilename is the KDL config file the loader looks for in a
// project root.
const defaultConfigFilename = ".uastgraph.kdl"

// LoadKDL attempts to load configuration from <projectRoot>/.uastgraph.kdl.
// Returns (nil, nil) if the file does not exist; callers should fall back
// to Default() in that case.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, defaultConfigFilename)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", defaultConfigFilename, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Clean(cfg.ProjectRoot)
	} else if cfg.ProjectRoot != "" {
		cfg.ProjectRoot = filepath.Clean(filepath.Join(projectRoot, cfg.ProjectRoot))
	} else if absRoot, err := filepath.Abs(projectRoot); err == nil {
		cfg.ProjectRoot = absRoot
	} else {
		cfg.ProjectRoot = projectRoot
	}

	return cfg, nil
}

// parseKDL parses KDL content into a Config, starting from Default() and
// overwriting whichever recognized keys are present. A key outside that
// set makes parseKDL return an "unknown configuration key" error.
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	var explicitExcludeDirs []string
	seenKeys := make(map[string]bool)

	for _, n := range doc.Nodes {
		name := nodeName(n)
		seenKeys[name] = true
		switch name {
		case "repo_id":
			if s, ok := firstStringArg(n); ok {
				cfg.RepoID = s
			}
		case "commit_sha":
			if s, ok := firstStringArg(n); ok {
				cfg.CommitSHA = s
			}
		case "project_root":
			if s, ok := firstStringArg(n); ok {
				cfg.ProjectRoot = s
			}
		case "exclude_dirs":
			explicitExcludeDirs = collectStringArgs(n)
		case "include_extensions":
			cfg.IncludeExtensions = collectStringArgs(n)
		case "dependency_mode":
			if s, ok := firstStringArg(n); ok {
				cfg.DependencyMode = ParseDependencyMode(s)
			}
		case "debounce_duration_ms":
			if v, ok := firstIntArg(n); ok {
				cfg.DebounceDurationMs = v
			}
		case "batch_size":
			if v, ok := firstIntArg(n); ok {
				cfg.BatchSize = v
			}
		case "enable_batching":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableBatching = b
			}
		case "processing_timeout_ms":
			if v, ok := firstIntArg(n); ok {
				cfg.ProcessingTimeoutMs = v
			}
		case "max_file_size_bytes":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxFileSizeBytes = int64(v)
			} else if s, ok := firstStringArg(n); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.MaxFileSizeBytes = sz
				}
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.RespectGitignore = b
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(n); ok {
				cfg.FollowSymlinks = b
			}
		case "max_queue_size":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxQueueSize = v
			}
		default:
			return nil, fmt.Errorf("unknown configuration key %q", name)
		}
	}

	if explicitExcludeDirs != nil {
		cfg.ExcludeDirs = DeduplicatePatterns(append(append([]string(nil), defaultExcludeDirs...), explicitExcludeDirs...))
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
