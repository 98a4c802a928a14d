package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uastgraph/core/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScan_BasicSelection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "sub/helper.go", "package sub\n")
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.RespectGitignore = false

	s := New(cfg, nil)
	res, err := s.Scan(context.Background())
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.RelPath)
	}
	assert.Contains(t, rels, "main.go")
	assert.Contains(t, rels, "sub/helper.go")
	assert.NotContains(t, rels, "node_modules/pkg/index.js")
}

func TestScan_SmartDependencyModeKeepsEntryPoints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	writeFile(t, root, "node_modules/pkg/internal.js", "const x = 1\n")

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.RespectGitignore = false
	cfg.DependencyMode = config.DependencyModeSmart

	s := New(cfg, nil)
	res, err := s.Scan(context.Background())
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.RelPath)
	}
	assert.Contains(t, rels, "node_modules/pkg/index.js")
	assert.NotContains(t, rels, "node_modules/pkg/internal.js")
}

func TestScan_IncludeAllDependencyMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/pkg/internal.go", "package pkg\n")

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.RespectGitignore = false
	cfg.DependencyMode = config.DependencyModeIncludeAll

	s := New(cfg, nil)
	res, err := s.Scan(context.Background())
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.RelPath)
	}
	assert.Contains(t, rels, "vendor/pkg/internal.go")
}

func TestScan_RespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", "package main\n// this file is treated as too large\n")

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.RespectGitignore = false
	cfg.MaxFileSizeBytes = 5

	s := New(cfg, nil)
	res, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.Equal(t, 1, res.SkippedLarge)
}

func TestScan_IncludeExtensionsNarrowsSelection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "script.py", "x = 1\n")

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.RespectGitignore = false
	cfg.IncludeExtensions = []string{"go"}

	s := New(cfg, nil)
	res, err := s.Scan(context.Background())
	require.NoError(t, err)

	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.RelPath)
	}
	assert.Contains(t, rels, "main.go")
	assert.NotContains(t, rels, "script.py")
}
