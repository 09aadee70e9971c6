package workspace_analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/config"
	"docgen/models"
	"docgen/syntax"
	"docgen/token_management"
)

func writeFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestAnalyzer(t *testing.T, root string, cfg config.WorkspaceConfig) *Analyzer {
	t.Helper()
	return NewAnalyzer(root, cfg, syntax.NewExtractor(), token_management.NewTokenManager())
}

func TestAnalyzeDiscoversPackagesAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module example.com/demo\n\ngo 1.23\n")
	writeFile(t, root, "main.go", "package main\n\nimport \"fmt\"\n\nfunc Run() { fmt.Println() }\n")
	writeFile(t, root, "web/package.json", `{"name": "demo-web"}`)
	writeFile(t, root, "web/app.js", "function render() { return 1; }\n")
	writeFile(t, root, "node_modules/dep/index.js", "function hidden() {}\n")
	writeFile(t, root, "README.md", "# demo\n")

	analyzer := newTestAnalyzer(t, root, config.WorkspaceConfig{})
	info, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	kinds := make(map[string]string)
	for _, pkg := range info.Packages {
		kinds[pkg.Name] = pkg.Kind
	}
	assert.Equal(t, "go", kinds["example.com/demo"])
	assert.Equal(t, "node", kinds["demo-web"])

	var paths []string
	for _, f := range info.Files {
		paths = append(paths, f.Path)
		if f.Path == "main.go" {
			assert.Equal(t, []string{`"fmt"`}, f.Imports)
		}
	}
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, "web/app.js")
	for _, p := range paths {
		assert.NotContains(t, p, "node_modules")
		assert.False(t, strings.HasSuffix(p, ".md"))
	}
}

func TestAnalyzeHonorsIgnoreFileAndSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".docgen-ignore", "generated_*.go\n**/gen/**\n")
	writeFile(t, root, "keep.go", "package demo\n\nfunc Keep() {}\n")
	writeFile(t, root, "generated_stub.go", "package demo\n\nfunc Stub() {}\n")
	writeFile(t, root, "services/api/gen/v1/stub.go", "package v1\n\nfunc Deep() {}\n")
	writeFile(t, root, "huge.go", "package demo\n\nfunc Huge() {}\n"+strings.Repeat("// padding\n", 200))

	analyzer := newTestAnalyzer(t, root, config.WorkspaceConfig{MaxFileSizeKB: 1})
	info, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	require.Len(t, info.Files, 1)
	assert.Equal(t, "keep.go", info.Files[0].Path)
}

func TestAnalyzeIncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "internal/a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, root, "scripts/b.py", "def b():\n    pass\n")

	analyzer := newTestAnalyzer(t, root, config.WorkspaceConfig{Include: []string{"**/*.go"}})
	info, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	require.Len(t, info.Files, 1)
	assert.Equal(t, "internal/a.go", info.Files[0].Path)
}

func TestAnalyzeBuildsSymbolMap(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "types.go", "package demo\n\ntype Widget struct{}\n")
	writeFile(t, root, "use.go", "package demo\n\nfunc Build() Widget {\n\treturn Widget{}\n}\n")

	analyzer := newTestAnalyzer(t, root, config.WorkspaceConfig{})
	info, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "types.go", info.Symbols.DefinitionOf("Widget"))
	assert.Equal(t, []string{"use.go"}, info.Symbols.UsagesOf("Widget"))
	assert.Empty(t, info.Symbols.UsagesOf("Build"))
}

func TestBuildBatchesRespectsTokenCeiling(t *testing.T) {
	files := []models.SourceFile{
		{Path: "a.go", EstimatedTokens: 400, Priority: 1},
		{Path: "b.go", EstimatedTokens: 400, Priority: 1},
		{Path: "c.go", EstimatedTokens: 400, Priority: 1},
	}

	batches := BuildBatches(files, 1000)

	require.Len(t, batches, 2)
	assert.Equal(t, []string{"a.go", "b.go"}, batches[0].Files)
	assert.Equal(t, 800, batches[0].EstimatedTokens)
	assert.Equal(t, []string{"c.go"}, batches[1].Files)
}

func TestBuildBatchesOversizeFileGetsOwnBatch(t *testing.T) {
	files := []models.SourceFile{
		{Path: "small.go", EstimatedTokens: 100, Priority: 1},
		{Path: "giant.go", EstimatedTokens: 5000, Priority: 1},
	}

	batches := BuildBatches(files, 1000)

	require.Len(t, batches, 2)
	assert.Equal(t, []string{"giant.go"}, batches[0].Files)
	assert.Equal(t, []string{"small.go"}, batches[1].Files)
}

func TestBuildBatchesOrdersByPriority(t *testing.T) {
	files := []models.SourceFile{
		{Path: "low.go", EstimatedTokens: 900, Priority: 1},
		{Path: "high.go", EstimatedTokens: 900, Priority: 9},
	}

	batches := BuildBatches(files, 1000)

	require.Len(t, batches, 2)
	assert.Equal(t, []string{"high.go"}, batches[0].Files)
	assert.Equal(t, []string{"low.go"}, batches[1].Files)
}
