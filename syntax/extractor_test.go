package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/models"
)

const goSource = `package sample

import "fmt"

// Greeter holds a greeting prefix.
type Greeter struct {
	prefix string
}

// Greet prints a greeting.
// The prefix is prepended.
func (g *Greeter) Greet(name string) {
	fmt.Println(g.prefix + name)
}

func helper(x int) int {
	return x * 2
}
`

func TestExtractGoDeclarations(t *testing.T) {
	extractor := NewExtractor()
	nodes, err := extractor.Extract(context.Background(), "sample.go", []byte(goSource))
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	byName := make(map[string]models.DeclarationNode)
	for _, n := range nodes {
		byName[n.Name] = n
	}

	greeter := byName["Greeter"]
	assert.Equal(t, models.NodeKindType, greeter.Kind)
	assert.True(t, greeter.HasDoc)
	assert.Equal(t, "// Greeter holds a greeting prefix.", greeter.DocComment)
	assert.Equal(t, 5, greeter.DocStartLine)

	greet := byName["Greet"]
	assert.Equal(t, models.NodeKindMethod, greet.Kind)
	assert.True(t, greet.HasDoc)
	assert.Contains(t, greet.DocComment, "Greet prints a greeting.")
	assert.Contains(t, greet.DocComment, "The prefix is prepended.")
	assert.Equal(t, "func (g *Greeter) Greet(name string)", greet.Signature)

	helper := byName["helper"]
	assert.Equal(t, models.NodeKindFunction, helper.Kind)
	assert.False(t, helper.HasDoc)
	assert.Empty(t, helper.DocComment)
}

func TestExtractGoBlankLineBreaksDocBlock(t *testing.T) {
	src := `package sample

// unrelated commentary

func orphan() {}
`
	extractor := NewExtractor()
	nodes, err := extractor.Extract(context.Background(), "sample.go", []byte(src))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.False(t, nodes[0].HasDoc)
}

const pythonSource = `class Parser:
    """Parses things."""

    def parse(self, text):
        """Parse text into tokens."""
        return text.split()

    def _reset(self):
        self.state = None


@lru_cache
def cached_helper(x):
    return x
`

func TestExtractPythonDocstrings(t *testing.T) {
	extractor := NewExtractor()
	nodes, err := extractor.Extract(context.Background(), "sample.py", []byte(pythonSource))
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	byName := make(map[string]models.DeclarationNode)
	for _, n := range nodes {
		byName[n.Name] = n
	}

	parser := byName["Parser"]
	assert.Equal(t, models.NodeKindClass, parser.Kind)
	assert.True(t, parser.HasDoc)
	assert.Equal(t, `"""Parses things."""`, parser.DocComment)

	parse := byName["parse"]
	assert.Equal(t, models.NodeKindMethod, parse.Kind)
	assert.True(t, parse.HasDoc)
	assert.Equal(t, "    ", parse.Indent)

	reset := byName["_reset"]
	assert.False(t, reset.HasDoc)

	cached := byName["cached_helper"]
	assert.Equal(t, models.NodeKindFunction, cached.Kind)
	assert.False(t, cached.HasDoc)
	assert.Contains(t, cached.Code, "@lru_cache")
}

const typescriptSource = `/** A point in 2D space. */
export interface Point {
  x: number;
  y: number;
}

export class Grid {
  /** Returns the cell at the point. */
  cellAt(p: Point): string {
    return this.cells[p.y][p.x];
  }
}
`

func TestExtractTypeScriptDeclarations(t *testing.T) {
	extractor := NewExtractor()
	nodes, err := extractor.Extract(context.Background(), "grid.ts", []byte(typescriptSource))
	require.NoError(t, err)

	byName := make(map[string]models.DeclarationNode)
	for _, n := range nodes {
		byName[n.Name] = n
	}

	point, ok := byName["Point"]
	require.True(t, ok)
	assert.Equal(t, models.NodeKindInterface, point.Kind)
	assert.True(t, point.HasDoc)

	cellAt, ok := byName["cellAt"]
	require.True(t, ok)
	assert.Equal(t, models.NodeKindMethod, cellAt.Kind)
	assert.True(t, cellAt.HasDoc)

	grid, ok := byName["Grid"]
	require.True(t, ok)
	assert.Equal(t, models.NodeKindClass, grid.Kind)
}

func TestImportsGo(t *testing.T) {
	src := `package sample

import (
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
)
`
	extractor := NewExtractor()
	imports, err := extractor.Imports(context.Background(), "sample.go", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{`"fmt"`, `"os"`, `sitter "github.com/smacker/go-tree-sitter"`}, imports)
}

func TestImportsPython(t *testing.T) {
	src := `import os
from pathlib import Path


def main():
    pass
`
	extractor := NewExtractor()
	imports, err := extractor.Imports(context.Background(), "sample.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"import os", "from pathlib import Path"}, imports)
}

func TestImportsUnsupportedLanguage(t *testing.T) {
	extractor := NewExtractor()
	imports, err := extractor.Imports(context.Background(), "notes.txt", []byte("hello"))
	assert.NoError(t, err)
	assert.Nil(t, imports)
}

func TestExtractUnsupportedLanguage(t *testing.T) {
	extractor := NewExtractor()
	nodes, err := extractor.Extract(context.Background(), "notes.txt", []byte("hello"))
	assert.NoError(t, err)
	assert.Nil(t, nodes)
	assert.False(t, extractor.Supported("notes.txt"))
	assert.True(t, extractor.Supported("main.go"))
	assert.Equal(t, "go", extractor.LanguageOf("main.go"))
}
