package merge_engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/config"
	"docgen/models"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		hasExisting bool
		overwrite   bool
		merge       bool
		want        Action
	}{
		{false, false, false, ActionInsert},
		{false, true, false, ActionInsert},
		{false, false, true, ActionInsert},
		{true, true, false, ActionReplace},
		{true, false, true, ActionMerge},
		{true, false, false, ActionSkip},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Decide(c.hasExisting, c.overwrite, c.merge),
			"hasExisting=%v overwrite=%v merge=%v", c.hasExisting, c.overwrite, c.merge)
	}
}

func TestMergeDocsDeduplicatesTags(t *testing.T) {
	existing := "/**\n * Does the thing.\n * @param x the input\n */"
	generated := "/**\n * Does the thing carefully.\n * @param x the validated input\n * @return the result\n */"

	merged := MergeDocs(existing, generated)

	assert.Equal(t, 1, strings.Count(merged, "@param x"))
	assert.Equal(t, 1, strings.Count(merged, "@return"))
	assert.Contains(t, merged, "Does the thing.")
	assert.Contains(t, merged, "the input")
	assert.NotContains(t, merged, "the validated input")
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const bareSource = `package demo

func Run() {
	work()
}
`

func TestApplyFileInsertsDoc(t *testing.T) {
	path := writeSource(t, bareSource)
	engine := NewEngine(config.MergeConfig{})

	node := models.DeclarationNode{Name: "Run", StartLine: 3, HasDoc: false}
	result, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: "// Run executes the work loop."}})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.LinesAdded)
	assert.Equal(t, 0, result.LinesRemoved)
	assert.Equal(t, 1, result.Applied)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "// Run executes the work loop.\nfunc Run() {")
}

const documentedSource = `package demo

// Run is old.
func Run() {
	work()
}
`

func TestApplyFileReplaceAndSkip(t *testing.T) {
	node := models.DeclarationNode{Name: "Run", StartLine: 4, HasDoc: true, DocComment: "// Run is old.", DocStartLine: 3}

	t.Run("overwrite replaces", func(t *testing.T) {
		path := writeSource(t, documentedSource)
		engine := NewEngine(config.MergeConfig{Overwrite: true})

		result, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: "// Run is new.\n// It loops."}})
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, 2, result.LinesAdded)
		assert.Equal(t, 1, result.LinesRemoved)

		content, _ := os.ReadFile(path)
		assert.Contains(t, string(content), "// Run is new.\n// It loops.\nfunc Run() {")
		assert.NotContains(t, string(content), "// Run is old.")
	})

	t.Run("no flags skips", func(t *testing.T) {
		path := writeSource(t, documentedSource)
		engine := NewEngine(config.MergeConfig{})

		result, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: "// Run is new."}})
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, 1, result.Skipped)

		content, _ := os.ReadFile(path)
		assert.Equal(t, documentedSource, string(content))
	})
}

func TestApplyFileDryRunTouchesNothing(t *testing.T) {
	path := writeSource(t, bareSource)
	engine := NewEngine(config.MergeConfig{DryRun: true})

	node := models.DeclarationNode{Name: "Run", StartLine: 3, HasDoc: false}
	result, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: "// Run executes the work loop."}})
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.LinesAdded)

	content, _ := os.ReadFile(path)
	assert.Equal(t, bareSource, string(content))
}

const twoFuncSource = `package demo

func First() {}

func Second() {}
`

func TestApplyFileMultipleEditsKeepLineNumbersValid(t *testing.T) {
	path := writeSource(t, twoFuncSource)
	engine := NewEngine(config.MergeConfig{})

	edits := []Edit{
		{Node: models.DeclarationNode{Name: "First", StartLine: 3}, Doc: "// First does nothing."},
		{Node: models.DeclarationNode{Name: "Second", StartLine: 5}, Doc: "// Second does nothing."},
	}
	result, err := engine.ApplyFile(path, edits)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "// First does nothing.\nfunc First() {}")
	assert.Contains(t, string(content), "// Second does nothing.\nfunc Second() {}")
}

func TestApplyFileInsertsPythonDocstringInBody(t *testing.T) {
	src := "def run(\n    count,\n):\n    return count\n"
	path := filepath.Join(t.TempDir(), "run.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	engine := NewEngine(config.MergeConfig{})
	node := models.DeclarationNode{Name: "run", Language: "python", StartLine: 1, EndLine: 4, Indent: ""}
	_, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: `"""Return the count."""`}})
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "):\n    \"\"\"Return the count.\"\"\"\n    return count")
}

func TestApplyFileReplacesPythonDocstring(t *testing.T) {
	src := "def run(count):\n    \"\"\"Old words.\"\"\"\n    return count\n"
	path := filepath.Join(t.TempDir(), "run.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	engine := NewEngine(config.MergeConfig{Overwrite: true})
	node := models.DeclarationNode{
		Name: "run", Language: "python", StartLine: 1, EndLine: 3, Indent: "",
		HasDoc: true, DocComment: `"""Old words."""`, DocStartLine: 2,
	}
	_, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: `"""Return the count."""`}})
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "def run(count):\n    \"\"\"Return the count.\"\"\"\n    return count")
	assert.NotContains(t, string(content), "Old words")
}

func TestApplyFileRespectsIndent(t *testing.T) {
	src := "class Box:\n    def size(self):\n        return 1\n"
	path := filepath.Join(t.TempDir(), "box.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	engine := NewEngine(config.MergeConfig{})
	node := models.DeclarationNode{Name: "size", StartLine: 2, Indent: "    "}
	_, err := engine.ApplyFile(path, []Edit{{Node: node, Doc: "# Returns the size."}})
	require.NoError(t, err)

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "    # Returns the size.\n    def size(self):")
}
