package relationship_index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/models"
)

// stubEmbedder returns canned vectors keyed by input text prefix, or fails on
// chosen calls.
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  map[int]bool
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	call := s.calls
	s.calls++
	if s.failOn[call] {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func declNode(id, name, file string) models.DeclarationNode {
	return models.DeclarationNode{
		ID:       id,
		Name:     name,
		Kind:     models.NodeKindFunction,
		Code:     "func " + name + "() {}",
		FilePath: file,
	}
}

func textFor(node models.DeclarationNode) string {
	return embeddingText(node)
}

func TestQueryFiltersByMinScore(t *testing.T) {
	source := declNode("s", "Source", "s.go")
	strong := declNode("a", "Strong", "a.go")
	weak := declNode("b", "Weak", "b.go")

	embedder := &stubEmbedder{vectors: map[string][]float32{
		textFor(source): {1, 0, 0},
		textFor(strong): {0.9, 0.4359, 0}, // cos ≈ 0.90
		textFor(weak):   {0.6, 0.8, 0},    // cos = 0.60
	}}
	idx := NewIndex(embedder, 10)
	require.NoError(t, idx.Build(context.Background(), []models.DeclarationNode{source, strong, weak}))

	results := idx.Query("s", 0.7, 5)

	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 0.90, results[0].RelationshipScore, 0.01)
}

func TestQueryOrdersByScoreThenPath(t *testing.T) {
	source := declNode("s", "Source", "s.go")
	first := declNode("x", "First", "aaa.go")
	second := declNode("y", "Second", "zzz.go")

	// identical vectors tie on score; aaa.go must sort before zzz.go
	embedder := &stubEmbedder{vectors: map[string][]float32{
		textFor(source): {1, 0, 0},
		textFor(first):  {1, 0, 0},
		textFor(second): {1, 0, 0},
	}}
	idx := NewIndex(embedder, 10)
	require.NoError(t, idx.Build(context.Background(), []models.DeclarationNode{source, second, first}))

	results := idx.Query("s", 0.5, 5)

	require.Len(t, results, 2)
	assert.Equal(t, "aaa.go", results[0].FilePath)
	assert.Equal(t, "zzz.go", results[1].FilePath)
}

func TestQueryTruncatesToMaxResults(t *testing.T) {
	nodes := []models.DeclarationNode{declNode("s", "Source", "s.go")}
	vectors := map[string][]float32{textFor(nodes[0]): {1, 0, 0}}
	for _, id := range []string{"a", "b", "c", "d"} {
		n := declNode(id, "N"+id, id+".go")
		nodes = append(nodes, n)
		vectors[textFor(n)] = []float32{1, 0, 0}
	}
	idx := NewIndex(&stubEmbedder{vectors: vectors}, 10)
	require.NoError(t, idx.Build(context.Background(), nodes))

	results := idx.Query("s", 0.0, 2)
	assert.Len(t, results, 2)
}

func TestQueryExcludesSelfAndUnknown(t *testing.T) {
	source := declNode("s", "Source", "s.go")
	idx := NewIndex(&stubEmbedder{vectors: map[string][]float32{textFor(source): {1, 0, 0}}}, 10)
	require.NoError(t, idx.Build(context.Background(), []models.DeclarationNode{source}))

	assert.Empty(t, idx.Query("s", 0.0, 5))
	assert.Nil(t, idx.Query("missing", 0.0, 5))
}

func TestBuildContinuesPastFailedBatch(t *testing.T) {
	var nodes []models.DeclarationNode
	for _, id := range []string{"a", "b", "c", "d"} {
		nodes = append(nodes, declNode(id, "N"+id, id+".go"))
	}

	// batch size 2: first batch fails, second succeeds
	embedder := &stubEmbedder{vectors: map[string][]float32{}, failOn: map[int]bool{0: true}}
	idx := NewIndex(embedder, 2)
	require.NoError(t, idx.Build(context.Background(), nodes))

	assert.Equal(t, 2, idx.Embedded())
	assert.Equal(t, 2, idx.Failures())
	assert.Nil(t, idx.EmbeddingOf("a"))
	assert.NotNil(t, idx.EmbeddingOf("c"))
}
