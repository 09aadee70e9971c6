package relationship_index

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"docgen/models"
)

// Embedder produces one vector per input text, in input order. The generation
// client satisfies this.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index holds embeddings for the declarations of one run and answers
// similarity queries over them. Building mutates the index; queries are
// read-only afterwards.
type Index struct {
	embedder  Embedder
	batchSize int

	nodes  []models.EmbeddedNode
	byID   map[string]int
	failed int
}

const defaultBatchSize = 32

// NewIndex creates an empty index fed by the given embedder.
func NewIndex(embedder Embedder, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Index{
		embedder:  embedder,
		batchSize: batchSize,
		byID:      make(map[string]int),
	}
}

// Build embeds the declarations in batches. A failing batch is logged and
// counted; its nodes are simply absent from the index and the remaining
// batches still proceed.
func (idx *Index) Build(ctx context.Context, nodes []models.DeclarationNode) error {
	for start := 0; start < len(nodes); start += idx.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + idx.batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		batch := nodes[start:end]

		texts := make([]string, len(batch))
		for i, node := range batch {
			texts[i] = embeddingText(node)
		}

		vectors, err := idx.embedder.Embed(ctx, texts)
		if err != nil {
			log.Printf("Warning: embedding batch of %d nodes failed: %v", len(batch), err)
			idx.failed += len(batch)
			continue
		}
		if len(vectors) != len(batch) {
			log.Printf("Warning: embedding batch returned %d vectors for %d nodes", len(vectors), len(batch))
			idx.failed += len(batch)
			continue
		}

		for i, node := range batch {
			idx.byID[node.ID] = len(idx.nodes)
			idx.nodes = append(idx.nodes, models.EmbeddedNode{
				ID:        node.ID,
				Embedding: vectors[i],
				Name:      node.Name,
				Kind:      node.Kind,
				FilePath:  node.FilePath,
			})
		}
	}
	return nil
}

// embeddingText is the canonical text embedded per declaration.
func embeddingText(node models.DeclarationNode) string {
	return fmt.Sprintf("%s %s\n%s", node.Kind, node.Name, node.Code)
}

// Embedded returns how many nodes carry a vector.
func (idx *Index) Embedded() int {
	return len(idx.nodes)
}

// Failures returns how many nodes could not be embedded.
func (idx *Index) Failures() int {
	return idx.failed
}

// EmbeddingOf returns the vector for a node, or nil when it was not embedded.
func (idx *Index) EmbeddingOf(nodeID string) []float32 {
	if i, ok := idx.byID[nodeID]; ok {
		return idx.nodes[i].Embedding
	}
	return nil
}

// Query returns the most similar declarations to the given node, excluding
// the node itself. Results below minScore are dropped; the rest are ordered
// by descending score with file-path ties resolved lexically, truncated to
// maxResults.
func (idx *Index) Query(nodeID string, minScore float64, maxResults int) []models.RelatedSymbol {
	i, ok := idx.byID[nodeID]
	if !ok || maxResults <= 0 {
		return nil
	}
	source := idx.nodes[i]

	var results []models.RelatedSymbol
	for j, candidate := range idx.nodes {
		if j == i {
			continue
		}
		score := cosineSimilarity(source.Embedding, candidate.Embedding)
		if score < minScore {
			continue
		}
		results = append(results, models.RelatedSymbol{
			ID:                candidate.ID,
			Name:              candidate.Name,
			Kind:              candidate.Kind,
			FilePath:          candidate.FilePath,
			RelationshipScore: score,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].RelationshipScore != results[b].RelationshipScore {
			return results[a].RelationshipScore > results[b].RelationshipScore
		}
		return results[a].FilePath < results[b].FilePath
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
