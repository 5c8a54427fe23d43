// Package retriever answers "which indexed units are closest to this
// question" by embedding the question and searching the vector index.
package retriever

import (
	"context"
	"fmt"

	"docqa/internal/domain"
)

// DefaultTopK is the result count used when the caller passes none.
const DefaultTopK = 6

// Retriever reads the index; it never mutates it.
type Retriever struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	topK     int
}

// New creates a retriever. topK <= 0 falls back to DefaultTopK.
func New(embedder domain.Embedder, index domain.VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve embeds the question with the same model used at build time and
// returns up to k units in ascending distance order. An index holding
// fewer than k vectors returns them all, never an error.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = r.topK
	}
	vectors, err := r.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query vector, got %d", len(vectors))
	}
	results, err := r.index.Search(vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
