package retrieval

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"ssu-rag/internal/domain"
)

// VectorRetriever implements retrieval as embed-then-search against the
// pgvector index.
type VectorRetriever struct {
	encoder domain.VectorEncoder
	repo    domain.ItemRepository
}

// NewVectorRetriever composes the encoder and item store into a Retriever.
func NewVectorRetriever(encoder domain.VectorEncoder, repo domain.ItemRepository) *VectorRetriever {
	return &VectorRetriever{encoder: encoder, repo: repo}
}

// Search embeds the query and returns the nearest items by ascending
// distance. An unpopulated index yields an empty slice.
func (r *VectorRetriever) Search(ctx context.Context, query string, limit int) ([]domain.RetrievedItem, error) {
	vectors, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("encoder returned no vector for query")
	}

	items, err := r.repo.SearchSimilar(ctx, pgvector.NewVector(vectors[0]), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	return items, nil
}

var _ domain.Retriever = (*VectorRetriever)(nil)
