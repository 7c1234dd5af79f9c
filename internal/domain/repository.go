package domain

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// ItemEmbeddings carries the vectors computed for one feed item.
type ItemEmbeddings struct {
	Title   pgvector.Vector
	Content pgvector.Vector
}

// ItemRepository persists feed items and their embeddings in the vector store.
type ItemRepository interface {
	// Upsert inserts the item with its embeddings. An item whose content
	// hash already exists is left untouched.
	Upsert(ctx context.Context, item FeedItem, embeddings ItemEmbeddings) error
	// ExistsByHash reports whether an item with the given content hash is
	// already stored.
	ExistsByHash(ctx context.Context, contentHash string) (bool, error)
	// SearchSimilar returns up to limit items ordered by ascending distance
	// to the query vector. An empty index yields an empty slice, not an error.
	SearchSimilar(ctx context.Context, query pgvector.Vector, limit int) ([]RetrievedItem, error)
	// ListRecent returns the most recently fetched items, newest first.
	ListRecent(ctx context.Context, limit int) ([]RetrievedItem, error)
}
