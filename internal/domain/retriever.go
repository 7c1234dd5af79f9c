package domain

import "context"

// Retriever defines the capability to find indexed items similar to a query.
// Results are ordered by ascending distance (best match first). A retriever
// may return fewer than limit items, and returns an empty slice, never an
// error, when the index holds nothing.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]RetrievedItem, error)
}
