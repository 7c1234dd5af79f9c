package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"ssu-rag/internal/domain"
)

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository creates the pgvector-backed item store.
func NewItemRepository(pool *pgxpool.Pool) domain.ItemRepository {
	return &itemRepository{pool: pool}
}

func (r *itemRepository) Upsert(ctx context.Context, item domain.FeedItem, embeddings domain.ItemEmbeddings) error {
	query := `
		INSERT INTO rss_items (
			content_hash, title, description, content, author, category,
			published, link, guid, enclosure_url, enclosure_type, fetched_at,
			title_embedding, content_embedding
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (content_hash) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		item.ContentHash,
		item.Title,
		item.Description,
		item.Content,
		item.Author,
		item.Category,
		item.Published,
		item.Link,
		item.GUID,
		item.EnclosureURL,
		item.EnclosureType,
		item.FetchedAt,
		embeddings.Title,
		embeddings.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (r *itemRepository) ExistsByHash(ctx context.Context, contentHash string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rss_items WHERE content_hash = $1)`,
		contentHash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item hash: %w", err)
	}
	return exists, nil
}

func (r *itemRepository) SearchSimilar(ctx context.Context, query pgvector.Vector, limit int) ([]domain.RetrievedItem, error) {
	sql := `
		SELECT title, description, content, author, category, published, link,
		       content_embedding <-> $1 AS distance
		FROM rss_items
		ORDER BY distance ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows, true)
}

func (r *itemRepository) ListRecent(ctx context.Context, limit int) ([]domain.RetrievedItem, error) {
	sql := `
		SELECT title, description, content, author, category, published, link
		FROM rss_items
		ORDER BY fetched_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows, false)
}

func scanItems(rows pgx.Rows, withDistance bool) ([]domain.RetrievedItem, error) {
	items := make([]domain.RetrievedItem, 0)
	for rows.Next() {
		var item domain.RetrievedItem
		var err error
		if withDistance {
			err = rows.Scan(&item.Title, &item.Description, &item.Content,
				&item.Author, &item.Category, &item.Published, &item.Link, &item.Distance)
		} else {
			err = rows.Scan(&item.Title, &item.Description, &item.Content,
				&item.Author, &item.Category, &item.Published, &item.Link)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
