package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"ssu-rag/internal/domain"
)

// IngestResult summarizes one feed's ingestion pass.
type IngestResult struct {
	Identifier string `json:"identifier"`
	Total      int    `json:"total"`
	New        int    `json:"new"`
	Existing   int    `json:"existing"`
	Err        string `json:"error,omitempty"`
}

// IngestSummary aggregates the per-source results of one full pass.
type IngestSummary struct {
	Results  []IngestResult `json:"results"`
	Total    int            `json:"total"`
	New      int            `json:"new"`
	Existing int            `json:"existing"`
}

// IngestFeedUsecase fetches RSS sources, deduplicates entries by content
// hash, embeds the new ones and stores them in the vector index.
type IngestFeedUsecase interface {
	ExecuteSource(ctx context.Context, source domain.FeedSource) (*IngestResult, error)
	ExecuteAll(ctx context.Context) (*IngestSummary, error)
}

type ingestFeedUsecase struct {
	feedClient  domain.FeedClient
	repo        domain.ItemRepository
	encoder     domain.VectorEncoder
	sources     []domain.FeedSource
	concurrency int
	logger      *slog.Logger
}

// NewIngestFeedUsecase wires the ingestion pipeline. concurrency bounds how
// many sources are fetched in parallel during a full pass.
func NewIngestFeedUsecase(
	feedClient domain.FeedClient,
	repo domain.ItemRepository,
	encoder domain.VectorEncoder,
	sources []domain.FeedSource,
	concurrency int,
	logger *slog.Logger,
) IngestFeedUsecase {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &ingestFeedUsecase{
		feedClient:  feedClient,
		repo:        repo,
		encoder:     encoder,
		sources:     sources,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExecuteSource ingests a single feed: fetch, dedupe by content hash, embed
// title and body, upsert. Items already present are counted but untouched.
func (u *ingestFeedUsecase) ExecuteSource(ctx context.Context, source domain.FeedSource) (*IngestResult, error) {
	items, err := u.feedClient.Fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", source.Identifier, err)
	}

	result := &IngestResult{Identifier: source.Identifier, Total: len(items)}
	for _, item := range items {
		exists, err := u.repo.ExistsByHash(ctx, item.ContentHash)
		if err != nil {
			return result, fmt.Errorf("failed to check item hash: %w", err)
		}
		if exists {
			result.Existing++
			continue
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}
		vectors, err := u.encoder.Encode(ctx, []string{item.Title, body})
		if err != nil {
			return result, fmt.Errorf("failed to embed item %q: %w", item.Title, err)
		}
		if len(vectors) != 2 {
			return result, fmt.Errorf("encoder returned %d vectors, want 2", len(vectors))
		}

		embeddings := domain.ItemEmbeddings{
			Title:   pgvector.NewVector(vectors[0]),
			Content: pgvector.NewVector(vectors[1]),
		}
		if err := u.repo.Upsert(ctx, item, embeddings); err != nil {
			return result, fmt.Errorf("failed to store item %q: %w", item.Title, err)
		}
		result.New++
	}

	u.logger.Info("feed_ingested",
		slog.String("identifier", source.Identifier),
		slog.Int("total", result.Total),
		slog.Int("new", result.New),
		slog.Int("existing", result.Existing))
	return result, nil
}

// ExecuteAll ingests every configured source with bounded concurrency.
// Per-source failures are recorded in the summary rather than aborting the
// pass, so one broken feed cannot starve the others. A pass where every
// source failed returns an error so callers can back off.
func (u *ingestFeedUsecase) ExecuteAll(ctx context.Context) (*IngestSummary, error) {
	summary := &IngestSummary{}
	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, source := range u.sources {
		g.Go(func() error {
			result, err := u.ExecuteSource(gctx, source)
			if err != nil {
				u.logger.Error("feed_ingest_failed",
					slog.String("identifier", source.Identifier),
					slog.String("error", err.Error()))
				if result == nil {
					result = &IngestResult{Identifier: source.Identifier}
				}
				result.Err = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			if result.Err != "" {
				failed++
			}
			summary.Results = append(summary.Results, *result)
			summary.Total += result.Total
			summary.New += result.New
			summary.Existing += result.Existing
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if failed > 0 && failed == len(u.sources) {
		return summary, fmt.Errorf("all %d sources failed ingestion", failed)
	}
	return summary, nil
}
