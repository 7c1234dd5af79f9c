package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ssu-rag/internal/adapter/feed"
	"ssu-rag/internal/adapter/ollama"
	rag_http "ssu-rag/internal/adapter/rag_http"
	"ssu-rag/internal/adapter/repository"
	"ssu-rag/internal/adapter/retrieval"
	"ssu-rag/internal/domain"
	"ssu-rag/internal/infra/config"
	"ssu-rag/internal/infra/httpclient"
	"ssu-rag/internal/infra/ratelimit"
	"ssu-rag/internal/session"
	"ssu-rag/internal/usecase"
	"ssu-rag/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	ItemRepo domain.ItemRepository

	// Usecases
	ChatUsecase   usecase.ChatUsecase
	IngestUsecase usecase.IngestFeedUsecase

	// Session state
	Sessions *session.Store

	// Worker
	Scheduler *worker.FeedScheduler

	// Handler
	Handler *rag_http.Handler

	// Feed sources as configured
	Sources []domain.FeedSource
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	// Repositories
	itemRepo := repository.NewItemRepository(pool)

	// Shared HTTP clients with connection pooling
	chatHTTP := httpclient.NewPooledClient(cfg.RAG.GenerateTimeout + 30*time.Second)
	embedHTTP := httpclient.NewPooledClient(60 * time.Second)
	feedHTTP := httpclient.NewPooledClient(30 * time.Second)

	// External clients
	chatClient := ollama.NewChatClient(cfg.Ollama.URL, cfg.Ollama.ChatModel, chatHTTP)
	embedder := ollama.NewEmbedder(cfg.Ollama.URL, cfg.Ollama.EmbedModel, embedHTTP)

	// Feed ingestion
	hasher := domain.NewSourceHashPolicy()
	limiter := ratelimit.NewHostRateLimiter(cfg.Feed.HostRateInterval)
	feedClient := feed.NewClient(feedHTTP, hasher, limiter)

	sources := make([]domain.FeedSource, 0, len(cfg.Feed.Sources))
	for _, src := range cfg.Feed.Sources {
		sources = append(sources, domain.FeedSource{Identifier: src.Identifier, URL: src.URL})
	}

	ingestUsecase := usecase.NewIngestFeedUsecase(
		feedClient, itemRepo, embedder, sources, cfg.Scheduler.Concurrency, log,
	)

	// Conversation state and query pipeline
	var sessionOpts []session.Option
	if cfg.Session.MaxTurns > 0 {
		sessionOpts = append(sessionOpts, session.WithMaxTurns(cfg.Session.MaxTurns))
	}
	sessions := session.NewStore(sessionOpts...)

	condenser := usecase.NewQueryCondenser(chatClient, cfg.RAG.CondenseMaxTurns, cfg.RAG.CondenseTimeout, log)
	retriever := retrieval.NewVectorRetriever(embedder, itemRepo)

	chatUsecase := usecase.NewChatUsecase(sessions, condenser, retriever, chatClient,
		usecase.ChatConfig{
			DefaultLimit:    cfg.RAG.DefaultLimit,
			RetrieveTimeout: cfg.RAG.RetrieveTimeout,
			GenerateTimeout: cfg.RAG.GenerateTimeout,
			CacheSize:       cfg.Cache.Size,
			CacheTTL:        cfg.Cache.TTL,
		},
		log,
	)

	// Worker
	scheduler := worker.NewFeedScheduler(ingestUsecase, cfg.Scheduler.Interval, log)

	handler := rag_http.NewHandler(chatUsecase, ingestUsecase, itemRepo, sources)

	return &ApplicationComponents{
		ItemRepo:      itemRepo,
		ChatUsecase:   chatUsecase,
		IngestUsecase: ingestUsecase,
		Sessions:      sessions,
		Scheduler:     scheduler,
		Handler:       handler,
		Sources:       sources,
	}
}
