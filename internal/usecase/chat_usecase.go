package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"ssu-rag/internal/domain"
	"ssu-rag/internal/session"
)

// ChatConfig holds the tunables of the chat orchestration.
type ChatConfig struct {
	DefaultLimit    int
	RetrieveTimeout time.Duration
	GenerateTimeout time.Duration
	CacheSize       int
	CacheTTL        time.Duration
}

type chatUsecase struct {
	store     *session.Store
	condenser QueryCondenser
	retriever domain.Retriever
	llmClient domain.LLMClient
	cache     *expirable.LRU[string, *ChatOutput]
	cfg       ChatConfig
	logger    *slog.Logger
}

// NewChatUsecase wires together the components that serve one RAG request.
// Session-free requests are cached in an expirable LRU; session-bound
// requests never are, since their answers depend on conversational state.
func NewChatUsecase(
	store *session.Store,
	condenser QueryCondenser,
	retriever domain.Retriever,
	llmClient domain.LLMClient,
	cfg ChatConfig,
	logger *slog.Logger,
) ChatUsecase {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	var cache *expirable.LRU[string, *ChatOutput]
	if cfg.CacheSize > 0 {
		cache = expirable.NewLRU[string, *ChatOutput](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return &chatUsecase{
		store:     store,
		condenser: condenser,
		retriever: retriever,
		llmClient: llmClient,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// Execute runs the blocking variant: seed, condense, retrieve, generate,
// commit, return. Retrieval uses the condensed query; generation and the
// committed exchange use the original query so the persisted transcript stays
// faithful to what the user actually asked.
func (u *chatUsecase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	requestID := uuid.NewString()
	hasSession := input.SessionID != ""

	if !hasSession && u.cache != nil {
		if cached, ok := u.cache.Get(u.cacheKey(query, input.Limit)); ok {
			u.logger.Info("chat_cache_hit", slog.String("request_id", requestID))
			return cached, nil
		}
	}

	prepared, err := u.prepare(ctx, input, query)
	if err != nil {
		return nil, err
	}

	answer, err := u.generate(ctx, query, prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if hasSession {
		u.store.AppendExchange(input.SessionID, query, answer)
	}

	output := &ChatOutput{
		Query:          query,
		RephrasedQuery: prepared.rephrased,
		Answer:         answer,
		Sources:        prepared.sources,
		Items:          prepared.items,
	}

	if !hasSession && u.cache != nil {
		u.cache.Add(u.cacheKey(query, input.Limit), output)
	}

	u.logger.Info("chat_completed",
		slog.String("request_id", requestID),
		slog.String("session_id", input.SessionID),
		slog.Int("item_count", len(prepared.items)),
		slog.Bool("rephrased", prepared.rephrased != query))
	return output, nil
}

// preparedRequest is the state carried from the seeding/condensing/retrieving
// phases into generation and commitment.
type preparedRequest struct {
	rephrased   string
	items       []domain.RetrievedItem
	sources     []domain.Citation
	contextText string
	history     []domain.Turn
}

func (u *chatUsecase) prepare(ctx context.Context, input ChatInput, query string) (*preparedRequest, error) {
	hasSession := input.SessionID != ""

	if hasSession && len(input.History) > 0 {
		u.store.Seed(input.SessionID, input.History)
	}

	var history []domain.Turn
	if hasSession {
		history = u.store.Snapshot(input.SessionID)
	}

	rephrased := query
	if hasSession {
		rephrased = u.condenser.Condense(ctx, history, query)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = u.cfg.DefaultLimit
	}

	retrieveCtx := ctx
	if u.cfg.RetrieveTimeout > 0 {
		var cancel context.CancelFunc
		retrieveCtx, cancel = context.WithTimeout(ctx, u.cfg.RetrieveTimeout)
		defer cancel()
	}
	items, err := u.retriever.Search(retrieveCtx, rephrased, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	return &preparedRequest{
		rephrased:   rephrased,
		items:       items,
		sources:     SummarizeSources(items),
		contextText: BuildContext(items, AnswerSnippetLimit),
		history:     history,
	}, nil
}

func (u *chatUsecase) generate(ctx context.Context, query string, prepared *preparedRequest) (string, error) {
	genCtx := ctx
	if u.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, u.cfg.GenerateTimeout)
		defer cancel()
	}
	answer, err := u.llmClient.Chat(genCtx, BuildAnswerMessages(query, prepared.contextText, prepared.history))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (u *chatUsecase) cacheKey(query string, limit int) string {
	if limit <= 0 {
		limit = u.cfg.DefaultLimit
	}
	return fmt.Sprintf("%d:%s", limit, query)
}
