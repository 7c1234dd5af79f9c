package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ssu-rag/internal/domain"
)

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *mockLLMClient) ChatStream(ctx context.Context, messages []domain.Message) (<-chan domain.LLMStreamChunk, <-chan error, error) {
	args := m.Called(ctx, messages)
	var chunks <-chan domain.LLMStreamChunk
	if v := args.Get(0); v != nil {
		chunks = v.(<-chan domain.LLMStreamChunk)
	}
	var errs <-chan error
	if v := args.Get(1); v != nil {
		errs = v.(<-chan error)
	}
	return chunks, errs, args.Error(2)
}

func (m *mockLLMClient) Version() string {
	return "mock"
}

type mockRetriever struct {
	mock.Mock
}

func (m *mockRetriever) Search(ctx context.Context, query string, limit int) ([]domain.RetrievedItem, error) {
	args := m.Called(ctx, query, limit)
	var items []domain.RetrievedItem
	if v := args.Get(0); v != nil {
		items = v.([]domain.RetrievedItem)
	}
	return items, args.Error(1)
}

// staticCondenser returns a fixed rewrite, or the query unchanged when no
// rewrite is set. It records what it was called with.
type staticCondenser struct {
	rewrite     string
	calls       int
	lastHistory []domain.Turn
	lastQuery   string
}

func (c *staticCondenser) Condense(ctx context.Context, history []domain.Turn, query string) string {
	c.calls++
	c.lastHistory = history
	c.lastQuery = query
	if c.rewrite == "" {
		return query
	}
	return c.rewrite
}
