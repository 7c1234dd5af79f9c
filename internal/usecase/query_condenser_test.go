package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ssu-rag/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueryCondenser_EmptyHistorySkipsModelCall(t *testing.T) {
	llm := new(mockLLMClient)
	condenser := NewQueryCondenser(llm, 6, time.Second, discardLogger())

	result := condenser.Condense(context.Background(), nil, "standalone question")

	assert.Equal(t, "standalone question", result)
	llm.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestQueryCondenser_RewritesWithHistory(t *testing.T) {
	llm := new(mockLLMClient)
	llm.On("Chat", mock.Anything, mock.Anything).Return("  When is the scholarship deadline?\n", nil)
	condenser := NewQueryCondenser(llm, 6, time.Second, discardLogger())

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "Tell me about the scholarship"},
		{Role: domain.RoleAssistant, Content: "It covers tuition."},
	}
	result := condenser.Condense(context.Background(), history, "when is the deadline?")

	assert.Equal(t, "When is the scholarship deadline?", result, "result should be trimmed")
	llm.AssertExpectations(t)
}

func TestQueryCondenser_ProviderErrorFallsBack(t *testing.T) {
	llm := new(mockLLMClient)
	llm.On("Chat", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
	condenser := NewQueryCondenser(llm, 6, time.Second, discardLogger())

	history := []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}
	result := condenser.Condense(context.Background(), history, "original")

	assert.Equal(t, "original", result)
}

func TestQueryCondenser_TimeoutFallsBack(t *testing.T) {
	llm := new(mockLLMClient)
	llm.On("Chat", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)
	condenser := NewQueryCondenser(llm, 6, time.Millisecond, discardLogger())

	history := []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}
	result := condenser.Condense(context.Background(), history, "original")

	assert.Equal(t, "original", result)
}

func TestQueryCondenser_EmptyRewriteFallsBack(t *testing.T) {
	llm := new(mockLLMClient)
	llm.On("Chat", mock.Anything, mock.Anything).Return("   \n", nil)
	condenser := NewQueryCondenser(llm, 6, time.Second, discardLogger())

	history := []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}
	result := condenser.Condense(context.Background(), history, "original")

	assert.Equal(t, "original", result)
}

func TestQueryCondenser_BoundsHistoryToMaxTurns(t *testing.T) {
	llm := new(mockLLMClient)
	var captured []domain.Message
	llm.On("Chat", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		captured = messages
		return true
	})).Return("rewritten", nil)
	condenser := NewQueryCondenser(llm, 2, time.Second, discardLogger())

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "turn-1"},
		{Role: domain.RoleAssistant, Content: "turn-2"},
		{Role: domain.RoleUser, Content: "turn-3"},
		{Role: domain.RoleAssistant, Content: "turn-4"},
	}
	condenser.Condense(context.Background(), history, "q")

	transcript := captured[1].Content
	assert.NotContains(t, transcript, "turn-1")
	assert.NotContains(t, transcript, "turn-2")
	assert.Contains(t, transcript, "turn-3")
	assert.Contains(t, transcript, "turn-4")
}
