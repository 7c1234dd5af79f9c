package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ssu-rag/internal/domain"
)

func TestBuildAnswerMessages_Shape(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "When do classes start?"},
		{Role: domain.RoleAssistant, Content: "March 2nd [1]."},
	}

	messages := BuildAnswerMessages("What about finals?", "[1] Title: Academic Calendar", history)

	assert.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "ONLY on the provided Context")
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "When do classes start?", messages[1].Content)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "user", messages[3].Role)
	assert.Contains(t, messages[3].Content, "Question: What about finals?")
	assert.Contains(t, messages[3].Content, "Context:\n[1] Title: Academic Calendar")
}

func TestBuildAnswerMessages_NoHistory(t *testing.T) {
	messages := BuildAnswerMessages("q", "ctx", nil)

	assert.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
}

func TestBuildCondenseMessages_TranscriptRendering(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "Tell me about the scholarship"},
		{Role: domain.RoleAssistant, Content: "The merit scholarship covers tuition."},
	}

	messages := BuildCondenseMessages(history, "when is the deadline?")

	assert.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "standalone")
	assert.Contains(t, messages[1].Content, "user: Tell me about the scholarship\n")
	assert.Contains(t, messages[1].Content, "assistant: The merit scholarship covers tuition.\n")
	assert.Contains(t, messages[1].Content, "Follow-up question: when is the deadline?")
}

func TestBuildCondenseMessages_TruncatesLongTurns(t *testing.T) {
	long := strings.Repeat("가", CondenseSnippetLimit+200)
	history := []domain.Turn{
		{Role: domain.RoleAssistant, Content: long},
	}

	messages := BuildCondenseMessages(history, "and the deadline?")

	want := "assistant: " + strings.Repeat("가", CondenseSnippetLimit) + "\n"
	assert.Contains(t, messages[1].Content, want)
	assert.NotContains(t, messages[1].Content, strings.Repeat("가", CondenseSnippetLimit+1))
}
