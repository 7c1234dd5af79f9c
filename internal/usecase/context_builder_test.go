package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ssu-rag/internal/domain"
)

func TestBuildContext_NumbersItemsInOrder(t *testing.T) {
	items := []domain.RetrievedItem{
		{Title: "Admissions Notice", Author: "Office", Category: "notice", Published: "2026-03-01", Description: "Spring admissions open.", Link: "https://example.ac.kr/1"},
		{Title: "Scholarship Deadline", Author: "Fund", Category: "scholarship", Published: "2026-03-02", Description: "Apply by Friday.", Link: "https://example.ac.kr/2"},
	}

	context := BuildContext(items, AnswerSnippetLimit)

	assert.Contains(t, context, "[1] Title: Admissions Notice")
	assert.Contains(t, context, "[2] Title: Scholarship Deadline")
	assert.Contains(t, context, "Author: Office | Category: notice | Published: 2026-03-01")
	assert.Contains(t, context, "Snippet: Apply by Friday.")
	assert.Contains(t, context, "Link: https://example.ac.kr/2")

	blocks := strings.Split(context, "\n\n")
	assert.Len(t, blocks, 2, "blocks should be separated by one blank line")
	assert.True(t, strings.HasPrefix(blocks[0], "[1]"))
	assert.True(t, strings.HasPrefix(blocks[1], "[2]"))
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil, AnswerSnippetLimit))
}

func TestBuildContext_SnippetFallsBackToContent(t *testing.T) {
	items := []domain.RetrievedItem{
		{Title: "No Description", Content: "full body text", Link: "https://example.ac.kr/3"},
	}

	context := BuildContext(items, AnswerSnippetLimit)

	assert.Contains(t, context, "Snippet: full body text")
}

func TestBuildContext_TruncatesSnippetByRunes(t *testing.T) {
	long := strings.Repeat("한", 600)
	items := []domain.RetrievedItem{{Title: "Long", Description: long}}

	context := BuildContext(items, AnswerSnippetLimit)

	start := strings.Index(context, "Snippet: ") + len("Snippet: ")
	end := strings.Index(context[start:], "\n")
	snippet := context[start : start+end]
	assert.Equal(t, AnswerSnippetLimit, len([]rune(snippet)), "truncation must count runes, not bytes")
}

func TestBuildContext_MissingFieldsRenderEmpty(t *testing.T) {
	context := BuildContext([]domain.RetrievedItem{{Title: "Bare"}}, AnswerSnippetLimit)

	assert.Contains(t, context, "Author:  | Category:  | Published: ")
	assert.Contains(t, context, "Snippet: \n")
}

func TestBuildContext_Deterministic(t *testing.T) {
	items := []domain.RetrievedItem{
		{Title: "A", Description: "a"},
		{Title: "B", Description: "b"},
	}

	first := BuildContext(items, AnswerSnippetLimit)
	second := BuildContext(items, AnswerSnippetLimit)

	assert.Equal(t, first, second, "same input must yield byte-identical output")
}

func TestSummarizeSources_MatchesContextNumbering(t *testing.T) {
	items := []domain.RetrievedItem{
		{Title: "First", Link: "https://example.ac.kr/1", Distance: 0.12},
		{Title: "Second", Link: "https://example.ac.kr/2", Distance: 0.34},
	}

	sources := SummarizeSources(items)

	assert.Len(t, sources, 2)
	assert.Equal(t, 1, sources[0].Index)
	assert.Equal(t, "First", sources[0].Title)
	assert.Equal(t, 0.12, sources[0].Distance)
	assert.Equal(t, 2, sources[1].Index)
	assert.Equal(t, "Second", sources[1].Title)
}

func TestSummarizeSources_Empty(t *testing.T) {
	assert.Empty(t, SummarizeSources(nil))
}
