package usecase

import (
	"fmt"
	"strings"

	"ssu-rag/internal/domain"
)

// AnswerSnippetLimit caps how many runes of each document make it into the
// answer context block. CondenseSnippetLimit is the tighter cap used when
// rendering text that only supports query condensation, where full snippets
// would bloat the rewrite prompt without improving it.
const (
	AnswerSnippetLimit   = 500
	CondenseSnippetLimit = 300
)

// BuildContext renders the retrieved items as a citation-numbered text block.
// Each item becomes one block, numbered 1..N in input order; blocks are
// separated by a blank line. The snippet prefers the description and falls
// back to the content, truncated to snippetLimit runes. Missing fields render
// as empty strings. Pure and deterministic.
func BuildContext(items []domain.RetrievedItem, snippetLimit int) string {
	blocks := make([]string, 0, len(items))
	for i, item := range items {
		snippet := item.Description
		if snippet == "" {
			snippet = item.Content
		}
		snippet = truncateRunes(snippet, snippetLimit)

		blocks = append(blocks, fmt.Sprintf(
			"[%d] Title: %s\nAuthor: %s | Category: %s | Published: %s\nSnippet: %s\nLink: %s",
			i+1, item.Title, item.Author, item.Category, item.Published, snippet, item.Link,
		))
	}
	return strings.Join(blocks, "\n\n")
}

// SummarizeSources derives the ordered citation records for the retrieved
// items. Index assignment is positional and matches BuildContext's numbering
// exactly, since the answer text references these indices inline.
func SummarizeSources(items []domain.RetrievedItem) []domain.Citation {
	sources := make([]domain.Citation, 0, len(items))
	for i, item := range items {
		sources = append(sources, domain.Citation{
			Index:     i + 1,
			Title:     item.Title,
			Link:      item.Link,
			Author:    item.Author,
			Category:  item.Category,
			Published: item.Published,
			Distance:  item.Distance,
		})
	}
	return sources
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
