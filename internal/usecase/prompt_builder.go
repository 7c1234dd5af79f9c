package usecase

import (
	"fmt"
	"strings"

	"ssu-rag/internal/domain"
)

const answerSystemInstruction = "You are an assistant that answers questions based ONLY on the provided Context. " +
	"Answer concisely and accurately. If the Context does not contain the information needed, say \"I don't know\" instead of guessing. " +
	"You MUST cite your evidence inline using the bracketed numbers of the Context items ([1], [2], ...). " +
	"Do not put links in the answer body; the system attaches the source list separately."

const condenseSystemInstruction = "Given the conversation transcript, rewrite the follow-up question into a " +
	"self-contained standalone question that preserves its meaning. Resolve pronouns and elided references using " +
	"the transcript. Output only the rewritten question, with no preamble."

// BuildAnswerMessages composes the chat transcript for answer generation:
// the grounding system instruction, the prior conversation turns, and the
// user message carrying the original question plus the context block.
func BuildAnswerMessages(query, context string, history []domain.Turn) []domain.Message {
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: "system", Content: answerSystemInstruction})
	for _, turn := range history {
		messages = append(messages, domain.Message{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, domain.Message{
		Role:    "user",
		Content: fmt.Sprintf("Question: %s\n\nContext:\n%s", query, context),
	})
	return messages
}

// BuildCondenseMessages composes the single completion call that rewrites a
// follow-up question into a standalone one given the prior turns. Each turn's
// content is capped at CondenseSnippetLimit runes; the transcript only needs
// to carry enough of each turn to resolve references.
func BuildCondenseMessages(history []domain.Turn, query string) []domain.Message {
	var sb strings.Builder
	for _, turn := range history {
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(truncateRunes(turn.Content, CondenseSnippetLimit))
		sb.WriteString("\n")
	}

	return []domain.Message{
		{Role: "system", Content: condenseSystemInstruction},
		{Role: "user", Content: fmt.Sprintf("Transcript:\n%s\nFollow-up question: %s", sb.String(), query)},
	}
}
