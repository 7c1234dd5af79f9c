package usecase

import (
	"context"
	"errors"

	"ssu-rag/internal/domain"
)

var (
	// ErrEmptyQuery is returned when the request carries no query text.
	ErrEmptyQuery = errors.New("query is required")
	// ErrRetrievalFailed marks a request-level retrieval failure. There is
	// no silent empty-context fallback: answering ungrounded would violate
	// the context-only contract.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrGenerationFailed marks a request-level generation failure in
	// blocking mode.
	ErrGenerationFailed = errors.New("generation failed")
)

// ChatInput carries one RAG query request. SessionID is optional; when empty
// the request is stateless. History is an externally supplied transcript
// seeded into the session before condensation; callers must seed only unseen
// turns.
type ChatInput struct {
	SessionID string
	Query     string
	Limit     int
	History   []domain.Turn
}

// ChatOutput is the response envelope: fully determined by its constructing
// call, no hidden state.
type ChatOutput struct {
	Query          string                 `json:"query"`
	RephrasedQuery string                 `json:"rephrased_query"`
	Answer         string                 `json:"answer"`
	Sources        []domain.Citation      `json:"sources"`
	Items          []domain.RetrievedItem `json:"items"`
}

// ChatUsecase orchestrates one RAG request: seed history, condense the query,
// retrieve, generate, commit the exchange.
type ChatUsecase interface {
	Execute(ctx context.Context, input ChatInput) (*ChatOutput, error)
	Stream(ctx context.Context, input ChatInput) <-chan StreamEvent
}

// StreamEventKind names the discrete record types of the streaming protocol.
type StreamEventKind string

const (
	StreamEventKindMeta  StreamEventKind = "meta"
	StreamEventKindToken StreamEventKind = "token"
	StreamEventKindFinal StreamEventKind = "final"
	StreamEventKindError StreamEventKind = "error"
)

// StreamEvent is one record of a streaming response. Exactly one meta record
// precedes all tokens; exactly one final record follows them on success. An
// error record replaces the meta/final pair only for request-level failures
// that occur before any record was emitted.
type StreamEvent struct {
	Kind    StreamEventKind
	Payload interface{}
}

// StreamMeta lets a client render citations before any answer text arrives.
type StreamMeta struct {
	RephrasedQuery string            `json:"rephrased_query"`
	Sources        []domain.Citation `json:"sources"`
}
