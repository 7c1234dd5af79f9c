package domain

import "context"

// Message is one role-labeled entry in a chat transcript sent to the LLM.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMStreamChunk carries one fragment of a streaming generation.
type LLMStreamChunk struct {
	Content string
	Done    bool
}

// LLMClient defines the capability to send a chat transcript to an LLM and
// receive the completion, either as one blocking call or as an ordered
// fragment stream. ChatStream returns a chunk channel and an error channel;
// both are closed by the client when the stream ends. Cancelling the context
// closes the underlying provider call.
type LLMClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ChatStream(ctx context.Context, messages []Message) (<-chan LLMStreamChunk, <-chan error, error)
	Version() string
}
