package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ssu-rag/internal/domain"
)

const generationTemperature = 0.7

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// ChatClient talks to Ollama's chat endpoint, blocking or streaming.
type ChatClient struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewChatClient constructs a client for the given endpoint and model name.
// httpClient should come from the shared pooled client factory.
func NewChatClient(baseURL, model string, httpClient *http.Client) *ChatClient {
	return &ChatClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  httpClient,
	}
}

// Chat sends the transcript and returns the assistant message.
func (c *ChatClient) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// ChatStream sends the transcript with streaming enabled and forwards the
// NDJSON fragments in generation order. Both returned channels are closed
// when the stream ends; cancelling the context closes the provider call.
func (c *ChatClient) ChatStream(ctx context.Context, messages []domain.Message) (<-chan domain.LLMStreamChunk, <-chan error, error) {
	resp, err := c.post(ctx, messages, true)
	if err != nil {
		return nil, nil, err
	}

	chunks := make(chan domain.LLMStreamChunk, 8)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk chatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				errs <- fmt.Errorf("failed to decode stream chunk: %w", err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case chunks <- domain.LLMStreamChunk{Content: chunk.Message.Content, Done: chunk.Done}:
			}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("stream read failed: %w", err)
		}
	}()

	return chunks, errs, nil
}

// Version returns the wrapped model name.
func (c *ChatClient) Version() string {
	return c.Model
}

func (c *ChatClient) post(ctx context.Context, messages []domain.Message, stream bool) (*http.Response, error) {
	reqBody := chatRequest{
		Model:    c.Model,
		Messages: make([]chatMessage, len(messages)),
		Stream:   stream,
		Options: map[string]interface{}{
			"temperature": generationTemperature,
		},
	}
	for i, m := range messages {
		reqBody.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat endpoint: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

var _ domain.LLMClient = (*ChatClient)(nil)
