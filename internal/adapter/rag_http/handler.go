package rag_http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ssu-rag/internal/domain"
	"ssu-rag/internal/infra/logger"
	"ssu-rag/internal/usecase"
)

// Handler exposes the RAG query operations and the ingestion triggers over
// HTTP.
type Handler struct {
	chatUsecase   usecase.ChatUsecase
	ingestUsecase usecase.IngestFeedUsecase
	itemRepo      domain.ItemRepository
	sources       []domain.FeedSource
	ctxLogger     *logger.ContextLogger
}

func NewHandler(
	chatUsecase usecase.ChatUsecase,
	ingestUsecase usecase.IngestFeedUsecase,
	itemRepo domain.ItemRepository,
	sources []domain.FeedSource,
) *Handler {
	return &Handler{
		chatUsecase:   chatUsecase,
		ingestUsecase: ingestUsecase,
		itemRepo:      itemRepo,
		sources:       sources,
		ctxLogger:     logger.NewContextLogger("ssu-rag"),
	}
}

// requestContext tags the request context with correlation IDs so every log
// line downstream carries them.
func (h *Handler) requestContext(ctx context.Context, sessionID string) context.Context {
	ctx = logger.WithRequestID(ctx, uuid.NewString())
	if sessionID != "" {
		ctx = logger.WithSessionID(ctx, sessionID)
	}
	return ctx
}

// Register wires the handler's routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/rag/query", h.Query)
	e.POST("/v1/rag/query/stream", h.QueryStream)
	e.POST("/internal/rss/fetch", h.FetchFeeds)
	e.GET("/v1/rss/items/recent", h.RecentItems)
}

type historyEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type queryRequest struct {
	Query     string         `json:"query"`
	SessionID string         `json:"session_id"`
	Limit     int            `json:"limit"`
	History   []historyEntry `json:"history"`
}

func (r queryRequest) toInput() usecase.ChatInput {
	input := usecase.ChatInput{
		SessionID: r.SessionID,
		Query:     r.Query,
		Limit:     r.Limit,
	}
	for _, entry := range r.History {
		input.History = append(input.History, domain.Turn{
			Role:    domain.Role(entry.Role),
			Content: entry.Content,
		})
	}
	return input
}

// Query answers a query in one blocking call.
// (POST /v1/rag/query)
func (h *Handler) Query(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	reqCtx := h.requestContext(ctx.Request().Context(), req.SessionID)
	h.ctxLogger.WithContext(reqCtx).Info("rag_query_received", "stream", false)

	output, err := h.chatUsecase.Execute(reqCtx, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyQuery):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, usecase.ErrRetrievalFailed), errors.Is(err, usecase.ErrGenerationFailed):
			return ctx.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		default:
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return ctx.JSON(http.StatusOK, output)
}

// streamRecord is the wire form of one streaming protocol record.
type streamRecord struct {
	Type           string                 `json:"type"`
	RephrasedQuery string                 `json:"rephrased_query,omitempty"`
	Sources        []domain.Citation      `json:"sources,omitempty"`
	Content        string                 `json:"content,omitempty"`
	Answer         string                 `json:"answer,omitempty"`
	Items          []domain.RetrievedItem `json:"items,omitempty"`
	Message        string                 `json:"message,omitempty"`
}

// QueryStream answers a query as Server-Sent Events: one meta record, ordered
// token records, then one final record. A request-level failure before any
// record produces a single error record.
// (POST /v1/rag/query/stream)
func (h *Handler) QueryStream(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	ctx.Response().Header().Set("Cache-Control", "no-cache")
	ctx.Response().Header().Set("Connection", "keep-alive")
	ctx.Response().WriteHeader(http.StatusOK)

	flusher, canFlush := ctx.Response().Writer.(http.Flusher)

	reqCtx := h.requestContext(ctx.Request().Context(), req.SessionID)
	h.ctxLogger.WithContext(reqCtx).Info("rag_query_received", "stream", true)

	events := h.chatUsecase.Stream(reqCtx, req.toInput())
	for event := range events {
		record, ok := toStreamRecord(event)
		if !ok {
			continue
		}
		payload, err := json.Marshal(record)
		if err != nil {
			continue
		}
		if _, err := ctx.Response().Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			// Client went away; the request context cancellation stops the
			// usecase from producing further events.
			return nil
		}
		if canFlush {
			flusher.Flush()
		}
	}
	return nil
}

func toStreamRecord(event usecase.StreamEvent) (streamRecord, bool) {
	switch event.Kind {
	case usecase.StreamEventKindMeta:
		meta, ok := event.Payload.(usecase.StreamMeta)
		if !ok {
			return streamRecord{}, false
		}
		return streamRecord{
			Type:           "meta",
			RephrasedQuery: meta.RephrasedQuery,
			Sources:        meta.Sources,
		}, true
	case usecase.StreamEventKindToken:
		content, ok := event.Payload.(string)
		if !ok {
			return streamRecord{}, false
		}
		return streamRecord{Type: "token", Content: content}, true
	case usecase.StreamEventKindFinal:
		output, ok := event.Payload.(*usecase.ChatOutput)
		if !ok {
			return streamRecord{}, false
		}
		return streamRecord{
			Type:           "final",
			Answer:         output.Answer,
			RephrasedQuery: output.RephrasedQuery,
			Sources:        output.Sources,
			Items:          output.Items,
		}, true
	case usecase.StreamEventKindError:
		message, ok := event.Payload.(string)
		if !ok {
			return streamRecord{}, false
		}
		return streamRecord{Type: "error", Message: message}, true
	default:
		return streamRecord{}, false
	}
}

// FetchFeeds triggers an ingestion pass, for all sources or the one named by
// the source query parameter.
// (POST /internal/rss/fetch)
func (h *Handler) FetchFeeds(ctx echo.Context) error {
	identifier := ctx.QueryParam("source")
	if identifier == "" {
		summary, err := h.ingestUsecase.ExecuteAll(ctx.Request().Context())
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return ctx.JSON(http.StatusOK, summary)
	}

	for _, source := range h.sources {
		if source.Identifier == identifier {
			result, err := h.ingestUsecase.ExecuteSource(ctx.Request().Context(), source)
			if err != nil {
				return ctx.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
			}
			return ctx.JSON(http.StatusOK, result)
		}
	}
	return ctx.JSON(http.StatusNotFound, map[string]string{"error": "unknown source: " + identifier})
}

// RecentItems returns the most recently fetched items, newest first.
// (GET /v1/rss/items/recent)
func (h *Handler) RecentItems(ctx echo.Context) error {
	count := 10
	if raw := ctx.QueryParam("count"); raw != "" {
		if err := echo.QueryParamsBinder(ctx).Int("count", &count).BindError(); err != nil || count <= 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid count"})
		}
	}

	items, err := h.itemRepo.ListRecent(ctx.Request().Context(), count)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]interface{}{"items": items})
}
