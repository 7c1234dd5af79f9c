package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ssu-rag/internal/domain"
)

// QueryCondenser rewrites a follow-up question into a standalone query using
// the prior conversation turns, so retrieval does not depend on pronouns or
// ellipsis from earlier turns. Condensation never fails: every failure mode
// degrades to the original query.
type QueryCondenser interface {
	Condense(ctx context.Context, history []domain.Turn, query string) string
}

type queryCondenser struct {
	llmClient domain.LLMClient
	maxTurns  int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewQueryCondenser creates a condenser that considers at most maxTurns of
// the most recent history and bounds the model call by timeout.
func NewQueryCondenser(llmClient domain.LLMClient, maxTurns int, timeout time.Duration, logger *slog.Logger) QueryCondenser {
	return &queryCondenser{
		llmClient: llmClient,
		maxTurns:  maxTurns,
		timeout:   timeout,
		logger:    logger,
	}
}

// Condense returns the standalone rewrite of query, or query unchanged when
// the history is empty or the model call fails. The failure classification
// (timeout, provider error, empty result) is logged but never surfaced.
func (c *queryCondenser) Condense(ctx context.Context, history []domain.Turn, query string) string {
	if len(history) == 0 {
		return query
	}

	recent := history
	if c.maxTurns > 0 && len(recent) > c.maxTurns {
		recent = recent[len(recent)-c.maxTurns:]
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rewritten, err := c.llmClient.Chat(callCtx, BuildCondenseMessages(recent, query))
	if err != nil {
		reason := "provider_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		c.logger.Warn("query_condensation_failed",
			slog.String("reason", reason),
			slog.String("error", err.Error()))
		return query
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		c.logger.Warn("query_condensation_failed", slog.String("reason", "empty_result"))
		return query
	}
	return rewritten
}
