package usecase

import (
	"context"
	"log/slog"
	"strings"
)

// Stream runs the streaming variant of one RAG request. The returned channel
// yields exactly one meta record before any token, the ordered token
// fragments, and one final record on success. A failure before the meta
// record yields a single error record; a mid-stream failure terminates the
// stream with no further records, and the fragments accumulated so far are
// still committed to the session history as a partial answer.
func (u *chatUsecase) Stream(ctx context.Context, input ChatInput) <-chan StreamEvent {
	events := make(chan StreamEvent, 4)
	go func() {
		defer close(events)

		query := strings.TrimSpace(input.Query)
		if query == "" {
			u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: ErrEmptyQuery.Error()})
			return
		}

		prepared, err := u.prepare(ctx, input, query)
		if err != nil {
			u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: err.Error()})
			return
		}

		meta := StreamMeta{
			RephrasedQuery: prepared.rephrased,
			Sources:        prepared.sources,
		}
		if !u.send(ctx, events, StreamEvent{Kind: StreamEventKindMeta, Payload: meta}) {
			return
		}

		genCtx := ctx
		if u.cfg.GenerateTimeout > 0 {
			var cancel context.CancelFunc
			genCtx, cancel = context.WithTimeout(ctx, u.cfg.GenerateTimeout)
			defer cancel()
		}

		chunkCh, errCh, err := u.llmClient.ChatStream(genCtx, BuildAnswerMessages(query, prepared.contextText, prepared.history))
		if err != nil {
			// Setup failed before any fragment: nothing to commit, but the
			// meta record is already out, so no error record follows.
			u.logger.Warn("chat_stream_setup_failed",
				slog.String("session_id", input.SessionID),
				slog.String("error", err.Error()))
			return
		}

		var builder strings.Builder
		chunkStream := chunkCh
		errStream := errCh

	drain:
		for chunkStream != nil || errStream != nil {
			select {
			case <-ctx.Done():
				// Client disconnected: stop draining; the cancelled context
				// closes the provider call. Partial text is still committed.
				u.logger.Info("chat_stream_cancelled", slog.String("session_id", input.SessionID))
				u.commitPartial(input.SessionID, query, builder.String())
				return
			case chunk, ok := <-chunkStream:
				if !ok {
					chunkStream = nil
					continue
				}
				if chunk.Content != "" {
					builder.WriteString(chunk.Content)
					if !u.send(ctx, events, StreamEvent{Kind: StreamEventKindToken, Payload: chunk.Content}) {
						u.commitPartial(input.SessionID, query, builder.String())
						return
					}
				}
				if chunk.Done {
					break drain
				}
			case streamErr, ok := <-errStream:
				if !ok {
					errStream = nil
					continue
				}
				u.logger.Warn("chat_stream_failed",
					slog.String("session_id", input.SessionID),
					slog.String("error", streamErr.Error()))
				u.commitPartial(input.SessionID, query, builder.String())
				return
			}
		}

		// The final answer is the exact concatenation of the forwarded
		// fragments, so clients can reconcile it against what they
		// accumulated. The history commit still trims via NewTurn.
		answer := builder.String()
		if input.SessionID != "" {
			u.store.AppendExchange(input.SessionID, query, answer)
		}

		u.send(ctx, events, StreamEvent{Kind: StreamEventKindFinal, Payload: &ChatOutput{
			Query:          query,
			RephrasedQuery: prepared.rephrased,
			Answer:         answer,
			Sources:        prepared.sources,
			Items:          prepared.items,
		}})
	}()

	return events
}

// commitPartial appends whatever answer text was produced before a mid-stream
// failure or disconnect, so the transcript never silently drops a turn.
func (u *chatUsecase) commitPartial(sessionID, query, partial string) {
	if sessionID == "" {
		return
	}
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return
	}
	u.store.AppendExchange(sessionID, query, partial)
}

func (u *chatUsecase) send(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}
