package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ssu-rag/internal/domain"
	"ssu-rag/internal/usecase"
)

type countingIngest struct {
	calls atomic.Int64
	err   error
}

func (c *countingIngest) ExecuteSource(ctx context.Context, source domain.FeedSource) (*usecase.IngestResult, error) {
	return &usecase.IngestResult{}, nil
}

func (c *countingIngest) ExecuteAll(ctx context.Context) (*usecase.IngestSummary, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &usecase.IngestSummary{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFeedScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	ingest := &countingIngest{}
	scheduler := NewFeedScheduler(ingest, 20*time.Millisecond, testLogger())

	scheduler.Start()
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		return ingest.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "first run is immediate, then one per interval")
}

func TestFeedScheduler_StopHaltsRuns(t *testing.T) {
	ingest := &countingIngest{}
	scheduler := NewFeedScheduler(ingest, 10*time.Millisecond, testLogger())

	scheduler.Start()
	assert.Eventually(t, func() bool { return ingest.calls.Load() >= 1 }, time.Second, time.Millisecond)
	scheduler.Stop()

	settled := ingest.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, ingest.calls.Load(), settled+1, "no further runs after Stop")
}

func TestFeedScheduler_BackoffGrowsAndCaps(t *testing.T) {
	scheduler := NewFeedScheduler(&countingIngest{}, time.Hour, testLogger())

	backoff := scheduler.nextBackoff(0)
	assert.Equal(t, initialBackoff, backoff)

	backoff = scheduler.nextBackoff(backoff)
	assert.Equal(t, 2*initialBackoff, backoff)

	assert.Equal(t, maxBackoff, scheduler.nextBackoff(maxBackoff))
	assert.Equal(t, maxBackoff, scheduler.nextBackoff(4*time.Minute))
}

func TestFeedScheduler_FailureSetsBackoff(t *testing.T) {
	ingest := &countingIngest{err: errors.New("all feeds down")}
	scheduler := NewFeedScheduler(ingest, time.Hour, testLogger())

	scheduler.runOnce()
	assert.Equal(t, initialBackoff, scheduler.backoff)
	assert.Equal(t, initialBackoff, scheduler.nextInterval())

	scheduler.runOnce()
	assert.Equal(t, 2*initialBackoff, scheduler.backoff)

	ingest.err = nil
	scheduler.runOnce()
	assert.Equal(t, time.Duration(0), scheduler.backoff, "success resets the backoff")
	assert.Equal(t, time.Hour, scheduler.nextInterval())
}
