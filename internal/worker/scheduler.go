package worker

import (
	"context"
	"log/slog"
	"time"

	"ssu-rag/internal/usecase"
)

const (
	ingestTimeout  = 10 * time.Minute
	initialBackoff = 1 * time.Second
	maxBackoff     = 5 * time.Minute
)

// FeedScheduler runs the ingestion pipeline on a fixed interval. A failing
// pass backs off exponentially; the next successful pass restores the
// configured interval.
type FeedScheduler struct {
	ingestUsecase usecase.IngestFeedUsecase
	interval      time.Duration
	logger        *slog.Logger
	stopChan      chan struct{}
	backoff       time.Duration
}

func NewFeedScheduler(
	ingestUsecase usecase.IngestFeedUsecase,
	interval time.Duration,
	logger *slog.Logger,
) *FeedScheduler {
	return &FeedScheduler{
		ingestUsecase: ingestUsecase,
		interval:      interval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the scheduler loop. The first pass runs immediately.
func (s *FeedScheduler) Start() {
	s.logger.Info("Starting FeedScheduler", "interval", s.interval)
	go s.run()
}

func (s *FeedScheduler) Stop() {
	s.logger.Info("Stopping FeedScheduler")
	close(s.stopChan)
}

func (s *FeedScheduler) run() {
	s.runOnce()

	ticker := time.NewTicker(s.nextInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runOnce()
			ticker.Reset(s.nextInterval())
		}
	}
}

func (s *FeedScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	summary, err := s.ingestUsecase.ExecuteAll(ctx)
	if err != nil {
		s.backoff = s.nextBackoff(s.backoff)
		s.logger.Warn("Scheduler backing off", "backoff", s.backoff, "error", err)
		return
	}

	s.backoff = 0
	s.logger.Info("Scheduled ingestion completed",
		"total", summary.Total,
		"new", summary.New,
		"existing", summary.Existing,
	)
}

func (s *FeedScheduler) nextInterval() time.Duration {
	if s.backoff > 0 {
		return s.backoff
	}
	return s.interval
}

func (s *FeedScheduler) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
