package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"edujobs_backend/internal/logger"
)

const tokenCleanupWorker = "token_cleanup"

// TokenCleaner drops single-use token hashes that expired before cutoff.
// repositories.UserRepository implements it.
type TokenCleaner interface {
	ClearExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenCleanupWorker periodically clears verification and reset tokens that
// expired more than retention ago. Until then verify and reset still answer
// "expired" rather than "no token".
type TokenCleanupWorker struct {
	cleaner   TokenCleaner
	interval  time.Duration
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

func NewTokenCleanupWorker(cleaner TokenCleaner, interval, retention time.Duration, log *slog.Logger) *TokenCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention < 0 {
		retention = 0
	}
	return &TokenCleanupWorker{
		cleaner:   cleaner,
		interval:  interval,
		retention: retention,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (w *TokenCleanupWorker) WithClock(now func() time.Time) *TokenCleanupWorker {
	w.now = now
	return w
}

// Start запускает фоновую очистку до отмены ctx.
func (w *TokenCleanupWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Wait blocks until the loop started by Start has returned.
func (w *TokenCleanupWorker) Wait() {
	w.wg.Wait()
}

func (w *TokenCleanupWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped", "worker", tokenCleanupWorker)
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and reports how many rows changed.
func (w *TokenCleanupWorker) RunOnce(ctx context.Context) int64 {
	cleared, err := w.cleaner.ClearExpiredTokens(ctx, w.now().Add(-w.retention))
	if err != nil {
		logger.WorkerLog(w.log, tokenCleanupWorker, "clear_expired_tokens", err)
		return 0
	}
	if cleared > 0 {
		w.log.Info("cleared expired single-use tokens", "worker", tokenCleanupWorker, "rows", cleared)
	}
	return cleared
}
