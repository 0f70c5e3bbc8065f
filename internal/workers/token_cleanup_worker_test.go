package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edujobs_backend/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	mu    sync.Mutex
	calls []time.Time
	rows  int64
	err   error
}

func (f *fakeCleaner) ClearExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.rows, f.err
}

func (f *fakeCleaner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestTokenCleanupWorker_RunOnce(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cleaner := &fakeCleaner{rows: 3}
	w := NewTokenCleanupWorker(cleaner, time.Minute, 48*time.Hour, logger.Discard()).
		WithClock(func() time.Time { return fixed })

	assert.EqualValues(t, 3, w.RunOnce(context.Background()))
	require.Len(t, cleaner.calls, 1)
	assert.True(t, cleaner.calls[0].Equal(fixed.Add(-48*time.Hour)), "cutoff lags now by the retention")

	cleaner.err = errors.New("db down")
	assert.EqualValues(t, 0, w.RunOnce(context.Background()))
}

func TestTokenCleanupWorker_StopsOnCancel(t *testing.T) {
	cleaner := &fakeCleaner{}
	w := NewTokenCleanupWorker(cleaner, 5*time.Millisecond, 0, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.Eventually(t, func() bool { return cleaner.count() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
