package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLimiter_RejectsAfterMax(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(time.Minute, 3).WithClock(c.now)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("1.2.3.4")
		assert.True(t, ok, "attempt %d", i+1)
		c.t = c.t.Add(10 * time.Second)
	}

	ok, retry := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retry)

	ok, _ = l.Allow("5.6.7.8")
	assert.True(t, ok, "other keys are independent")
}

func TestLimiter_AllowsAfterEarliestLeavesWindow(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(time.Minute, 2).WithClock(c.now)

	first := c.t
	l.Allow("k")
	c.t = c.t.Add(20 * time.Second)
	l.Allow("k")

	ok, _ := l.Allow("k")
	assert.False(t, ok)

	c.t = first.Add(time.Minute)
	ok, _ = l.Allow("k")
	assert.True(t, ok)

	ok, _ = l.Allow("k")
	assert.False(t, ok, "second attempt is still in the window")
}

func TestLimiter_SweepDropsIdleKeys(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	l := New(time.Second, 1).WithClock(c.now)

	l.Allow("idle")
	c.t = c.t.Add(time.Hour)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("busy")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.attempts, 1)
	assert.Contains(t, l.attempts, "busy")
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(time.Hour, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
