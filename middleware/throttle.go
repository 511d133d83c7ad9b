package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxsml/dispatch"
	"golang.org/x/sync/semaphore"
)

// ErrThrottled is returned when a request gave up waiting for a rate or
// concurrency limit because its context was done.
var ErrThrottled = errors.New("dispatch: request throttled")

// Allower is a rate limiter handing out tokens.
type Allower interface {
	// Allow blocks until a token is available or ctx is done.
	Allow(ctx context.Context) error
}

type leakyBucket struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	capacity float64
	tokens   float64
	last     time.Time
	poll     time.Duration
}

// NewLeakyBucket creates a rate limiter refilling rate tokens per second up
// to capacity. The bucket starts full.
func NewLeakyBucket(rate float64, capacity int) Allower {
	if capacity < 1 {
		capacity = 1
	}
	return &leakyBucket{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		last:     time.Now(),
		poll:     10 * time.Millisecond,
	}
}

func (b *leakyBucket) Allow(ctx context.Context) error {
	for {
		if b.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrThrottled, ctx.Err())
		case <-time.After(b.poll):
		}
	}
}

func (b *leakyBucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RateLimit delays requests until the allower hands out a token.
func RateLimit[Req, Res any](a Allower) dispatch.BehaviorFunc[Req, Res] {
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		if err := a.Allow(ctx); err != nil {
			var zero Res
			return zero, err
		}
		return next()
	}
}

// ConcurrencyLimit lets at most n requests run the rest of the pipeline at
// the same time. Further requests wait for a slot or their context.
func ConcurrencyLimit[Req, Res any](n int64) dispatch.BehaviorFunc[Req, Res] {
	sem := semaphore.NewWeighted(n)
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			var zero Res
			return zero, fmt.Errorf("%w: %w", ErrThrottled, err)
		}
		defer sem.Release(1)
		return next()
	}
}
