package service

import (
	"math"
	"sync"
	"time"
)

// TokenBucket limits attempts per key (the client IP for logins). Each key
// starts with capacity tokens and regains rate tokens per second. Idle keys
// are dropped by a janitor goroutine that stops on Close.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64
	capacity float64
	now      func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

type bucket struct {
	tokens float64
	seen   time.Time
}

const (
	janitorInterval = 5 * time.Minute
	bucketIdleTTL   = 10 * time.Minute
)

// NewTokenBucket creates a limiter and starts its janitor.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go tb.janitor()
	return tb
}

// refill tops up the bucket for key and returns it. Callers hold mu.
func (tb *TokenBucket) refill(key string) *bucket {
	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, seen: now}
		tb.buckets[key] = b
		return b
	}
	b.tokens = min(b.tokens+now.Sub(b.seen).Seconds()*tb.rate, tb.capacity)
	b.seen = now
	return b
}

// Allow consumes a token for key and reports whether one was available.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b := tb.refill(key)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RetryAfter returns how long key has to wait for its next token. It is
// zero when a token is available, and a full minute when the bucket never
// refills.
func (tb *TokenBucket) RetryAfter(key string) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b := tb.refill(key)
	if b.tokens >= 1 {
		return 0
	}
	if tb.rate <= 0 {
		return time.Minute
	}
	secs := math.Ceil((1 - b.tokens) / tb.rate)
	return time.Duration(secs) * time.Second
}

// Close stops the janitor. It is safe to call more than once.
func (tb *TokenBucket) Close() {
	tb.closeOnce.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-tb.stop:
			return
		case <-ticker.C:
			tb.sweep()
		}
	}
}

func (tb *TokenBucket) sweep() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cutoff := tb.now().Add(-bucketIdleTTL)
	for key, b := range tb.buckets {
		if b.seen.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
