// Package ratelimit provides a keyed token-bucket rate limiter for
// protecting unauthenticated endpoints (signup, signin, share resolution)
// from brute force and scraping.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry is one key's bucket plus when it was last used.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key (a client IP) gets its own independent bucket. Buckets
// idle for longer than idleTTL are dropped by a background sweep, so the map
// does not grow with every address that ever connected.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a keyed rate limiter.
// rps: requests per second allowed per key.
// burst: tokens available immediately.
// idleTTL: how long an unused key is kept; zero disables the sweep.
func New(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if idleTTL > 0 {
		krl.wg.Add(1)
		go krl.sweepLoop()
	}

	return krl
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	krl.mu.Lock()
	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = krl.now()
	krl.mu.Unlock()

	return e.limiter.Allow()
}

// Len reports how many keys are currently tracked.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

// Stop shuts down the sweep goroutine and waits for it to exit.
// Safe to call more than once.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
	krl.wg.Wait()
}

func (krl *KeyedRateLimiter) sweepLoop() {
	defer krl.wg.Done()

	ticker := time.NewTicker(krl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.sweep()
		}
	}
}

// sweep drops keys not seen within idleTTL.
func (krl *KeyedRateLimiter) sweep() {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
		}
	}
}
