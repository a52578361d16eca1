// Package infra provides shared infrastructure components: the freshness
// cache used to absorb bursty upstream queries, token-bucket rate limiting,
// and HTTP utilities.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// --- Freshness cache ---

// Freshness classifies a cache read against the two read thresholds.
type Freshness int

const (
	// Miss means no usable entry exists (absent or older than the stale window).
	Miss Freshness = iota
	// Fresh means the entry is within the fresh window and can be served
	// with no upstream call.
	Fresh
	// Stale means the entry is past the fresh window but still inside the
	// stale-acceptable window. Serve it rather than block on upstream.
	Stale
)

type feedEntry struct {
	value    any
	storedAt time.Time
}

// FeedCache is a thread-safe time-keyed cache with two read thresholds:
// a short fresh window and a longer stale-acceptable window. Entries older
// than the stale window are evicted on read. Concurrent stores are
// last-write-wins; the cached data is idempotent so no further coordination
// is needed.
type FeedCache struct {
	mu      sync.RWMutex
	entries map[string]feedEntry
	fresh   time.Duration
	stale   time.Duration
}

// NewFeedCache creates a freshness cache with the given windows.
func NewFeedCache(fresh, stale time.Duration) *FeedCache {
	return &FeedCache{
		entries: make(map[string]feedEntry),
		fresh:   fresh,
		stale:   stale,
	}
}

// Get returns the cached value and its freshness classification.
func (c *FeedCache) Get(key string) (any, Freshness) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, Miss
	}

	age := time.Since(entry.storedAt)
	switch {
	case age <= c.fresh:
		return entry.value, Fresh
	case age <= c.stale:
		return entry.value, Stale
	}

	c.mu.Lock()
	// Re-check under the write lock; another goroutine may have refreshed it.
	if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(entry.storedAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, Miss
}

// Set stores a value, resetting its age.
func (c *FeedCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = feedEntry{value: value, storedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate removes a key.
func (c *FeedCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Check again after a short sleep.
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}

// --- HTTP helpers ---

// HTTPError is a non-2xx response from an upstream service.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// DoGet performs a GET request with the given headers and returns the
// response body. The caller must close the body. Non-2xx statuses return
// an *HTTPError with the body drained and closed.
func DoGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return resp.Body, nil
}
