// Package cache is the redirect fast path: resolved click tokens are kept
// in a low-latency store so the hot /r/{token} path usually skips MySQL.
package cache

import (
	"context"
	"sync"
	"time"
)

// CachedClick is the slice of a click record the resolver needs.
type CachedClick struct {
	ClickID           uint      `json:"click_id"`
	RedirectURL       string    `json:"redirect_url"`
	RedirectExpiresAt time.Time `json:"redirect_expires_at"`
}

// ClickCache returns (nil, nil) on a miss; any error is treated as a miss
// by the resolver, which falls back to durable storage.
type ClickCache interface {
	Get(ctx context.Context, token string) (*CachedClick, error)
	Set(ctx context.Context, token string, c *CachedClick, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// MemoryCache is the in-process fallback used when Redis is not
// configured, and in tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	click     CachedClick
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(_ context.Context, token string) (*CachedClick, error) {
	m.mu.RLock()
	e, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	c := e.click
	return &c, nil
}

func (m *MemoryCache) Set(_ context.Context, token string, c *CachedClick, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[token] = memoryEntry{click: *c, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.entries, token)
	m.mu.Unlock()
	return nil
}
