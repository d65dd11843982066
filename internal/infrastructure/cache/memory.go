package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/gateway"
	"github.com/lakowalski/luxmedhunter/internal/domain/repository"
)

type memoryEntry struct {
	session   gateway.Session
	expiresAt time.Time
}

type memorySessionCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionCache keeps sessions for the lifetime of the process
func NewMemorySessionCache() repository.SessionCache {
	return newMemorySessionCache(time.Now)
}

func newMemorySessionCache(now func() time.Time) *memorySessionCache {
	return &memorySessionCache{entries: make(map[string]memoryEntry), now: now}
}

func (c *memorySessionCache) Get(_ context.Context, userID string) (*gateway.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, userID)
		return nil, nil
	}
	session := e.session
	return &session, nil
}

func (c *memorySessionCache) Set(_ context.Context, session *gateway.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[session.UserID] = memoryEntry{session: *session, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *memorySessionCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}
