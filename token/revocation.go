package token

import (
	"sync"
	"time"
)

// RevokedTokenCache remembers logged out token ids until they would have expired anyway.
type RevokedTokenCache interface {
	Add(jti string, exp time.Time)
	IsRevoked(jti string) bool
	Cleanup(now time.Time) int
}

type InMemoryRevokedTokenCache struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func NewInMemoryRevokedTokenCache() *InMemoryRevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]time.Time),
	}
}

func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

// Cleanup drops entries whose token has expired and returns how many were dropped.
func (c *InMemoryRevokedTokenCache) Cleanup(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
			dropped++
		}
	}
	return dropped
}
