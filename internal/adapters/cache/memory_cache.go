package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

type memoryEntry struct {
	result    *core.ScoringResult
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the ScoringCache interface
type MemoryCache struct {
	entries     map[string]memoryEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]memoryEntry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache
}

// Get retrieves a live entry
func (c *MemoryCache) Get(ctx context.Context, key string) (*core.ScoringResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return nil, false, nil
	}

	// Callers get their own copy of the explanations slice
	result := *entry.result
	result.Explanations = append([]core.Explanation(nil), entry.result.Explanations...)
	return &result, true, nil
}

// Put stores an entry for ttl
func (c *MemoryCache) Put(ctx context.Context, key string, result *core.ScoringResult, ttl time.Duration) error {
	stored := *result
	stored.Explanations = append([]core.Explanation(nil), result.Explanations...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{
		result:    &stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
