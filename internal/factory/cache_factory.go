package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/loan-approval/internal/adapters/cache"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoppableCache is a scoring cache that owns background work or connections
type StoppableCache interface {
	core.ScoringCache
	Stop()
}

// CacheFactory creates scoring caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateScoringCache creates a scoring cache based on the configuration
func (f *CacheFactory) CreateScoringCache() (StoppableCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, f.logger, cacheCfg.CleanupFrequency)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cacheCfg.RedisAddress,
			Password: cacheCfg.RedisPassword,
			DB:       cacheCfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cacheCfg.RedisAddress, err)
		}
		return cache.NewRedisCache(client, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
