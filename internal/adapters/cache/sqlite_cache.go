package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the ScoringCache interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scoring_cache (
			cache_key TEXT PRIMARY KEY,
			result TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scoring_cache_expires_at ON scoring_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a live entry
func (c *SQLiteCache) Get(ctx context.Context, key string) (*core.ScoringResult, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `
		SELECT result
		FROM scoring_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UnixMilli()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	result, err := decodeResult([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// Put stores an entry for ttl
func (c *SQLiteCache) Put(ctx context.Context, key string, result *core.ScoringResult, ttl time.Duration) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scoring_cache (cache_key, result, expires_at)
		VALUES (?, ?, ?)
	`, key, string(data), time.Now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM scoring_cache
		WHERE expires_at <= ?
	`, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
